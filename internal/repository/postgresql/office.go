package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/office"
	"github.com/simha10/SAMS-sub000/internal/pkg/database"
)

type officeRepository struct {
	db *database.DB
}

func NewOfficeRepository(db *database.DB) office.OfficeRepository {
	return &officeRepository{db: db}
}

// ListActiveByUser implements office.OfficeRepository. Assigned branches
// and the user's default office come back in one list; ordering by
// creation time keeps the tie-break deterministic across calls.
func (o *officeRepository) ListActiveByUser(ctx context.Context, userID string) ([]office.Office, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT DISTINCT o.id, o.name, o.latitude, o.longitude, o.radius_m, o.is_active,
			   o.created_at, o.updated_at
		FROM offices o
		LEFT JOIN office_assignments oa ON oa.office_id = o.id AND oa.user_id = $1
		LEFT JOIN users u ON u.default_office_id = o.id AND u.id = $1
		WHERE o.is_active = true
		  AND (oa.user_id IS NOT NULL OR u.id IS NOT NULL)
		ORDER BY o.created_at ASC, o.id ASC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices for user: %w", err)
	}
	defer rows.Close()

	var result []office.Office
	for rows.Next() {
		var of office.Office
		err := rows.Scan(
			&of.ID, &of.Name, &of.Latitude, &of.Longitude, &of.RadiusM, &of.IsActive,
			&of.CreatedAt, &of.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office: %w", err)
		}
		result = append(result, of)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate office rows: %w", err)
	}

	return result, nil
}

// GetByID implements office.OfficeRepository.
func (o *officeRepository) GetByID(ctx context.Context, id string) (office.Office, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, name, latitude, longitude, radius_m, is_active, created_at, updated_at
		FROM offices
		WHERE id = $1
	`

	var of office.Office
	err := q.QueryRow(ctx, query, id).Scan(
		&of.ID, &of.Name, &of.Latitude, &of.Longitude, &of.RadiusM, &of.IsActive,
		&of.CreatedAt, &of.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return office.Office{}, fmt.Errorf("office not found: %w", err)
		}
		return office.Office{}, fmt.Errorf("failed to get office by id: %w", err)
	}

	return of, nil
}

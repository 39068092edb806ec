package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/user"
	"github.com/simha10/SAMS-sub000/internal/pkg/database"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}

// GetByID implements user.UserRepository.
func (u *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT id, full_name, email, role, dob, manager_id, is_active
		FROM users
		WHERE id = $1
	`

	var usr user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&usr.ID, &usr.FullName, &usr.Email, &usr.Role, &usr.DOB, &usr.ManagerID, &usr.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, fmt.Errorf("user not found: %w", err)
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return usr, nil
}

// ListActive implements user.UserRepository.
func (u *userRepository) ListActive(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT id, full_name, email, role, dob, manager_id, is_active
		FROM users
		WHERE is_active = true
		ORDER BY full_name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListWithBirthday implements user.UserRepository.
func (u *userRepository) ListWithBirthday(ctx context.Context, month time.Month, day int) ([]user.User, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT id, full_name, email, role, dob, manager_id, is_active
		FROM users
		WHERE is_active = true
		  AND dob IS NOT NULL
		  AND EXTRACT(MONTH FROM dob) = $1
		  AND EXTRACT(DAY FROM dob) = $2
		ORDER BY full_name ASC
	`

	rows, err := q.Query(ctx, query, int(month), day)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with birthday: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	var result []user.User
	for rows.Next() {
		var usr user.User
		err := rows.Scan(
			&usr.ID, &usr.FullName, &usr.Email, &usr.Role, &usr.DOB, &usr.ManagerID, &usr.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, usr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return result, nil
}

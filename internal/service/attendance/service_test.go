package attendance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/attendance"
	"github.com/simha10/SAMS-sub000/internal/domain/office"
	"github.com/simha10/SAMS-sub000/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Office at Lucknow with a 100m radius; the "far" position is about 19km
// away, the "near" position about 15m.
var (
	testOffice = office.Office{
		ID:        "office-1",
		Name:      "HQ",
		Latitude:  26.9136,
		Longitude: 80.9535,
		RadiusM:   100,
		IsActive:  true,
	}

	nearLat = 26.9137
	nearLng = 80.9534
	farLat  = 26.7500
	farLng  = 80.9000
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Attendance
	nextID  int
	updates int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Attendance)}
}

func (f *fakeAttendanceRepo) key(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) CreateIfAbsent(_ context.Context, att attendance.Attendance) (attendance.Attendance, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(att.UserID, att.Date)
	if _, ok := f.records[k]; ok {
		return attendance.Attendance{}, false, nil
	}
	f.nextID++
	att.ID = fmt.Sprintf("att-%d", f.nextID)
	cp := att
	f.records[k] = &cp
	return att, true, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[f.key(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			return *rec, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, rec := range f.records {
		if rec.ID == att.ID {
			cp := att
			f.records[k] = &cp
			f.updates++
			return nil
		}
	}
	return attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) ListOpen(_ context.Context, date time.Time) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.Date.Equal(date) && rec.CheckInTime != nil && rec.CheckOutTime == nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByUser(_ context.Context, userID string, _ attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) CountByStatus(_ context.Context, date time.Time) (map[attendance.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[attendance.Status]int)
	for _, rec := range f.records {
		if rec.Date.Equal(date) {
			counts[rec.Status]++
		}
	}
	return counts, nil
}

type fakeOfficeRepo struct {
	offices []office.Office
}

func (f *fakeOfficeRepo) ListActiveByUser(context.Context, string) ([]office.Office, error) {
	return f.offices, nil
}

func (f *fakeOfficeRepo) GetByID(_ context.Context, id string) (office.Office, error) {
	for _, o := range f.offices {
		if o.ID == id {
			return o, nil
		}
	}
	return office.Office{}, fmt.Errorf("office not found")
}

func authedContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	tok, _, err := ja.Encode(map[string]interface{}{"user_id": userID, "role": "employee"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func defaultWindows() Windows {
	return Windows{
		WindowStartMinute: 1,
		WindowEndMinute:   23*60 + 59,
		OfficeStartMinute: 9 * 60,
		OfficeEndMinute:   20 * 60,
	}
}

func at(hour, minute int) time.Time {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	return time.Date(2026, 3, 10, hour, minute, 0, 0, loc)
}

func newTestService(repo *fakeAttendanceRepo, offices []office.Office, now time.Time) attendance.AttendanceService {
	return NewAttendanceService(repo, &fakeOfficeRepo{offices: offices}, clock.Fixed{T: now}, defaultWindows())
}

func ptr(v float64) *float64 { return &v }

func TestCheckIn(t *testing.T) {
	t.Run("within radius and office hours is present", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(9, 30))

		resp, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "present", resp.Status)
		assert.False(t, resp.Flagged)
		assert.NotNil(t, resp.CheckInTime)
		require.NotNil(t, resp.CheckInDistanceM)
		assert.Less(t, *resp.CheckInDistanceM, 100.0)
	})

	t.Run("outside radius flags the record but still writes it", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(9, 30))

		resp, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		require.NoError(t, err)
		assert.Equal(t, "outside-duty", resp.Status)
		assert.True(t, resp.Flagged)
		require.NotNil(t, resp.FlaggedReason)
		assert.Contains(t, *resp.FlaggedReason, "radius")
		assert.Contains(t, *resp.FlaggedReason, "Awaiting manager approval")
		require.NotNil(t, resp.FlagKind)
		assert.Equal(t, "geofence", *resp.FlagKind)
	})

	t.Run("geofence violation wins over office hours violation", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(6, 0))

		resp, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		require.NoError(t, err)
		require.NotNil(t, resp.FlagKind)
		assert.Equal(t, "geofence", *resp.FlagKind)
	})

	t.Run("outside office hours within radius", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(21, 0))

		resp, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "outside-duty", resp.Status)
		require.NotNil(t, resp.FlaggedReason)
		assert.Equal(t, "Check-in outside office hours", *resp.FlaggedReason)
	})

	t.Run("no active geofence degrades to flagged success", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, nil, at(9, 30))

		resp, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "outside-duty", resp.Status)
		assert.True(t, resp.Flagged)
		assert.Nil(t, resp.CheckInDistanceM)
	})

	t.Run("duplicate check-in rejected without mutation", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(9, 30))
		ctx := authedContext(t, "u1")

		first, err := svc.CheckIn(ctx, attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)

		_, err = svc.CheckIn(ctx, attendance.CheckInRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusPresent, stored.Status)
		assert.False(t, stored.Flagged)
	})

	t.Run("outside submission window rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(0, 0))

		_, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		assert.ErrorIs(t, err, attendance.ErrOutsideAttendanceWindow)
	})

	t.Run("approved leave is never overwritten", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		day := time.Date(2026, 3, 10, 0, 0, 0, 0, at(0, 0).Location())
		_, _, err := repo.CreateIfAbsent(context.Background(), attendance.Attendance{
			UserID: "u1", Date: day, Status: attendance.StatusOnLeave,
		})
		require.NoError(t, err)

		svc := newTestService(repo, []office.Office{testOffice}, at(9, 30))
		_, err = svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		assert.ErrorIs(t, err, attendance.ErrOnApprovedLeave)
	})

	t.Run("missing coordinates rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(9, 30))

		_, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{})
		assert.Error(t, err)
	})
}

func TestCheckOut(t *testing.T) {
	checkIn := func(t *testing.T, repo *fakeAttendanceRepo, lat, lng float64, hour, minute int) {
		svc := newTestService(repo, []office.Office{testOffice}, at(hour, minute))
		_, err := svc.CheckIn(authedContext(t, "u1"), attendance.CheckInRequest{Latitude: ptr(lat), Longitude: ptr(lng)})
		require.NoError(t, err)
	}

	t.Run("full day stays present", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "present", resp.Status)
		assert.Equal(t, 540, resp.WorkingMinutes)
		assert.False(t, resp.IsHalfDay)
	})

	t.Run("short day reclassifies to half-day and clears flags", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(11, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "half-day", resp.Status)
		assert.True(t, resp.IsHalfDay)
		assert.False(t, resp.Flagged)
		assert.Equal(t, 120, resp.WorkingMinutes)
	})

	t.Run("exactly threshold minutes is half-day", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(14, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, 300, resp.WorkingMinutes)
		assert.Equal(t, "half-day", resp.Status)
	})

	t.Run("one minute over threshold is a full day", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(14, 1))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, 301, resp.WorkingMinutes)
		assert.Equal(t, "present", resp.Status)
	})

	t.Run("checkout outside radius flags a clean record", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		require.NoError(t, err)
		assert.Equal(t, "outside-duty", resp.Status)
		require.NotNil(t, resp.FlaggedReason)
		assert.Contains(t, *resp.FlaggedReason, "at checkout")
	})

	t.Run("self-healing revert when back inside the radius", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, farLat, farLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)
		assert.Equal(t, "present", resp.Status)
		assert.False(t, resp.Flagged)
		assert.Nil(t, resp.FlagKind)
	})

	t.Run("standing radius flag survives a long day outside", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, farLat, farLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		require.NoError(t, err)
		assert.Equal(t, "outside-duty", resp.Status)
		assert.True(t, resp.Flagged)
	})

	t.Run("corrections are idempotent", func(t *testing.T) {
		rec := &attendance.Attendance{Status: attendance.StatusOutsideDuty}
		rec.SetFlag(attendance.GeofenceViolation(2000, 100, false))

		applyCheckOutCorrections(rec, nil, true)
		first := *rec
		applyCheckOutCorrections(rec, nil, true)
		assert.Equal(t, first.Status, rec.Status)
		assert.Equal(t, *first.FlaggedReason, *rec.FlaggedReason)
	})

	t.Run("hours correction skipped while radius flag stands", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, farLat, farLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(21, 30))
		resp, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(farLat), Longitude: ptr(farLng)})
		require.NoError(t, err)
		require.NotNil(t, resp.FlagKind)
		assert.Equal(t, "geofence", *resp.FlagKind)
	})

	t.Run("approved leave blocks checkout even after a morning check-in", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		day := time.Date(2026, 3, 10, 0, 0, 0, 0, at(0, 0).Location())
		in := at(9, 0)
		created, inserted, err := repo.CreateIfAbsent(context.Background(), attendance.Attendance{
			UserID: "u1", Date: day, Status: attendance.StatusOnLeave, CheckInTime: &in,
		})
		require.NoError(t, err)
		require.True(t, inserted)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		_, err = svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		assert.ErrorIs(t, err, attendance.ErrOnApprovedLeave)

		stored, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusOnLeave, stored.Status)
		assert.Nil(t, stored.CheckOutTime)
	})

	t.Run("checkout without check-in rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		_, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	})

	t.Run("double checkout rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		checkIn(t, repo, nearLat, nearLng, 9, 0)

		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))
		_, err := svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		require.NoError(t, err)

		_, err = svc.CheckOut(authedContext(t, "u1"), attendance.CheckOutRequest{Latitude: ptr(nearLat), Longitude: ptr(nearLng)})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
	})
}

func TestApproveReject(t *testing.T) {
	seedFlagged := func(t *testing.T, repo *fakeAttendanceRepo, halfDay bool) string {
		rec := attendance.Attendance{
			UserID: "u1",
			Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Status: attendance.StatusOutsideDuty,
		}
		rec.SetFlag(attendance.GeofenceViolation(2000, 100, false))
		rec.IsHalfDay = halfDay
		created, inserted, err := repo.CreateIfAbsent(context.Background(), rec)
		require.NoError(t, err)
		require.True(t, inserted)
		return created.ID
	}

	t.Run("approve clears the flag and settles on present", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		id := seedFlagged(t, repo, false)
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		resp, err := svc.Approve(authedContext(t, "mgr"), attendance.ApproveRequest{ID: id})
		require.NoError(t, err)
		assert.Equal(t, "present", resp.Status)
		assert.False(t, resp.Flagged)
		assert.Nil(t, resp.FlaggedReason)
	})

	t.Run("approve keeps half-day when the duration said so", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		id := seedFlagged(t, repo, true)
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		resp, err := svc.Approve(authedContext(t, "mgr"), attendance.ApproveRequest{ID: id})
		require.NoError(t, err)
		assert.Equal(t, "half-day", resp.Status)
	})

	t.Run("reject marks absent and records the override", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		id := seedFlagged(t, repo, false)
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		resp, err := svc.Reject(authedContext(t, "mgr"), attendance.RejectRequest{ID: id, Reason: "location mismatch"})
		require.NoError(t, err)
		assert.Equal(t, "absent", resp.Status)
		assert.False(t, resp.Flagged)
		require.NotNil(t, resp.FlaggedReason)
		assert.Equal(t, "Manager override: location mismatch", *resp.FlaggedReason)
	})

	t.Run("reject without a reason rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		id := seedFlagged(t, repo, false)
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		_, err := svc.Reject(authedContext(t, "mgr"), attendance.RejectRequest{ID: id})
		assert.Error(t, err)
	})

	t.Run("unknown record", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		svc := newTestService(repo, []office.Office{testOffice}, at(18, 0))

		_, err := svc.Approve(authedContext(t, "mgr"), attendance.ApproveRequest{ID: "missing"})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})
}

func TestWorkedMinutes(t *testing.T) {
	in := at(9, 0)
	assert.Equal(t, 540, WorkedMinutes(in, at(18, 0)))
	assert.Equal(t, 0, WorkedMinutes(at(18, 0), in))
	assert.Equal(t, 0, WorkedMinutes(in, in.Add(59*time.Second)))
}

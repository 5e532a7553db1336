// Package service owns all attendance and away record mutations. It
// consumes the monitor's lifecycle events, enforces the one-record
// invariants at its check-then-act boundaries, and syncs resulting
// status back into the engine.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/presenced/presenced/internal/calc"
	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/record"
)

// Store is the CRUD-with-filter surface the service needs. The gorm
// store implements it; tests use an in-memory fake.
type Store interface {
	AttendanceByDate(ctx context.Context, userID, date string) (*record.Attendance, error)
	CreateAttendance(ctx context.Context, rec *record.Attendance) error
	SaveAttendance(ctx context.Context, rec *record.Attendance) error
	Unprocessed(ctx context.Context, beforeDate string) ([]record.Attendance, error)

	OpenAway(ctx context.Context, userID string) (*record.Away, error)
	CreateAway(ctx context.Context, aw *record.Away) error
	SaveAway(ctx context.Context, aw *record.Away) error
	AwaysInRange(ctx context.Context, userID string, from, to time.Time) ([]record.Away, error)
}

type Service struct {
	store  Store
	userID string

	mu      sync.Mutex
	windows config.Windows
}

func New(store Store, userID string, w config.Windows) *Service {
	return &Service{store: store, userID: userID, windows: w}
}

// SetWindows applies a pushed exclusion-window update.
func (s *Service) SetWindows(w config.Windows) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = w
}

func (s *Service) Windows() config.Windows {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows
}

func today(now time.Time) string {
	return now.Format(record.DateLayout)
}

// CheckIn opens today's record. A record that already has a check-in is
// returned unchanged, so repeated automatic check-ins stay harmless.
func (s *Service) CheckIn(ctx context.Context, isAuto bool, memo string) (*record.Attendance, error) {
	now := time.Now()
	existing, err := s.store.AttendanceByDate(ctx, s.userID, today(now))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.CheckIn != nil {
			return existing, nil
		}
		ci := now
		existing.CheckIn = &ci
		existing.IsAutoCheckIn = isAuto
		if memo != "" {
			existing.Memo = memo
		}
		if err := s.store.SaveAttendance(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	rec := record.NewAttendance(s.userID, now, isAuto, memo)
	if err := s.store.CreateAttendance(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CheckOut closes today's record with a precise end instant. Any open
// away session is closed at the same instant first.
func (s *Service) CheckOut(ctx context.Context, isAuto bool) (*record.Attendance, error) {
	now := time.Now()
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(now))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, record.ErrNoActiveSession
	}

	if _, err := s.EndAway(ctx, now); err != nil {
		return nil, fmt.Errorf("closing away before checkout: %w", err)
	}

	if err := rec.Close(now, isAuto); err != nil {
		return nil, err
	}
	if err := s.store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CancelCheckOut reopens today's record after a checkout or snapshot.
func (s *Service) CancelCheckOut(ctx context.Context) (*record.Attendance, error) {
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(time.Now()))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, record.ErrNoActiveSession
	}
	if err := rec.Reopen(); err != nil {
		return nil, err
	}
	if err := s.store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateMemo replaces the memo on today's record.
func (s *Service) UpdateMemo(ctx context.Context, memo string) (*record.Attendance, error) {
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(time.Now()))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, record.ErrNoActiveSession
	}
	rec.Memo = memo
	if err := s.store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// StartAway opens an away interval against today's record. If one is
// already in progress it is returned as-is: the current away session is
// unique per user.
func (s *Service) StartAway(ctx context.Context, start time.Time, isAuto bool) (*record.Away, error) {
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(start))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, record.ErrNoActiveSession
	}

	open, err := s.store.OpenAway(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	aw := record.NewAway(s.userID, rec.ID, start, isAuto)
	if err := s.store.CreateAway(ctx, &aw); err != nil {
		return nil, err
	}
	return &aw, nil
}

// EndAway closes the in-progress away interval. Returns nil when none is
// open.
func (s *Service) EndAway(ctx context.Context, end time.Time) (*record.Away, error) {
	open, err := s.store.OpenAway(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, nil
	}
	if err := open.Close(end); err != nil {
		return nil, err
	}
	if err := s.store.SaveAway(ctx, open); err != nil {
		return nil, err
	}
	return open, nil
}

// SnapshotDuration stores elapsed work minutes on today's open record
// without setting a checkout, for ends that cannot be known precisely.
func (s *Service) SnapshotDuration(ctx context.Context, now time.Time) (*record.Attendance, error) {
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(now))
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.CheckIn == nil {
		return nil, record.ErrNoActiveSession
	}
	rec.Snapshot(calc.WorkMinutes(*rec, s.Windows(), now))
	if err := s.store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Today returns today's record, the day's away intervals and the derived
// minute totals for the status surface.
func (s *Service) Today(ctx context.Context) (*record.Attendance, []record.Away, error) {
	now := time.Now()
	rec, err := s.store.AttendanceByDate(ctx, s.userID, today(now))
	if err != nil {
		return nil, nil, err
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	aways, err := s.store.AwaysInRange(ctx, s.userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, err
	}
	return rec, aways, nil
}

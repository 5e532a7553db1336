// Package store persists attendance and away records in the shared
// relational database. Updates are per-record; the open-record
// invariants are enforced by the service's check-then-act logic.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/presenced/presenced/internal/record"
)

type Store struct {
	db *gorm.DB
}

// Open connects to MySQL and migrates the record tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&record.Attendance{}, &record.Away{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// AttendanceByDate returns the user's record for a date, or nil when the
// day has none.
func (s *Store) AttendanceByDate(ctx context.Context, userID, date string) (*record.Attendance, error) {
	var rec record.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) CreateAttendance(ctx context.Context, rec *record.Attendance) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) SaveAttendance(ctx context.Context, rec *record.Attendance) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

// AttendanceForDate lists every user's record for one date, ordered by
// check-in.
func (s *Store) AttendanceForDate(ctx context.Context, date string) ([]record.Attendance, error) {
	var recs []record.Attendance
	err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("check_in asc").
		Find(&recs).Error
	return recs, err
}

// History lists one user's records from fromDate onward, newest first.
func (s *Store) History(ctx context.Context, userID, fromDate string) ([]record.Attendance, error) {
	var recs []record.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, fromDate).
		Order("date desc").
		Find(&recs).Error
	return recs, err
}

// Unprocessed returns records dated strictly before the given date that
// were never closed by any checkout or snapshot.
func (s *Store) Unprocessed(ctx context.Context, beforeDate string) ([]record.Attendance, error) {
	var recs []record.Attendance
	err := s.db.WithContext(ctx).
		Where("date < ? AND check_out IS NULL AND work_duration_minutes IS NULL", beforeDate).
		Find(&recs).Error
	return recs, err
}

// OpenAway returns the user's in-progress away record, or nil.
func (s *Store) OpenAway(ctx context.Context, userID string) (*record.Away, error) {
	var aw record.Away
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time desc").
		First(&aw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &aw, nil
}

func (s *Store) CreateAway(ctx context.Context, aw *record.Away) error {
	return s.db.WithContext(ctx).Create(aw).Error
}

func (s *Store) SaveAway(ctx context.Context, aw *record.Away) error {
	return s.db.WithContext(ctx).Save(aw).Error
}

// AwaysInRange lists a user's away records starting inside [from, to),
// oldest first.
func (s *Store) AwaysInRange(ctx context.Context, userID string, from, to time.Time) ([]record.Away, error) {
	var aways []record.Away
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time asc").
		Find(&aways).Error
	return aways, err
}

// AwaysForAll lists every user's away records starting inside [from, to).
func (s *Store) AwaysForAll(ctx context.Context, from, to time.Time) ([]record.Away, error) {
	var aways []record.Away
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time asc").
		Find(&aways).Error
	return aways, err
}

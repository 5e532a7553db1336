package record

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date key used for the one-record-per-day
// invariant, always in the workstation's local zone.
const DateLayout = "2006-01-02"

// Attendance is one user's attendance row for one calendar date.
//
// A record is open while CheckIn is set and neither CheckOut nor
// WorkDurationMinutes is; either of the latter closes it. CheckOut
// carries a precise end instant; WorkDurationMinutes is a duration
// snapshot taken when the exact end could not be known (suspend after
// hours, powered-off machine).
type Attendance struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	UserID              string     `gorm:"index:idx_user_date,unique;size:36;not null" json:"user_id"`
	Date                string     `gorm:"index:idx_user_date,unique;size:10;not null" json:"date"`
	CheckIn             *time.Time `json:"check_in"`
	CheckOut            *time.Time `json:"check_out"`
	WorkDurationMinutes *int       `json:"work_duration_minutes"`
	IsAutoCheckIn       bool       `json:"is_auto_check_in"`
	IsAutoCheckOut      bool       `json:"is_auto_check_out"`
	Memo                string     `json:"memo"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewAttendance creates today's record for a user at check-in time.
func NewAttendance(userID string, checkIn time.Time, isAuto bool, memo string) Attendance {
	ci := checkIn
	return Attendance{
		ID:            uuid.NewString(),
		UserID:        userID,
		Date:          checkIn.Format(DateLayout),
		CheckIn:       &ci,
		IsAutoCheckIn: isAuto,
		Memo:          memo,
	}
}

// IsOpen reports whether work is still in progress on this record.
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil && a.WorkDurationMinutes == nil
}

// IsClosed reports whether the record reached a closed state through
// either a checkout or a duration snapshot.
func (a *Attendance) IsClosed() bool {
	return a.CheckOut != nil || a.WorkDurationMinutes != nil
}

// Close sets a precise checkout instant. The caller must have verified
// the record exists; closing an already closed record is last-write-wins
// by design of the store.
func (a *Attendance) Close(checkOut time.Time, isAuto bool) error {
	if a.CheckIn != nil && checkOut.Before(*a.CheckIn) {
		return ErrInvalidTimeRange
	}
	co := checkOut
	a.CheckOut = &co
	a.IsAutoCheckOut = isAuto
	return nil
}

// Snapshot records elapsed work minutes without a checkout instant.
func (a *Attendance) Snapshot(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	m := minutes
	a.WorkDurationMinutes = &m
	a.IsAutoCheckOut = true
}

// Reopen cancels a checkout or snapshot, returning the record to the
// open state. Fails on a record that is not closed.
func (a *Attendance) Reopen() error {
	if !a.IsClosed() {
		return ErrNotCheckedOut
	}
	a.CheckOut = nil
	a.WorkDurationMinutes = nil
	a.IsAutoCheckOut = false
	return nil
}

// Away is one away interval, attached to the day's attendance record.
// EndTime and DurationMinutes stay unset while the away is in progress;
// at most one open Away exists per user at any time.
type Away struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	UserID          string     `gorm:"index;size:36;not null" json:"user_id"`
	AttendanceID    string     `gorm:"index;size:36;not null" json:"attendance_id"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	IsAuto          bool       `json:"is_auto"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewAway opens an away interval. Start may be backdated to when idling
// actually began.
func NewAway(userID, attendanceID string, start time.Time, isAuto bool) Away {
	return Away{
		ID:           uuid.NewString(),
		UserID:       userID,
		AttendanceID: attendanceID,
		StartTime:    start,
		IsAuto:       isAuto,
	}
}

// IsOpen reports whether the away interval is still in progress.
func (aw *Away) IsOpen() bool {
	return aw.EndTime == nil
}

// Close ends the interval and derives its duration in whole minutes.
func (aw *Away) Close(end time.Time) error {
	if end.Before(aw.StartTime) {
		return ErrInvalidTimeRange
	}
	e := end
	mins := int(end.Sub(aw.StartTime).Round(time.Minute) / time.Minute)
	aw.EndTime = &e
	aw.DurationMinutes = &mins
	return nil
}

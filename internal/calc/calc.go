// Package calc computes reported work minutes from attendance and away
// records. Every function is pure: callers pass the clock in, and
// repeated calls over the same inputs return the same result.
package calc

import (
	"time"

	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/record"
)

// WorkStart is the earliest counted time of day. Work before 09:00 never
// accrues minutes.
var WorkStart = config.TimeOfDay{Hour: 9}

// minutesBetween rounds an interval to whole minutes, ties away from zero.
func minutesBetween(start, end time.Time) int {
	return int(end.Sub(start).Round(time.Minute) / time.Minute)
}

// LunchOverlapMinutes returns how much of [start, end] falls inside the
// lunch window on start's date, zero when the intervals do not intersect.
func LunchOverlapMinutes(start, end time.Time, w config.Windows) int {
	lunchStart := w.LunchStart.On(start)
	lunchEnd := w.LunchEnd.On(start)

	from := start
	if lunchStart.After(from) {
		from = lunchStart
	}
	to := end
	if lunchEnd.Before(to) {
		to = lunchEnd
	}
	if !from.Before(to) {
		return 0
	}
	return minutesBetween(from, to)
}

// WorkMinutes computes gross reported minutes for one attendance record:
//
//   - counting starts at the later of check-in and 09:00,
//   - a checkout bounds the interval precisely,
//   - a duration snapshot (or any auto checkout) is capped at work_end,
//   - an open record runs to now,
//   - lunch overlap is subtracted.
//
// This is the single canonical calculation; every reporting surface uses
// it, including records that already hold a stored snapshot value.
func WorkMinutes(rec record.Attendance, w config.Windows, now time.Time) int {
	if rec.CheckIn == nil {
		return 0
	}

	start := *rec.CheckIn
	floor := WorkStart.On(start)
	if start.Before(floor) {
		start = floor
	} else {
		// deterministic minute arithmetic for on-time check-ins
		start = start.Truncate(time.Minute)
	}

	var end time.Time
	switch {
	case rec.CheckOut != nil:
		end = *rec.CheckOut
	case rec.WorkDurationMinutes != nil || rec.IsAutoCheckOut:
		end = w.WorkEnd.On(start)
		if !start.Before(end) {
			// checked in past closing time
			return 0
		}
	default:
		end = now
	}

	gross := minutesBetween(start, end)
	work := gross - LunchOverlapMinutes(start, end, w)
	if work < 0 {
		return 0
	}
	return work
}

// TotalAwayMinutes sums the durations of closed away records. Intervals
// still in progress contribute nothing to reporting.
func TotalAwayMinutes(aways []record.Away) int {
	total := 0
	for _, aw := range aways {
		if aw.DurationMinutes != nil {
			total += *aw.DurationMinutes
		}
	}
	return total
}

// NetWorkMinutes is WorkMinutes with the day's closed away time removed.
func NetWorkMinutes(rec record.Attendance, aways []record.Away, w config.Windows, now time.Time) int {
	net := WorkMinutes(rec, w, now) - TotalAwayMinutes(aways)
	if net < 0 {
		return 0
	}
	return net
}

// ReconcileEnd picks the assumed end instant for a past record that was
// never closed: work_end on the record's date, or check-in plus one hour
// when the check-in itself happened at or after work_end's hour.
func ReconcileEnd(checkIn time.Time, w config.Windows) time.Time {
	end := w.WorkEnd.On(checkIn)
	if checkIn.Hour() >= w.WorkEnd.Hour {
		end = checkIn.Add(time.Hour)
	}
	return end
}

// ReconcileMinutes is the duration the nightly sweep writes for an
// unprocessed record: check-in to the assumed end, lunch overlap removed.
func ReconcileMinutes(checkIn time.Time, w config.Windows) int {
	end := ReconcileEnd(checkIn, w)
	mins := minutesBetween(checkIn, end) - LunchOverlapMinutes(checkIn, end, w)
	if mins < 0 {
		return 0
	}
	return mins
}

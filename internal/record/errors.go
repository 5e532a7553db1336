package record

import "errors"

var (
	// ErrNoActiveSession is returned when a checkout, memo update or
	// cancellation targets a day with no attendance record.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotCheckedOut is returned when cancel-checkout targets a record
	// that is still open.
	ErrNotCheckedOut = errors.New("not checked out")

	// ErrInvalidTimeRange is returned for edits that would produce an
	// interval ending before it starts.
	ErrInvalidTimeRange = errors.New("end time before start time")
)

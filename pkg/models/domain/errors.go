package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEditRejected   = errors.New("day is closed")
	ErrDayOutOfRange  = errors.New("day index out of range")
	ErrInvalidValue   = errors.New("invalid field value")
	ErrSubmitInFlight = errors.New("submission already in flight")
	ErrSessionClosed  = errors.New("entry session is closed")
)

// EditRejectedError is returned when a non is_open field of a closed day is edited
type EditRejectedError struct {
	Day   int
	Field string
}

func (e *EditRejectedError) Error() string {
	return fmt.Sprintf("edit of %q rejected for day %d: %v", e.Field, e.Day, ErrEditRejected)
}

func (e *EditRejectedError) Unwrap() error {
	return ErrEditRejected
}

type ValidationReason string

const (
	MissingWeekData ValidationReason = "missing_week_data"
	NoBudgetedSales ValidationReason = "no_budgeted_sales"
)

// ValidationError blocks a submission until the user edits the week
type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case MissingWeekData:
		return "no week data to submit"
	case NoBudgetedSales:
		return "at least one day needs budgeted sales"
	default:
		return string(e.Reason)
	}
}

// RemoteFetchError wraps a failed lookup that is recovered locally
type RemoteFetchError struct {
	Op  string
	Err error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// SubmissionError wraps a failed save; the session state is kept for retry
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

package model

import (
	"errors"
	"fmt"
)

// Reason identifies which rule rejected a request.
type Reason string

const (
	ReasonInvalidInput     Reason = "InvalidInput"
	ReasonClosedDay        Reason = "ClosedDay"
	ReasonInvalidSlotTime  Reason = "InvalidSlotTime"
	ReasonCapacityExceeded Reason = "CapacityExceeded"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrClosedDay        = errors.New("salon closed")
	ErrInvalidSlotTime  = errors.New("time outside operating hours")
	ErrCapacityExceeded = errors.New("slot full")
)

// Rejection is an expected business outcome, not a fault. Callers match it with
// errors.Is against the sentinels above or errors.As to read the reason.
type Rejection struct {
	Reason Reason
	Note   string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Note)
}

func (r *Rejection) Unwrap() error {
	switch r.Reason {
	case ReasonInvalidInput:
		return ErrInvalidInput
	case ReasonClosedDay:
		return ErrClosedDay
	case ReasonInvalidSlotTime:
		return ErrInvalidSlotTime
	case ReasonCapacityExceeded:
		return ErrCapacityExceeded
	}
	return nil
}

func Reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Note: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, or "" if err is not a rejection.
func ReasonOf(err error) Reason {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

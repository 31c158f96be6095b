package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus normalises user input into a known status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from current to requested.
// CANCELLED is terminal and self transitions are never allowed.
func CanTransition(current, requested Status) bool {
	switch current {
	case StatusPending:
		return requested == StatusConfirmed || requested == StatusCancelled
	case StatusConfirmed:
		return requested == StatusCancelled
	default:
		return false
	}
}

// CheckTransition is CanTransition expressed as a domain error.
func CheckTransition(current, requested Status) error {
	if CanTransition(current, requested) {
		return nil
	}
	return NewError(ErrCodeInvalidTransition, fmt.Sprintf("cannot change status from %s to %s", current, requested))
}

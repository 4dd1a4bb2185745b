// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// between different failure scenarios: ErrNotFound for a missing row,
// ErrSeatsUnavailable when a booking asks for seats that cannot be sold.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup yields no rows. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrSeatsUnavailable is returned when at least one requested seat is
// already booked or does not exist. Handlers should translate this into
// an HTTP 409 response.
var ErrSeatsUnavailable = errors.New("seats unavailable")

// UnavailableError lists the seats that blocked a booking. It matches
// ErrSeatsUnavailable with errors.Is.
type UnavailableError struct {
	Codes []string // seat codes, or "#<id>" for ids that do not exist
}

func (e *UnavailableError) Error() string {
	return "seats unavailable: " + strings.Join(e.Codes, ", ")
}

func (e *UnavailableError) Is(target error) bool { return target == ErrSeatsUnavailable }

package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates the unique email
	// constraint, including races that slip past a caller's pre-check.
	ErrDuplicateEmail = errors.New("duplicate email")
)

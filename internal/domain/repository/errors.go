package repository

import "errors"

var (
	// ErrNotFound is returned when a delivery does not exist.
	ErrNotFound = errors.New("delivery not found")
	// ErrDuplicateRecord is returned when an event id has already been claimed.
	ErrDuplicateRecord = errors.New("delivery for event already exists")
)

package domain

import "errors"

var (
	// ErrDuplicateKey is returned when a date key or a (business_id,
	// effective_start) pair already exists
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict is returned when an operation would leave an entity with a
	// second open version
	ErrConflict = errors.New("open version already exists")

	// ErrNotFound is returned when no version covers the requested date or a
	// referenced row does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange is returned for malformed effective intervals, e.g. a
	// version closing on or before the day it opened
	ErrInvalidRange = errors.New("invalid effective range")

	// ErrInvalidAmount is returned when a revenue fact carries a negative
	// actual or forecast amount
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrForeignKey is returned when a fact references a customer version or
	// date entry that does not exist
	ErrForeignKey = errors.New("unknown reference")
)

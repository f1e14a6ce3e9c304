package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrInstrumentNotFound   = errors.New("instrument not found")
	ErrMalformedID          = errors.New("malformed identifier")
	ErrInvalidInput         = errors.New("invalid input")

	// ErrVersionConflict is returned by a compare-and-swap write whose expected
	// version no longer matches the stored one.
	ErrVersionConflict = errors.New("profile version conflict")
	// ErrConcurrentModification is returned once retries on ErrVersionConflict are exhausted.
	ErrConcurrentModification = errors.New("profile modified concurrently")

	ErrStorage = errors.New("storage failure")
	ErrHashing = errors.New("password hashing failure")
)

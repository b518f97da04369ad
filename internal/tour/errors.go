package tour

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the tour does not exist in the repository.
	ErrNotFound = errors.New("tour not found")
	// ErrInvalid marks a descriptor that was fetched but failed validation.
	ErrInvalid = errors.New("invalid tour descriptor")
)

// LoadError reports a failure to fetch, decode or validate a tour descriptor.
type LoadError struct {
	TourID string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading tour %q: %v", e.TourID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

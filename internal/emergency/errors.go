package emergency

import "errors"

var (
	// ErrNotFound indicates the emergency does not exist.
	ErrNotFound = errors.New("emergency: not found")
	// ErrInvalidTransition indicates the requested status change is not
	// allowed from the current status.
	ErrInvalidTransition = errors.New("emergency: invalid status transition")
)

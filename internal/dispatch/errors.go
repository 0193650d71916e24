package dispatch

import "errors"

var (
	// ErrNotFound indicates the dispatch order does not exist.
	ErrNotFound = errors.New("dispatch: order not found")
	// ErrInvalidTransition indicates the requested status change is not
	// allowed from the current status.
	ErrInvalidTransition = errors.New("dispatch: invalid status transition")
	// ErrBadArrivalWindow indicates the estimated arrival does not lie
	// after the dispatch time.
	ErrBadArrivalWindow = errors.New("dispatch: estimated arrival must be after dispatch time")
	// ErrDuplicate indicates a conflicting dispatch order already exists.
	ErrDuplicate = errors.New("dispatch: duplicate order")
)

package walker

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called twice on a walker.
	ErrAlreadyStarted = errors.New("walker already started")
)

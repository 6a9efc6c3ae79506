package session

import "errors"

var (
	// ErrDestroyed is reported by operations issued after Destroy.
	ErrDestroyed = errors.New("search session destroyed")

	// ErrInvalidHost is returned by New when a required collaborator is missing.
	ErrInvalidHost = errors.New("invalid host: tree, selection and scheduler are required")

	// ErrBadPayload is returned by event handlers given an unexpected payload.
	ErrBadPayload = errors.New("unexpected event payload")
)

package dom

import "errors"

// Errors reported by hosts when a range or selection cannot be applied.
var (
	// ErrDetached indicates a node is no longer attached to the document.
	ErrDetached = errors.New("node is detached from the document")

	// ErrIndexSize indicates an offset outside the node's length.
	ErrIndexSize = errors.New("offset out of range")

	// ErrInvalidNode indicates a nil or foreign node handle.
	ErrInvalidNode = errors.New("invalid node")

	// ErrInvalidRange indicates a range whose start or end was never set.
	ErrInvalidRange = errors.New("invalid range")
)

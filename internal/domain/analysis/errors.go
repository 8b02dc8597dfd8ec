package analysis

import "errors"

var (
	// ErrNotFound is returned by repositories when no analysis matches.
	ErrNotFound = errors.New("analysis not found")
	// ErrInvalidImage rejects empty uploads and non-image payloads.
	ErrInvalidImage = errors.New("invalid image")
)

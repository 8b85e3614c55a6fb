package domain

import (
	"errors"
	"fmt"
)

// ErrCursorNotFound is returned when no cursor has been stored for a key.
var ErrCursorNotFound = errors.New("cursor not found")

// ManifestError means the manifest could not be read or does not match the expected schema.
// Index is -1 when the problem is not tied to a specific row.
type ManifestError struct {
	Path  string
	Index int
	Err   error
}

func (e *ManifestError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("manifest %q: entry %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("manifest %q: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

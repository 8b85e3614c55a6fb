package ports

import "context"

// CursorStore persists the opaque cursor a sensor uses as its watermark.
// Ticks read the cursor at start and write it at the end; nothing is cached in between.
type CursorStore interface {
	// Save persists the cursor for the given key, replacing any previous value.
	Save(ctx context.Context, key string, cursor string) error

	// Load retrieves the cursor for the given key.
	// Returns domain.ErrCursorNotFound if no cursor was stored.
	Load(ctx context.Context, key string) (string, error)

	// Delete removes the cursor for the given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys that currently hold a cursor.
	List(ctx context.Context) ([]string, error)
}

package ports

import "context"

// IdempotencyStore remembers which book a client-supplied key produced.
type IdempotencyStore interface {
	// Lookup returns the book id stored under key, if any.
	Lookup(ctx context.Context, key string) (bookID string, found bool, err error)
	Remember(ctx context.Context, key, bookID string) error
}

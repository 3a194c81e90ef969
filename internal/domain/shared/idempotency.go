package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a processed key is remembered unless the
// caller asks otherwise
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers keys that have already been processed. Outbox
// handlers key by handler name and event id; the ledger keys contribution
// requests by user and request key.
type IdempotencyStore interface {
	// MarkProcessed claims key and reports whether this call was the first
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Forget releases a claim so the work can be retried
	Forget(ctx context.Context, key string) error
	Close() error
}

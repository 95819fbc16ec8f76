package idempotency

import "context"

// Store remembers the result of operations keyed by a client-supplied key.
type Store interface {
	// Check returns the stored result JSON and whether the key exists.
	Check(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key, operation string, result []byte) error
}

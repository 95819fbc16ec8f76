package locker

import "context"

// AdvisoryLocker runs fn while holding an exclusive lock identified by key.
// Lock and unlock must happen on the same DB session.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}

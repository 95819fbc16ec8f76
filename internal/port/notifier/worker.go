package notifier

import (
	"context"

	"github.com/google/uuid"
)

// WorkerNotifier pushes an event to a worker's live session, if any.
// A worker without a session is not an error.
type WorkerNotifier interface {
	NotifyWorker(ctx context.Context, workerID uuid.UUID, event any) error
}

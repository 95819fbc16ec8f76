//go:build integration

package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NotifyCall records a single notification delivered by CaptureNotifier.
type NotifyCall struct {
	WorkerID uuid.UUID
	Event    any
}

// CaptureNotifier is a WorkerNotifier test double, safe for concurrent use.
type CaptureNotifier struct {
	mu    sync.Mutex
	Calls []NotifyCall
}

func (c *CaptureNotifier) NotifyWorker(_ context.Context, workerID uuid.UUID, event any) error {
	c.mu.Lock()
	c.Calls = append(c.Calls, NotifyCall{WorkerID: workerID, Event: event})
	c.mu.Unlock()
	return nil
}

// WorkerNotifications returns all calls made for workerID.
func (c *CaptureNotifier) WorkerNotifications(workerID uuid.UUID) []NotifyCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []NotifyCall
	for _, call := range c.Calls {
		if call.WorkerID == workerID {
			out = append(out, call)
		}
	}
	return out
}

func (c *CaptureNotifier) Reset() {
	c.mu.Lock()
	c.Calls = nil
	c.mu.Unlock()
}

package selector

import (
	"context"
	"errors"

	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
)

// ErrNoWorkerAvailable is an expected outcome, not a failure: the task stays unassigned.
var ErrNoWorkerAvailable = errors.New("no worker available")

// Selector picks the worker that should receive the next task.
// It only selects; it never writes the assignment.
type Selector interface {
	Select(ctx context.Context) (domainuser.User, error)
}

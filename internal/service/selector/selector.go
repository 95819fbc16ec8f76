package selector

import (
	"context"
	"fmt"

	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	portselector "github.com/alanyang/repair-desk/internal/port/selector"
	portuser "github.com/alanyang/repair-desk/internal/port/user"
)

var _ portselector.Selector = (*Service)(nil)

// Service picks the least-loaded worker.
// It depends on WorkerDirectory (1 method), not the full user repository.
type Service struct {
	dir portuser.WorkerDirectory
}

func NewService(dir portuser.WorkerDirectory) *Service {
	return &Service{dir: dir}
}

// Select returns the worker holding the fewest task references, or
// portselector.ErrNoWorkerAvailable when there are no workers at all.
func (s *Service) Select(ctx context.Context) (domainuser.User, error) {
	workers, err := s.dir.ListByRole(ctx, domainuser.RoleWorker)
	if err != nil {
		return domainuser.User{}, fmt.Errorf("list workers: %w", err)
	}
	w, ok := LeastLoaded(workers)
	if !ok {
		return domainuser.User{}, portselector.ErrNoWorkerAvailable
	}
	return w, nil
}

// LeastLoaded returns the worker with the smallest task list. Ties go to the
// first one in slice order, so the result is deterministic for a given order.
func LeastLoaded(workers []domainuser.User) (domainuser.User, bool) {
	if len(workers) == 0 {
		return domainuser.User{}, false
	}
	best := 0
	for i := 1; i < len(workers); i++ {
		if workers[i].Load() < workers[best].Load() {
			best = i
		}
	}
	return workers[best], true
}

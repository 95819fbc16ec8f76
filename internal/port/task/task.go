package task

import (
	"context"

	"github.com/google/uuid"

	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
)

// Repository is the task record store.
type Repository interface {
	Create(ctx context.Context, t domaintask.Task) (domaintask.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error)
	List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.Task, error)

	// UpdateStatus performs an atomic CAS: only transitions if current status matches `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domaintask.Status) error

	// CountByStatus returns task totals per status plus the number of open unassigned tasks.
	CountByStatus(ctx context.Context) (map[domaintask.Status]int, int, error)
}

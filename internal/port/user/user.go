package user

import (
	"context"

	"github.com/google/uuid"

	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
)

// Repository manages user accounts.
type Repository interface {
	Create(ctx context.Context, u domainuser.User) (domainuser.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainuser.User, error)
	GetByEmail(ctx context.Context, email string) (domainuser.User, error)
	List(ctx context.Context, filters domainuser.ListFilters) ([]domainuser.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkerDirectory is the narrow read the selector needs.
type WorkerDirectory interface {
	// ListByRole returns users with the role ordered by created_at, id.
	ListByRole(ctx context.Context, role domainuser.Role) ([]domainuser.User, error)
}

// AssignmentWriter mutates a worker's task references.
type AssignmentWriter interface {
	// AppendTask adds taskID to the worker's task list and records the owner on the task.
	// Returns domainuser.ErrNotFound when workerID is not an existing worker.
	AppendTask(ctx context.Context, workerID, taskID uuid.UUID) error
	// RemoveTask drops taskID from the worker's task list and clears the task owner.
	RemoveTask(ctx context.Context, workerID, taskID uuid.UUID) error
}

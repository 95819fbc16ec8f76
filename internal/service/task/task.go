package task

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyang/repair-desk/internal/domain/event"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	portbus "github.com/alanyang/repair-desk/internal/port/eventbus"
	portlocker "github.com/alanyang/repair-desk/internal/port/locker"
	portnotifier "github.com/alanyang/repair-desk/internal/port/notifier"
	portrevalidator "github.com/alanyang/repair-desk/internal/port/revalidator"
	portselector "github.com/alanyang/repair-desk/internal/port/selector"
	porttask "github.com/alanyang/repair-desk/internal/port/task"
	portuser "github.com/alanyang/repair-desk/internal/port/user"
)

// assignmentLockKey serialises every select-then-append sequence so two
// concurrent requests cannot both read the same least-loaded worker.
var assignmentLockKey = advisoryKey("task-assignment")

// Outcome is how the assignment step of a task creation ended.
type Outcome string

const (
	OutcomeAssigned   Outcome = "assigned"
	OutcomeUnassigned Outcome = "unassigned"
	// OutcomeAssignFailed is a soft failure: the task exists, the assignment
	// write did not happen, and the caller still sees a success report.
	OutcomeAssignFailed Outcome = "assign_failed"
)

type Result struct {
	Task     domaintask.Task
	WorkerID *uuid.UUID
	Outcome  Outcome
}

// Service manages the repair task lifecycle and its assignment to workers.
type Service struct {
	repo        porttask.Repository
	writer      portuser.AssignmentWriter
	sel         portselector.Selector
	bus         portbus.EventBus
	locker      portlocker.AdvisoryLocker
	revalidator portrevalidator.Revalidator
	notifier    portnotifier.WorkerNotifier
	phoneRegion string
}

func NewService(
	repo porttask.Repository,
	writer portuser.AssignmentWriter,
	sel portselector.Selector,
	bus portbus.EventBus,
	locker portlocker.AdvisoryLocker,
	revalidator portrevalidator.Revalidator,
	notifier portnotifier.WorkerNotifier,
	phoneRegion string,
) *Service {
	return &Service{
		repo:        repo,
		writer:      writer,
		sel:         sel,
		bus:         bus,
		locker:      locker,
		revalidator: revalidator,
		notifier:    notifier,
		phoneRegion: phoneRegion,
	}
}

// CreateAndAssign persists a new task and hands it to the least-loaded worker.
//
// Only validation and task persistence can fail the call. Once the task exists
// it is never rolled back: no worker yields OutcomeUnassigned, and a failed
// assignment write is logged and yields OutcomeAssignFailed.
func (s *Service) CreateAndAssign(ctx context.Context, in CreateInput) (Result, error) {
	in, err := in.Normalize(s.phoneRegion)
	if err != nil {
		return Result{}, err
	}

	t := domaintask.New(in.Description, in.CustomerName, in.CustomerPhone, in.LaptopBrand, in.LaptopModel, in.TotalCost)
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return Result{}, fmt.Errorf("create task: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeTaskCreated, created.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish TaskCreated event", "task_id", created.ID, "error", err)
	}

	res := Result{Task: created, Outcome: OutcomeUnassigned}
	if err := s.locker.WithLock(ctx, assignmentLockKey, func(ctx context.Context) error {
		res = s.assign(ctx, created)
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "assignment lock failed, task left unassigned", "task_id", created.ID, "error", err)
		res = Result{Task: created, Outcome: OutcomeAssignFailed}
	}

	s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	return res, nil
}

// assign runs select + append. Must be called under assignmentLockKey.
func (s *Service) assign(ctx context.Context, t domaintask.Task) Result {
	worker, err := s.sel.Select(ctx)
	if errors.Is(err, portselector.ErrNoWorkerAvailable) {
		slog.InfoContext(ctx, "no worker available, task left unassigned", "task_id", t.ID)
		return Result{Task: t, Outcome: OutcomeUnassigned}
	}
	if err != nil {
		slog.ErrorContext(ctx, "select worker failed", "task_id", t.ID, "error", err)
		return Result{Task: t, Outcome: OutcomeAssignFailed}
	}

	if err := s.writer.AppendTask(ctx, worker.ID, t.ID); err != nil {
		slog.ErrorContext(ctx, "assign task to worker failed", "task_id", t.ID, "worker_id", worker.ID, "error", err)
		return Result{Task: t, Outcome: OutcomeAssignFailed}
	}

	workerID := worker.ID
	t.AssignedWorkerID = &workerID
	s.announceAssignment(ctx, t.ID, workerID)
	return Result{Task: t, WorkerID: &workerID, Outcome: OutcomeAssigned}
}

func (s *Service) announceAssignment(ctx context.Context, taskID, workerID uuid.UUID) {
	s.notifier.NotifyWorker(ctx, workerID, map[string]string{ //nolint:errcheck
		"event": "task_assigned", "task_id": taskID.String(),
	})
	if err := s.bus.Publish(ctx, event.New(event.TypeTaskAssigned, taskID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish TaskAssigned event", "task_id", taskID, "error", err)
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.Task, error) {
	tasks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus performs a CAS status transition.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domaintask.Status) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %q to %q", domaintask.ErrInvalidTransition, from, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if err := s.bus.Publish(ctx, event.New(event.TypeTaskStatusUpdated, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish TaskStatusUpdated event", "task_id", id, "error", err)
	}
	s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	return nil
}

// Reassign moves an open task to workerID, dropping it from its previous owner.
// The task is read under the assignment lock so the owner it acts on is current.
func (s *Service) Reassign(ctx context.Context, taskID, workerID uuid.UUID) (domaintask.Task, error) {
	var (
		out   domaintask.Task
		moved bool
	)
	err := s.locker.WithLock(ctx, assignmentLockKey, func(ctx context.Context) error {
		t, err := s.repo.GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if t.Status == domaintask.StatusCompleted {
			return fmt.Errorf("%w: task is completed", domaintask.ErrInvalidTransition)
		}
		out = t
		if t.AssignedWorkerID != nil && *t.AssignedWorkerID == workerID {
			return nil
		}

		if t.AssignedWorkerID != nil {
			if err := s.writer.RemoveTask(ctx, *t.AssignedWorkerID, taskID); err != nil {
				return fmt.Errorf("remove task from previous worker: %w", err)
			}
		}
		if err := s.writer.AppendTask(ctx, workerID, taskID); err != nil {
			return fmt.Errorf("append task to worker: %w", err)
		}
		out.AssignedWorkerID = &workerID
		moved = true
		return nil
	})
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("reassign task: %w", err)
	}
	if !moved {
		return out, nil
	}

	s.announceAssignment(ctx, taskID, workerID)
	s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	return out, nil
}

// SweepUnassigned hands open unassigned tasks, oldest first, to the
// least-loaded worker until none are left or no worker exists.
//
// A task whose assignment write fails is logged and skipped; its error is
// returned joined with the others after the rest of the sweep has run.
func (s *Service) SweepUnassigned(ctx context.Context) error {
	assigned := 0
	var failed []error
	err := s.locker.WithLock(ctx, assignmentLockKey, func(ctx context.Context) error {
		tasks, err := s.repo.List(ctx, domaintask.ListFilters{
			Unassigned:  true,
			OpenOnly:    true,
			OldestFirst: true,
		})
		if err != nil {
			return fmt.Errorf("list unassigned tasks: %w", err)
		}
		for _, t := range tasks {
			worker, err := s.sel.Select(ctx)
			if errors.Is(err, portselector.ErrNoWorkerAvailable) {
				return nil // no workers left; the rest wait for the next sweep
			}
			if err != nil {
				return fmt.Errorf("select worker: %w", err)
			}
			if err := s.writer.AppendTask(ctx, worker.ID, t.ID); err != nil {
				slog.ErrorContext(ctx, "sweep: assign task failed", "task_id", t.ID, "worker_id", worker.ID, "error", err)
				failed = append(failed, fmt.Errorf("assign task %s: %w", t.ID, err))
				continue
			}
			s.announceAssignment(ctx, t.ID, worker.ID)
			assigned++
		}
		return nil
	})
	if assigned > 0 {
		slog.InfoContext(ctx, "sweep assigned waiting tasks", "count", assigned)
		s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	}
	if err != nil {
		return err
	}
	return errors.Join(failed...)
}

// advisoryKey hashes a lock scope to a stable int64 for pg_advisory_lock.
func advisoryKey(scope string) int64 {
	h := fnv.New64a()
	h.Write([]byte(scope))
	return int64(h.Sum64())
}

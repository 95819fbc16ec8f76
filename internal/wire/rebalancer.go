package wire

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/repair-desk/internal/domain/event"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	porteventbus "github.com/alanyang/repair-desk/internal/port/eventbus"
)

type sweeper interface {
	SweepUnassigned(ctx context.Context) error
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (domainuser.User, error)
}

// rebalancer hands waiting tasks to workers when the worker pool changes.
// A new worker can take tasks that arrived while nobody was available, and a
// deleted worker's tasks are unassigned by the database and need a new owner.
type rebalancer struct {
	tasks    sweeper
	users    userLookup
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newRebalancer(tasks sweeper, users userLookup, debounce time.Duration) *rebalancer {
	return &rebalancer{tasks: tasks, users: users, debounce: debounce}
}

// start subscribes to the user channel and runs one sweep for tasks left
// waiting across a restart.
func (r *rebalancer) start(ctx context.Context, bus porteventbus.EventBus) (porteventbus.Subscription, error) {
	sub, err := bus.Subscribe(ctx, event.ChannelUser, r.handle)
	if err != nil {
		return nil, err
	}
	go r.sweep(context.WithoutCancel(ctx), "startup")
	return sub, nil
}

func (r *rebalancer) handle(ctx context.Context, e event.Event) {
	switch e.Type {
	case event.TypeUserCreated:
		u, err := r.users.GetByID(ctx, e.EntityID)
		if err != nil {
			slog.WarnContext(ctx, "rebalancer: lookup of new user failed", "user_id", e.EntityID, "error", err)
			return
		}
		if !u.IsWorker() {
			return
		}
		r.schedule(ctx, "worker_added")
	case event.TypeUserDeleted:
		r.schedule(ctx, "user_deleted")
	}
}

// schedule coalesces events arriving within the debounce window into one sweep.
func (r *rebalancer) schedule(ctx context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	sweepCtx := context.WithoutCancel(ctx)
	r.timer = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		r.timer = nil
		r.mu.Unlock()
		r.sweep(sweepCtx, reason)
	})
}

func (r *rebalancer) sweep(ctx context.Context, reason string) {
	if err := r.tasks.SweepUnassigned(ctx); err != nil {
		slog.ErrorContext(ctx, "rebalancer: sweep failed", "reason", reason, "error", err)
	} else {
		slog.InfoContext(ctx, "rebalancer: sweep finished", "reason", reason)
	}
}

func (r *rebalancer) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

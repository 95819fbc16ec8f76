package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/repair-desk/internal/domain/event"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	portcache "github.com/alanyang/repair-desk/internal/port/cache"
	portbus "github.com/alanyang/repair-desk/internal/port/eventbus"
	portrevalidator "github.com/alanyang/repair-desk/internal/port/revalidator"
	porttask "github.com/alanyang/repair-desk/internal/port/task"
	portuser "github.com/alanyang/repair-desk/internal/port/user"
)

var _ portrevalidator.Revalidator = (*Service)(nil)

type WorkerLoad struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image string    `json:"image,omitempty"`
	Tasks int       `json:"tasks"`
}

// View is the admin dashboard's summary of workers and task backlog.
type View struct {
	Workers     []WorkerLoad              `json:"workers"`
	TaskCounts  map[domaintask.Status]int `json:"task_counts"`
	Unassigned  int                       `json:"unassigned"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Service builds the dashboard view and owns its cache entry.
type Service struct {
	tasks porttask.Repository
	dir   portuser.WorkerDirectory
	cache portcache.Cache
	bus   portbus.EventBus
	ttl   time.Duration

	// gen counts revalidations per tag. A view built across a revalidation
	// is served but not cached.
	mu  sync.Mutex
	gen map[string]uint64
}

func NewService(tasks porttask.Repository, dir portuser.WorkerDirectory, cache portcache.Cache, bus portbus.EventBus, ttl time.Duration) *Service {
	return &Service{tasks: tasks, dir: dir, cache: cache, bus: bus, ttl: ttl, gen: make(map[string]uint64)}
}

func (s *Service) generation(tag string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[tag]
}

// Overview returns the cached view, rebuilding it on a miss.
func (s *Service) Overview(ctx context.Context) (View, error) {
	raw, err := s.cache.Get(ctx, portrevalidator.TagAdminDashboard)
	if err == nil {
		var v View
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		slog.WarnContext(ctx, "dashboard: discarding unreadable cache entry", "error", err)
	} else if !errors.Is(err, portcache.ErrNotFound) {
		slog.WarnContext(ctx, "dashboard: cache read failed", "error", err)
	}

	gen := s.generation(portrevalidator.TagAdminDashboard)
	v, err := s.build(ctx)
	if err != nil {
		return View{}, err
	}

	if data, err := json.Marshal(v); err == nil {
		s.storeIfCurrent(ctx, portrevalidator.TagAdminDashboard, gen, data)
	}
	return v, nil
}

// storeIfCurrent caches data unless tag was revalidated after gen was read.
// The lock spans the write so a concurrent Revalidate either skips this write
// or invalidates it afterwards.
func (s *Service) storeIfCurrent(ctx context.Context, tag string, gen uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[tag] != gen {
		slog.DebugContext(ctx, "dashboard: view went stale while building, not cached", "tag", tag)
		return
	}
	if err := s.cache.Set(ctx, tag, data, s.ttl); err != nil {
		slog.WarnContext(ctx, "dashboard: cache write failed", "error", err)
	}
}

func (s *Service) build(ctx context.Context) (View, error) {
	workers, err := s.dir.ListByRole(ctx, domainuser.RoleWorker)
	if err != nil {
		return View{}, fmt.Errorf("list workers: %w", err)
	}
	counts, unassigned, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return View{}, fmt.Errorf("count tasks: %w", err)
	}

	loads := make([]WorkerLoad, 0, len(workers))
	for _, w := range workers {
		loads = append(loads, WorkerLoad{ID: w.ID, Name: w.Name, Email: w.Email, Image: w.Image, Tasks: w.Load()})
	}
	for _, st := range []domaintask.Status{domaintask.StatusPending, domaintask.StatusInProgress, domaintask.StatusCompleted} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}

	return View{
		Workers:     loads,
		TaskCounts:  counts,
		Unassigned:  unassigned,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Revalidate drops the cached view for tag and tells connected dashboards to refresh.
func (s *Service) Revalidate(ctx context.Context, tag string) {
	s.mu.Lock()
	s.gen[tag]++
	s.mu.Unlock()

	if err := s.cache.Invalidate(ctx, tag); err != nil {
		slog.ErrorContext(ctx, "dashboard: invalidate failed", "tag", tag, "error", err)
	}
	if err := s.bus.Publish(ctx, event.Revalidated(tag)); err != nil {
		slog.ErrorContext(ctx, "failed to publish DashboardRevalidated event", "tag", tag, "error", err)
	}
}

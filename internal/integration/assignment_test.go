//go:build integration

package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/repair-desk/internal/adapter/memory"
	pgeventbus "github.com/alanyang/repair-desk/internal/adapter/postgres/eventbus"
	pglocker "github.com/alanyang/repair-desk/internal/adapter/postgres/locker"
	pgtask "github.com/alanyang/repair-desk/internal/adapter/postgres/task"
	pguser "github.com/alanyang/repair-desk/internal/adapter/postgres/user"
	"github.com/alanyang/repair-desk/internal/auth"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	dashboardsvc "github.com/alanyang/repair-desk/internal/service/dashboard"
	selectorsvc "github.com/alanyang/repair-desk/internal/service/selector"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"
	"github.com/alanyang/repair-desk/internal/testutil"
)

// ── test harness ──────────────────────────────────────────────────────────────

// The test database is shared, so other workers may exist. Assertions check
// where a task ended up, never which worker "should" have won.
type testServices struct {
	userRepo *pguser.Repository
	taskSvc  *tasksvc.Service
	userSvc  *usersvc.Service
	dashSvc  *dashboardsvc.Service
	notifier *testutil.CaptureNotifier
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	pool := testutil.SetupTestDB(t)

	taskRepo := pgtask.New(pool)
	userRepo := pguser.New(pool)
	bus := pgeventbus.New(pool)
	t.Cleanup(bus.Close)
	notifier := &testutil.CaptureNotifier{}

	dash := dashboardsvc.NewService(taskRepo, userRepo, memory.NewCache(), bus, time.Minute)
	tokens := auth.NewManager("integration-secret-key", time.Hour)

	return &testServices{
		userRepo: userRepo,
		taskSvc: tasksvc.NewService(taskRepo, userRepo, selectorsvc.NewService(userRepo),
			bus, pglocker.New(pool), dash, notifier, "KG"),
		userSvc:  usersvc.NewService(userRepo, bus, dash, tokens),
		dashSvc:  dash,
		notifier: notifier,
	}
}

func (s *testServices) addWorker(t *testing.T, ctx context.Context) domainuser.User {
	t.Helper()
	u, err := s.userSvc.Add(ctx, usersvc.AddInput{
		Name:     "Worker",
		Email:    testutil.UniqueEmail("worker"),
		Role:     domainuser.RoleWorker,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return u
}

func intake() tasksvc.CreateInput {
	return tasksvc.CreateInput{
		Description:   "Cracked screen",
		TotalCost:     120,
		CustomerName:  "Aida",
		CustomerPhone: "0555 123 456",
		LaptopBrand:   "Lenovo",
		LaptopModel:   "T480",
	}
}

func (s *testServices) ownerOf(t *testing.T, ctx context.Context, res tasksvc.Result) uuid.UUID {
	t.Helper()
	require.Equal(t, tasksvc.OutcomeAssigned, res.Outcome)
	require.NotNil(t, res.WorkerID)

	got, err := s.taskSvc.GetByID(ctx, res.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedWorkerID)
	assert.Equal(t, *res.WorkerID, *got.AssignedWorkerID)

	w, err := s.userRepo.GetByID(ctx, *res.WorkerID)
	require.NoError(t, err)
	assert.True(t, w.HasTask(res.Task.ID), "worker's task list must reference the task")
	return w.ID
}

// ── scenarios ─────────────────────────────────────────────────────────────────

func TestCreateAndAssign_PersistsAndAssigns(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.addWorker(t, ctx)

	res, err := s.taskSvc.CreateAndAssign(ctx, intake())
	require.NoError(t, err)

	owner := s.ownerOf(t, ctx, res)
	assert.Equal(t, "+996555123456", res.Task.CustomerPhone)
	assert.Equal(t, domaintask.StatusPending, res.Task.Status)
	assert.NotEmpty(t, s.notifier.WorkerNotifications(owner))

	report := tasksvc.NewReport(res, nil)
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, "Task created and assigned successfully!", report.Message)
}

func TestCreateAndAssign_ValidationPersistsNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	in := intake()
	in.CustomerPhone = "not a phone"
	_, err := s.taskSvc.CreateAndAssign(ctx, in)
	require.ErrorIs(t, err, tasksvc.ErrValidation)
}

func TestCreateAndAssign_ConcurrentCreationsAssignEachTaskOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.addWorker(t, ctx)
	s.addWorker(t, ctx)

	const n = 8
	results := make([]tasksvc.Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.taskSvc.CreateAndAssign(ctx, intake())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		s.ownerOf(t, ctx, results[i])
	}
}

func TestSweepUnassigned_PicksUpTaskLeftByDeletedWorker(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.addWorker(t, ctx)

	res, err := s.taskSvc.CreateAndAssign(ctx, intake())
	require.NoError(t, err)
	first := s.ownerOf(t, ctx, res)

	require.NoError(t, s.userSvc.Delete(ctx, first))
	got, err := s.taskSvc.GetByID(ctx, res.Task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedWorkerID, "deleting the owner must unassign the task")

	s.addWorker(t, ctx)
	require.NoError(t, s.taskSvc.SweepUnassigned(ctx))

	got, err = s.taskSvc.GetByID(ctx, res.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedWorkerID)
	assert.NotEqual(t, first, *got.AssignedWorkerID)
}

func TestUpdateStatus_LinearLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.addWorker(t, ctx)

	res, err := s.taskSvc.CreateAndAssign(ctx, intake())
	require.NoError(t, err)
	id := res.Task.ID

	require.ErrorIs(t, s.taskSvc.UpdateStatus(ctx, id, domaintask.StatusPending, domaintask.StatusCompleted),
		domaintask.ErrInvalidTransition)
	require.NoError(t, s.taskSvc.UpdateStatus(ctx, id, domaintask.StatusPending, domaintask.StatusInProgress))
	require.ErrorIs(t, s.taskSvc.UpdateStatus(ctx, id, domaintask.StatusPending, domaintask.StatusInProgress),
		domaintask.ErrStatusConflict)
	require.NoError(t, s.taskSvc.UpdateStatus(ctx, id, domaintask.StatusInProgress, domaintask.StatusCompleted))
}

func TestDashboard_ReflectsNewAssignment(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.addWorker(t, ctx)

	_, err := s.dashSvc.Overview(ctx)
	require.NoError(t, err)

	res, err := s.taskSvc.CreateAndAssign(ctx, intake())
	require.NoError(t, err)
	owner := s.ownerOf(t, ctx, res)

	view, err := s.dashSvc.Overview(ctx)
	require.NoError(t, err)
	var found bool
	for _, w := range view.Workers {
		if w.ID == owner {
			found = true
			assert.GreaterOrEqual(t, w.Tasks, 1)
		}
	}
	assert.True(t, found, "revalidated dashboard must list the owner")
}

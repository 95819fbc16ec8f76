//go:build integration

package task_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgtask "github.com/alanyang/repair-desk/internal/adapter/postgres/task"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	"github.com/alanyang/repair-desk/internal/testutil"
)

func makeTask(t *testing.T, ctx context.Context, r *pgtask.Repository) domaintask.Task {
	t.Helper()
	created, err := r.Create(ctx, domaintask.New("keyboard", "Aibek", "+996700123456", "Lenovo", "T480", 35.5))
	require.NoError(t, err)
	return created
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	r := pgtask.New(pool)

	created := makeTask(t, ctx, r)
	assert.Equal(t, domaintask.StatusPending, created.Status)
	assert.Nil(t, created.AssignedWorkerID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Lenovo", got.LaptopBrand)
	assert.InDelta(t, 35.5, got.TotalCost, 0.0001)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	_, err := pgtask.New(pool).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domaintask.ErrNotFound)
}

func TestTaskRepo_UpdateStatus_CAS(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	r := pgtask.New(pool)
	task := makeTask(t, ctx, r)

	require.NoError(t, r.UpdateStatus(ctx, task.ID, domaintask.StatusPending, domaintask.StatusInProgress))

	err := r.UpdateStatus(ctx, task.ID, domaintask.StatusPending, domaintask.StatusInProgress)
	assert.ErrorIs(t, err, domaintask.ErrStatusConflict)

	err = r.UpdateStatus(ctx, uuid.New(), domaintask.StatusPending, domaintask.StatusInProgress)
	assert.ErrorIs(t, err, domaintask.ErrNotFound)

	got, err := r.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domaintask.StatusInProgress, got.Status)
}

func TestTaskRepo_List_UnassignedOpenOldestFirst(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	r := pgtask.New(pool)

	first := makeTask(t, ctx, r)
	done := makeTask(t, ctx, r)
	require.NoError(t, r.UpdateStatus(ctx, done.ID, domaintask.StatusPending, domaintask.StatusInProgress))
	require.NoError(t, r.UpdateStatus(ctx, done.ID, domaintask.StatusInProgress, domaintask.StatusCompleted))
	second := makeTask(t, ctx, r)

	tasks, err := r.List(ctx, domaintask.ListFilters{Unassigned: true, OpenOnly: true, OldestFirst: true})
	require.NoError(t, err)

	pos := map[uuid.UUID]int{}
	for i, tk := range tasks {
		assert.NotEqual(t, domaintask.StatusCompleted, tk.Status)
		assert.Nil(t, tk.AssignedWorkerID)
		pos[tk.ID] = i
	}
	assert.NotContains(t, pos, done.ID)
	require.Contains(t, pos, first.ID)
	require.Contains(t, pos, second.ID)
	assert.Less(t, pos[first.ID], pos[second.ID])
}

func TestTaskRepo_CountByStatus(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	r := pgtask.New(pool)

	before, _, err := r.CountByStatus(ctx)
	require.NoError(t, err)

	makeTask(t, ctx, r)

	after, unassignedAfter, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	// Other packages share the database, so only a lower bound holds.
	assert.GreaterOrEqual(t, after[domaintask.StatusPending], before[domaintask.StatusPending]+1)
	assert.GreaterOrEqual(t, unassignedAfter, 1)
}

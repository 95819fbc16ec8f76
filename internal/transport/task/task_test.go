package task_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/repair-desk/internal/auth"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	"github.com/alanyang/repair-desk/internal/mocks"
	portselector "github.com/alanyang/repair-desk/internal/port/selector"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	transporttask "github.com/alanyang/repair-desk/internal/transport/task"
)

func init() { gin.SetMode(gin.TestMode) }

type taskDeps struct {
	taskRepo    *mocks.MockTaskRepository
	writer      *mocks.MockAssignmentWriter
	sel         *mocks.MockSelector
	bus         *mocks.MockEventBus
	locker      *mocks.MockAdvisoryLocker
	revalidator *mocks.MockRevalidator
	notifier    *mocks.MockWorkerNotifier
	idem        *mocks.MockIdempotencyStore
}

func newTaskSvc(t *testing.T) (*tasksvc.Service, taskDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := taskDeps{
		taskRepo:    mocks.NewMockTaskRepository(ctrl),
		writer:      mocks.NewMockAssignmentWriter(ctrl),
		sel:         mocks.NewMockSelector(ctrl),
		bus:         mocks.NewMockEventBus(ctrl),
		locker:      mocks.NewMockAdvisoryLocker(ctrl),
		revalidator: mocks.NewMockRevalidator(ctrl),
		notifier:    mocks.NewMockWorkerNotifier(ctrl),
		idem:        mocks.NewMockIdempotencyStore(ctrl),
	}
	svc := tasksvc.NewService(d.taskRepo, d.writer, d.sel, d.bus, d.locker, d.revalidator, d.notifier, "KG")
	return svc, d
}

func newRouter(svc *tasksvc.Service, d taskDeps, claims *auth.Claims) *gin.Engine {
	r := gin.New()
	g := r.Group("/tasks")
	if claims != nil {
		g.Use(auth.WithClaims(claims))
	}
	transporttask.Register(g, svc, d.idem)
	return r
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: domainuser.RoleAdmin}
}

// allowCreate absorbs the happy-path side effects of CreateAndAssign with no worker available.
func allowCreate(d taskDeps) {
	d.taskRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, t domaintask.Task) (domaintask.Task, error) { return t, nil }).AnyTimes()
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	d.sel.EXPECT().Select(gomock.Any()).Return(domainuser.User{}, portselector.ErrNoWorkerAvailable).AnyTimes()
	d.revalidator.EXPECT().Revalidate(gomock.Any(), gomock.Any()).AnyTimes()
}

func validBody() map[string]any {
	return map[string]any{
		"description":   "Replace cracked screen",
		"totalCost":     120,
		"customerName":  "Aibek",
		"customerPhone": "0700 123 456",
		"laptopBrand":   "Dell",
		"laptopModel":   "XPS 13",
	}
}

func doJSON(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body) //nolint:errcheck
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── POST /tasks ───────────────────────────────────────────────────────────────

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name       string
		body       func() any
		setup      func(d taskDeps)
		wantCode   int
		wantStatus string
		wantMsg    string
	}{
		{
			name:       "created without worker",
			body:       func() any { return validBody() },
			setup:      allowCreate,
			wantCode:   http.StatusCreated,
			wantStatus: tasksvc.ReportSuccess,
			wantMsg:    tasksvc.MsgNoWorker,
		},
		{
			name: "validation message passes through",
			body: func() any {
				b := validBody()
				b["totalCost"] = -1
				return b
			},
			setup:      func(taskDeps) {},
			wantCode:   http.StatusBadRequest,
			wantStatus: tasksvc.ReportError,
			wantMsg:    "totalCost must be greater than or equal to 0",
		},
		{
			name:       "malformed body",
			body:       func() any { return "not an object" },
			setup:      func(taskDeps) {},
			wantCode:   http.StatusBadRequest,
			wantStatus: tasksvc.ReportError,
			wantMsg:    "invalid request body",
		},
		{
			name: "store failure hides detail",
			body: func() any { return validBody() },
			setup: func(d taskDeps) {
				d.taskRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domaintask.Task{}, errors.New("connection refused"))
			},
			wantCode:   http.StatusInternalServerError,
			wantStatus: tasksvc.ReportError,
			wantMsg:    tasksvc.MsgInternalError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := newTaskSvc(t)
			tc.setup(d)

			w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost, "/tasks", tc.body(), nil)

			assert.Equal(t, tc.wantCode, w.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStatus, resp["status"])
			assert.Equal(t, tc.wantMsg, resp["message"])
		})
	}
}

func TestCreateTask_IdempotentReplay(t *testing.T) {
	svc, d := newTaskSvc(t)
	stored := []byte(`{"status":"success","message":"Task created and assigned successfully!"}`)
	d.idem.EXPECT().Check(gomock.Any(), "abc").Return(stored, true, nil)

	w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost, "/tasks", validBody(),
		map[string]string{"Idempotency-Key": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, string(stored), w.Body.String())
}

func TestCreateTask_SavesReportUnderKey(t *testing.T) {
	svc, d := newTaskSvc(t)
	allowCreate(d)
	d.idem.EXPECT().Check(gomock.Any(), "k1").Return(nil, false, nil)
	d.idem.EXPECT().Save(gomock.Any(), "k1", "create_task", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, result []byte) error {
			var resp map[string]any
			require.NoError(t, json.Unmarshal(result, &resp))
			assert.Equal(t, tasksvc.MsgNoWorker, resp["message"])
			assert.NotEmpty(t, resp["task_id"])
			return nil
		})

	w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost, "/tasks", validBody(),
		map[string]string{"Idempotency-Key": "k1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTask_InternalErrorNotSaved(t *testing.T) {
	svc, d := newTaskSvc(t)
	d.idem.EXPECT().Check(gomock.Any(), "k2").Return(nil, false, nil)
	d.taskRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domaintask.Task{}, errors.New("db down"))
	// No Save expectation: gomock fails the test if it is called.

	w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost, "/tasks", validBody(),
		map[string]string{"Idempotency-Key": "k2"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ── GET /tasks ────────────────────────────────────────────────────────────────

func TestListTasks_Filters(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), Role: domainuser.RoleWorker}
	svc, d := newTaskSvc(t)
	d.taskRepo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f domaintask.ListFilters) ([]domaintask.Task, error) {
			require.NotNil(t, f.AssignedTo)
			assert.Equal(t, claims.UserID, *f.AssignedTo)
			require.NotNil(t, f.Status)
			assert.Equal(t, domaintask.StatusInProgress, *f.Status)
			assert.True(t, f.OpenOnly)
			assert.True(t, f.OldestFirst)
			assert.False(t, f.Unassigned)
			return []domaintask.Task{}, nil
		})

	w := doJSON(newRouter(svc, d, claims), http.MethodGet,
		"/tasks?assigned_to=me&status=In%20Progress&open=true&order=oldest", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListTasks_BadStatus(t *testing.T) {
	svc, d := newTaskSvc(t)
	w := doJSON(newRouter(svc, d, adminClaims()), http.MethodGet, "/tasks?status=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── GET /tasks/:id ────────────────────────────────────────────────────────────

func TestGetTask(t *testing.T) {
	svc, d := newTaskSvc(t)
	r := newRouter(svc, d, adminClaims())

	found := domaintask.New("d", "n", "+996700123456", "b", "m", 1)
	d.taskRepo.EXPECT().GetByID(gomock.Any(), found.ID).Return(found, nil)
	d.taskRepo.EXPECT().GetByID(gomock.Any(), gomock.Not(found.ID)).Return(domaintask.Task{}, domaintask.ErrNotFound)

	w := doJSON(r, http.MethodGet, "/tasks/"+found.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/tasks/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/tasks/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── PATCH /tasks/:id ──────────────────────────────────────────────────────────

func TestUpdateTaskStatus(t *testing.T) {
	workerID := uuid.New()
	owned := domaintask.New("d", "n", "+996700123456", "b", "m", 1)
	owned.AssignedWorkerID = &workerID
	body := map[string]any{"status_from": "Pending", "status_to": "In Progress"}

	tests := []struct {
		name     string
		claims   *auth.Claims
		body     map[string]any
		setup    func(d taskDeps)
		wantCode int
	}{
		{
			name:   "admin moves any task",
			claims: adminClaims(),
			body:   body,
			setup: func(d taskDeps) {
				d.taskRepo.EXPECT().UpdateStatus(gomock.Any(), owned.ID, domaintask.StatusPending, domaintask.StatusInProgress).Return(nil)
				d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
				d.revalidator.EXPECT().Revalidate(gomock.Any(), gomock.Any())
			},
			wantCode: http.StatusOK,
		},
		{
			name:   "worker moves own task",
			claims: &auth.Claims{UserID: workerID, Role: domainuser.RoleWorker},
			body:   body,
			setup: func(d taskDeps) {
				d.taskRepo.EXPECT().GetByID(gomock.Any(), owned.ID).Return(owned, nil)
				d.taskRepo.EXPECT().UpdateStatus(gomock.Any(), owned.ID, domaintask.StatusPending, domaintask.StatusInProgress).Return(nil)
				d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
				d.revalidator.EXPECT().Revalidate(gomock.Any(), gomock.Any())
			},
			wantCode: http.StatusOK,
		},
		{
			name:   "worker cannot move someone else's task",
			claims: &auth.Claims{UserID: uuid.New(), Role: domainuser.RoleWorker},
			body:   body,
			setup: func(d taskDeps) {
				d.taskRepo.EXPECT().GetByID(gomock.Any(), owned.ID).Return(owned, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "skipping a step is rejected",
			claims:   adminClaims(),
			body:     map[string]any{"status_from": "Pending", "status_to": "Completed"},
			setup:    func(taskDeps) {},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "concurrent change conflicts",
			claims: adminClaims(),
			body:   body,
			setup: func(d taskDeps) {
				d.taskRepo.EXPECT().UpdateStatus(gomock.Any(), owned.ID, gomock.Any(), gomock.Any()).Return(domaintask.ErrStatusConflict)
			},
			wantCode: http.StatusConflict,
		},
		{
			name:     "missing fields",
			claims:   adminClaims(),
			body:     map[string]any{"status_to": "In Progress"},
			setup:    func(taskDeps) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := newTaskSvc(t)
			tc.setup(d)
			w := doJSON(newRouter(svc, d, tc.claims), http.MethodPatch, "/tasks/"+owned.ID.String(), tc.body, nil)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}
}

// ── POST /tasks/:id/reassign ──────────────────────────────────────────────────

func TestReassignTask(t *testing.T) {
	task := domaintask.New("d", "n", "+996700123456", "b", "m", 1)
	workerID := uuid.New()

	t.Run("admin reassigns", func(t *testing.T) {
		svc, d := newTaskSvc(t)
		d.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)
		d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error { return fn(ctx) })
		d.writer.EXPECT().AppendTask(gomock.Any(), workerID, task.ID).Return(nil)
		d.notifier.EXPECT().NotifyWorker(gomock.Any(), workerID, gomock.Any()).Return(nil)
		d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
		d.revalidator.EXPECT().Revalidate(gomock.Any(), gomock.Any())

		w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost,
			"/tasks/"+task.ID.String()+"/reassign", map[string]any{"worker_id": workerID}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got domaintask.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.NotNil(t, got.AssignedWorkerID)
		assert.Equal(t, workerID, *got.AssignedWorkerID)
	})

	t.Run("worker is forbidden", func(t *testing.T) {
		svc, d := newTaskSvc(t)
		claims := &auth.Claims{UserID: uuid.New(), Role: domainuser.RoleWorker}
		w := doJSON(newRouter(svc, d, claims), http.MethodPost,
			"/tasks/"+task.ID.String()+"/reassign", map[string]any{"worker_id": workerID}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown worker", func(t *testing.T) {
		svc, d := newTaskSvc(t)
		d.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)
		d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error { return fn(ctx) })
		d.writer.EXPECT().AppendTask(gomock.Any(), workerID, task.ID).Return(domainuser.ErrNotFound)

		w := doJSON(newRouter(svc, d, adminClaims()), http.MethodPost,
			"/tasks/"+task.ID.String()+"/reassign", map[string]any{"worker_id": workerID}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

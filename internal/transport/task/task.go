package task

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/repair-desk/internal/auth"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	portidem "github.com/alanyang/repair-desk/internal/port/idempotency"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
)

const (
	idempotencyHeader = "Idempotency-Key"
	opCreateTask      = "create_task"
)

// Register mounts the task routes. Callers must have passed auth.Middleware.
func Register(rg *gin.RouterGroup, svc *tasksvc.Service, idem portidem.Store) {
	rg.POST("", createTask(svc, idem))
	rg.GET("", listTasks(svc))
	rg.GET("/:id", getTask(svc))
	rg.PATCH("/:id", updateTaskStatus(svc))
	rg.POST("/:id/reassign", auth.RequireRole(domainuser.RoleAdmin), reassignTask(svc))
}

type createTaskResp struct {
	tasksvc.Report
	TaskID *uuid.UUID `json:"task_id,omitempty"`
}

// createTask is the intake form action. It always answers with {status, message}.
func createTask(svc *tasksvc.Service, idem portidem.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.GetHeader(idempotencyHeader)

		if key != "" {
			stored, ok, err := idem.Check(ctx, key)
			if err != nil {
				slog.ErrorContext(ctx, "idempotency check failed", "key", key, "error", err)
			} else if ok {
				var resp createTaskResp
				if err := json.Unmarshal(stored, &resp); err == nil {
					c.JSON(reportCode(resp.Report), resp)
					return
				}
			}
		}

		var in tasksvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, tasksvc.Report{Status: tasksvc.ReportError, Message: "invalid request body"})
			return
		}

		res, err := svc.CreateAndAssign(ctx, in)
		resp := createTaskResp{Report: tasksvc.NewReport(res, err)}
		if err == nil {
			id := res.Task.ID
			resp.TaskID = &id
		}
		code := reportCode(resp.Report)

		// Internal errors are not recorded so the client can retry with the same key.
		if key != "" && code != http.StatusInternalServerError {
			if data, err := json.Marshal(resp); err == nil {
				if err := idem.Save(ctx, key, opCreateTask, data); err != nil {
					slog.ErrorContext(ctx, "idempotency save failed", "key", key, "error", err)
				}
			}
		}
		c.JSON(code, resp)
	}
}

func reportCode(r tasksvc.Report) int {
	switch {
	case r.Status == tasksvc.ReportSuccess:
		return http.StatusCreated
	case r.Message == tasksvc.MsgInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func listTasks(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domaintask.ListFilters

		if v := c.Query("status"); v != "" {
			s := domaintask.Status(v)
			if !s.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filters.Status = &s
		}
		if v := c.Query("assigned_to"); v != "" {
			if v == "me" {
				claims, _ := auth.ClaimsFrom(c)
				if claims == nil {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
					return
				}
				id := claims.UserID
				filters.AssignedTo = &id
			} else {
				id, err := uuid.Parse(v)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to"})
					return
				}
				filters.AssignedTo = &id
			}
		}
		filters.Unassigned = queryBool(c, "unassigned")
		filters.OpenOnly = queryBool(c, "open")
		filters.OldestFirst = c.Query("order") == "oldest"

		tasks, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func getTask(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		t, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

type updateStatusReq struct {
	StatusFrom domaintask.Status `json:"status_from" binding:"required"`
	StatusTo   domaintask.Status `json:"status_to" binding:"required"`
}

// updateTaskStatus lets admins move any task and workers move their own.
func updateTaskStatus(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if claims, ok := auth.ClaimsFrom(c); ok && claims.Role == domainuser.RoleWorker {
			t, err := svc.GetByID(ctx, id)
			if err != nil {
				c.JSON(errorCode(err), gin.H{"error": err.Error()})
				return
			}
			if t.AssignedWorkerID == nil || *t.AssignedWorkerID != claims.UserID {
				c.JSON(http.StatusForbidden, gin.H{"error": "task is not assigned to you"})
				return
			}
		}

		if err := svc.UpdateStatus(ctx, id, req.StatusFrom, req.StatusTo); err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type reassignReq struct {
	WorkerID uuid.UUID `json:"worker_id" binding:"required"`
}

func reassignTask(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req reassignReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := svc.Reassign(c.Request.Context(), id, req.WorkerID)
		if err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, domaintask.ErrNotFound), errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domaintask.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, domaintask.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/repair-desk/internal/auth"
	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"
)

func RegisterTools(
	s *mcpserver.MCPServer,
	reg *SessionRegistry,
	taskSvc *tasksvc.Service,
	userSvc *usersvc.Service,
) {
	s.AddTool(mcpmcp.NewTool("register_worker",
		mcpmcp.WithDescription("Sign in as a worker. Binds this session to the worker so task_assigned notifications arrive on it. Returns the worker_id."),
		mcpmcp.WithString("email", mcpmcp.Required(), mcpmcp.Description("Worker account email")),
		mcpmcp.WithString("password", mcpmcp.Required(), mcpmcp.Description("Worker account password")),
	), registerWorkerHandler(reg, userSvc))

	s.AddTool(mcpmcp.NewTool("create_repair_task",
		mcpmcp.WithDescription("Submit a repair intake form. The task goes to the worker with the fewest assigned tasks. Returns {status, message}."),
		mcpmcp.WithString("description", mcpmcp.Required(), mcpmcp.Description("What is wrong with the laptop")),
		mcpmcp.WithNumber("total_cost", mcpmcp.Required(), mcpmcp.Description("Quoted cost, zero or more")),
		mcpmcp.WithString("customer_name", mcpmcp.Required(), mcpmcp.Description("Customer full name")),
		mcpmcp.WithString("customer_phone", mcpmcp.Required(), mcpmcp.Description("Customer phone number")),
		mcpmcp.WithString("laptop_brand", mcpmcp.Required(), mcpmcp.Description("Laptop brand")),
		mcpmcp.WithString("laptop_model", mcpmcp.Required(), mcpmcp.Description("Laptop model")),
	), createRepairTaskHandler(taskSvc))

	s.AddTool(mcpmcp.NewTool("my_tasks",
		mcpmcp.WithDescription("List open tasks assigned to this worker, oldest first."),
		mcpmcp.WithString("worker_id", mcpmcp.Description("Admins only: the worker to act for. Workers always act as themselves.")),
	), myTasksHandler(reg, taskSvc))

	s.AddTool(mcpmcp.NewTool("update_task_status",
		mcpmcp.WithDescription("Advance one of your tasks: Pending to In Progress, or In Progress to Completed."),
		mcpmcp.WithString("task_id", mcpmcp.Required(), mcpmcp.Description("Task UUID")),
		mcpmcp.WithString("from", mcpmcp.Required(), mcpmcp.Description("Current status (CAS guard)")),
		mcpmcp.WithString("to", mcpmcp.Required(), mcpmcp.Description("Target status")),
		mcpmcp.WithString("worker_id", mcpmcp.Description("Admins only: the worker to act for. Workers always act as themselves.")),
	), updateTaskStatusHandler(reg, taskSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func registerWorkerHandler(reg *SessionRegistry, userSvc *usersvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		claims, ok := auth.FromContext(ctx)
		if !ok {
			return mcpmcp.NewToolResultText("error: " + errUnauthenticated.Error()), nil
		}
		email := mcpmcp.ParseString(req, "email", "")
		password := mcpmcp.ParseString(req, "password", "")

		_, u, err := userSvc.Login(ctx, email, password)
		if errors.Is(err, usersvc.ErrInvalidCredentials) {
			return mcpmcp.NewToolResultText("error: invalid email or password"), nil
		}
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if u.Role != domainuser.RoleWorker {
			return mcpmcp.NewToolResultText("error: account is not a worker"), nil
		}
		if claims.Role == domainuser.RoleWorker && claims.UserID != u.ID {
			return mcpmcp.NewToolResultText("error: credentials do not match your token"), nil
		}

		if session := mcpserver.ClientSessionFromContext(ctx); session != nil {
			reg.Register(session.SessionID(), u.ID)
		}

		result, _ := json.Marshal(map[string]string{"worker_id": u.ID.String()})
		return mcpmcp.NewToolResultText(string(result)), nil
	}
}

func createRepairTaskHandler(taskSvc *tasksvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		if _, ok := auth.FromContext(ctx); !ok {
			return mcpmcp.NewToolResultText("error: " + errUnauthenticated.Error()), nil
		}
		in := tasksvc.CreateInput{
			Description:   mcpmcp.ParseString(req, "description", ""),
			TotalCost:     mcpmcp.ParseFloat64(req, "total_cost", 0),
			CustomerName:  mcpmcp.ParseString(req, "customer_name", ""),
			CustomerPhone: mcpmcp.ParseString(req, "customer_phone", ""),
			LaptopBrand:   mcpmcp.ParseString(req, "laptop_brand", ""),
			LaptopModel:   mcpmcp.ParseString(req, "laptop_model", ""),
		}

		res, err := taskSvc.CreateAndAssign(ctx, in)
		data, _ := json.Marshal(tasksvc.NewReport(res, err))
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func myTasksHandler(reg *SessionRegistry, taskSvc *tasksvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		workerID, err := actingWorker(ctx, reg, mcpmcp.ParseString(req, "worker_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		tasks, err := taskSvc.List(ctx, domaintask.ListFilters{
			AssignedTo:  &workerID,
			OpenOnly:    true,
			OldestFirst: true,
		})
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		data, _ := json.Marshal(tasks)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func updateTaskStatusHandler(reg *SessionRegistry, taskSvc *tasksvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		workerID, err := actingWorker(ctx, reg, mcpmcp.ParseString(req, "worker_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		taskID, err := uuid.Parse(mcpmcp.ParseString(req, "task_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid task_id"), nil
		}
		from := domaintask.Status(mcpmcp.ParseString(req, "from", ""))
		to := domaintask.Status(mcpmcp.ParseString(req, "to", ""))

		t, err := taskSvc.GetByID(ctx, taskID)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if t.AssignedWorkerID == nil || *t.AssignedWorkerID != workerID {
			return mcpmcp.NewToolResultText("error: task is not assigned to you"), nil
		}

		if err := taskSvc.UpdateStatus(ctx, taskID, from, to); err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return mcpmcp.NewToolResultText(`{"ok":true}`), nil
	}
}

var errUnauthenticated = errors.New("unauthenticated")

// actingWorker resolves whom a call acts for. Workers always act as
// themselves; only admins may name another worker through worker_id.
func actingWorker(ctx context.Context, reg *SessionRegistry, rawWorkerID string) (uuid.UUID, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return uuid.Nil, errUnauthenticated
	}
	if rawWorkerID != "" {
		id, err := uuid.Parse(rawWorkerID)
		if err != nil {
			return uuid.Nil, errors.New("invalid worker_id")
		}
		if claims.Role != domainuser.RoleAdmin && id != claims.UserID {
			return uuid.Nil, errors.New("only admins may act for another worker")
		}
		return id, nil
	}
	if claims.Role == domainuser.RoleWorker {
		return claims.UserID, nil
	}
	if session := mcpserver.ClientSessionFromContext(ctx); session != nil {
		if id, ok := reg.WorkerFor(session.SessionID()); ok {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("worker_id is required")
}

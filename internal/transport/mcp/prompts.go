package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
)

// RegisterPrompts adds the worker_briefing prompt: a plain-text summary of
// the worker's open queue for the start of a shift.
func RegisterPrompts(s *mcpserver.MCPServer, reg *SessionRegistry, taskSvc *tasksvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("worker_briefing",
			mcpmcp.WithPromptDescription("Summary of the open repair tasks assigned to a worker."),
			mcpmcp.WithArgument("worker_id",
				mcpmcp.ArgumentDescription("Admins only: the worker to brief. Workers get their own queue."),
			),
		),
		briefingHandler(reg, taskSvc),
	)
}

func briefingHandler(reg *SessionRegistry, taskSvc *tasksvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		workerID, err := actingWorker(ctx, reg, req.Params.Arguments["worker_id"])
		if err != nil {
			return nil, err
		}

		tasks, err := taskSvc.List(ctx, domaintask.ListFilters{
			AssignedTo:  &workerID,
			OpenOnly:    true,
			OldestFirst: true,
		})
		if err != nil {
			return nil, fmt.Errorf("list tasks for worker %s: %w", workerID, err)
		}

		return mcpmcp.NewGetPromptResult(
			"Open repair tasks",
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(mcpmcp.RoleUser, mcpmcp.TextContent{
					Type: "text",
					Text: Briefing(tasks),
				}),
			},
		), nil
	}
}

// Briefing renders tasks as one line each, oldest first.
func Briefing(tasks []domaintask.Task) string {
	if len(tasks) == 0 {
		return "You have no open repair tasks."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d open repair task(s):\n", len(tasks))
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. [%s] %s %s for %s (%s): %s\n",
			i+1, t.Status, t.LaptopBrand, t.LaptopModel, t.CustomerName, t.CustomerPhone, t.Description)
	}
	return b.String()
}

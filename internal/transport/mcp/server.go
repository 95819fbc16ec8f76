package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/repair-desk/internal/auth"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"
)

// Server exposes the worker tool surface over MCP streamable HTTP.
// Tools live in tools.go, prompts in prompts.go, session state in registry.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
}

// New builds the MCP server around a registry created earlier in the wiring,
// since the task service already holds it as its WorkerNotifier.
func New(reg *SessionRegistry, taskSvc *tasksvc.Service, userSvc *usersvc.Service) *Server {
	s := &Server{reg: reg}

	hooks := &mcpserver.Hooks{}
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"repair-desk",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)
	reg.SetMCPServer(mcpSrv)

	RegisterTools(mcpSrv, reg, taskSvc, userSvc)
	RegisterPrompts(mcpSrv, reg, taskSvc)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(claimsFromRequest),
	)
	return s
}

// claimsFromRequest carries the caller's verified token claims into tool calls.
func claimsFromRequest(ctx context.Context, r *http.Request) context.Context {
	if claims, ok := auth.FromContext(r.Context()); ok {
		return auth.NewContext(ctx, claims)
	}
	return ctx
}

func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	workerID, ok := s.reg.Unregister(session.SessionID())
	if !ok {
		return
	}
	slog.InfoContext(ctx, "mcp: worker session closed", "session_id", session.SessionID(), "worker_id", workerID)
}

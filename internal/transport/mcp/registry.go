package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	portnotifier "github.com/alanyang/repair-desk/internal/port/notifier"
)

var _ portnotifier.WorkerNotifier = (*SessionRegistry)(nil)

// SessionRegistry maps live MCP sessions to the workers that opened them.
// A worker holds at most one session; registering again replaces the old one.
type SessionRegistry struct {
	mu        sync.RWMutex
	bySession map[string]uuid.UUID
	byWorker  map[uuid.UUID]string

	// mcpSrv is set once the MCP server exists; the task service needs the
	// registry before that.
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bySession: make(map[string]uuid.UUID),
		byWorker:  make(map[uuid.UUID]string),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

func (r *SessionRegistry) Register(sessionID string, workerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byWorker[workerID]; ok {
		delete(r.bySession, old)
	}
	if prev, ok := r.bySession[sessionID]; ok {
		delete(r.byWorker, prev)
	}
	r.bySession[sessionID] = workerID
	r.byWorker[workerID] = sessionID
}

// Unregister forgets sessionID and returns the worker it belonged to.
func (r *SessionRegistry) Unregister(sessionID string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workerID, ok := r.bySession[sessionID]
	if !ok {
		return uuid.Nil, false
	}
	delete(r.bySession, sessionID)
	delete(r.byWorker, workerID)
	return workerID, true
}

// WorkerFor returns the worker registered on sessionID.
func (r *SessionRegistry) WorkerFor(sessionID string) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySession[sessionID]
	return id, ok
}

func (r *SessionRegistry) IsConnected(workerID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byWorker[workerID]
	return ok
}

// NotifyWorker pushes event to the worker's session. Offline workers are skipped.
func (r *SessionRegistry) NotifyWorker(_ context.Context, workerID uuid.UUID, event any) error {
	r.mu.RLock()
	sessionID, ok := r.byWorker[workerID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()
	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}

	params, err := toParams(event)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}
	return srv.SendNotificationToSpecificClient(sessionID, "notifications/message", params)
}

func toParams(event any) (map[string]any, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": event}, nil
	}
	return params, nil
}

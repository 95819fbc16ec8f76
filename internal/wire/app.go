package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/repair-desk/internal/adapter/memory"
	pgdb "github.com/alanyang/repair-desk/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/repair-desk/internal/adapter/postgres/eventbus"
	pgidempotency "github.com/alanyang/repair-desk/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/repair-desk/internal/adapter/postgres/locker"
	pgtask "github.com/alanyang/repair-desk/internal/adapter/postgres/task"
	pguser "github.com/alanyang/repair-desk/internal/adapter/postgres/user"
	"github.com/alanyang/repair-desk/internal/auth"
	"github.com/alanyang/repair-desk/internal/config"
	porteventbus "github.com/alanyang/repair-desk/internal/port/eventbus"

	dashboardsvc "github.com/alanyang/repair-desk/internal/service/dashboard"
	selectorsvc "github.com/alanyang/repair-desk/internal/service/selector"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"

	"github.com/alanyang/repair-desk/internal/transport"
	mcptransport "github.com/alanyang/repair-desk/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Server    *http.Server
	TaskSvc   *tasksvc.Service
	EventBus  *pgeventbus.EventBus
	MCPServer *mcptransport.Server

	rebalancer *rebalancer
	rebalSub   porteventbus.Subscription
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if cfg.Database.MigrateOnStart {
		if err := pgdb.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	taskRepo := pgtask.New(pool)
	userRepo := pguser.New(pool)
	eventBus := pgeventbus.New(pool)
	locker := pglocker.New(pool)
	idemRepo := pgidempotency.New(pool)
	cache := memory.NewCache()

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	// ── Services ─────────────────────────────────────────────────────────────
	sel := selectorsvc.NewService(userRepo)
	dashSvc := dashboardsvc.NewService(taskRepo, userRepo, cache, eventBus, cfg.Dashboard.CacheTTL)

	reg := mcptransport.NewSessionRegistry()

	taskSvc := tasksvc.NewService(
		taskRepo,
		userRepo, // AssignmentWriter
		sel,
		eventBus,
		locker,
		dashSvc, // Revalidator
		reg,     // WorkerNotifier
		cfg.Tasks.PhoneRegion,
	)
	userSvc := usersvc.NewService(userRepo, eventBus, dashSvc, tokens)

	mcpServer := mcptransport.New(reg, taskSvc, userSvc)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(
		ctx,
		tokens,
		taskSvc,
		userSvc,
		dashSvc,
		idemRepo,
		mcpServer.Handler(),
		eventBus,
	)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	slog.Info("application wired", "addr", server.Addr)

	app := &App{
		Pool:      pool,
		Server:    server,
		TaskSvc:   taskSvc,
		EventBus:  eventBus,
		MCPServer: mcpServer,
	}

	// ── Unassigned-task rebalancer ───────────────────────────────────────────
	app.rebalancer = newRebalancer(taskSvc, userSvc, cfg.Tasks.RebalanceDebounce)
	sub, err := app.rebalancer.start(ctx, eventBus)
	if err != nil {
		slog.Error("rebalancer not started", "error", err)
	}
	app.rebalSub = sub

	return app, nil
}

// Close stops background work and releases the pool. Call after the HTTP server
// has shut down.
func (a *App) Close() {
	if a.rebalSub != nil {
		a.rebalSub.Unsubscribe()
	}
	if a.rebalancer != nil {
		a.rebalancer.stop()
	}
	a.EventBus.Close()
	a.Pool.Close()
}

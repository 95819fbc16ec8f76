package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/repair-desk/internal/auth"
	"github.com/alanyang/repair-desk/internal/domain/event"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	porteventbus "github.com/alanyang/repair-desk/internal/port/eventbus"
	portidem "github.com/alanyang/repair-desk/internal/port/idempotency"
	dashboardsvc "github.com/alanyang/repair-desk/internal/service/dashboard"
	tasksvc "github.com/alanyang/repair-desk/internal/service/task"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"

	dashboardhandler "github.com/alanyang/repair-desk/internal/transport/dashboard"
	taskhandler "github.com/alanyang/repair-desk/internal/transport/task"
	userhandler "github.com/alanyang/repair-desk/internal/transport/user"
	wshandler "github.com/alanyang/repair-desk/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	tokens *auth.Manager,
	taskSvc *tasksvc.Service,
	userSvc *usersvc.Service,
	dashboardSvc *dashboardsvc.Service,
	idem portidem.Store,
	mcpHandler http.Handler,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")

	userhandler.RegisterAuth(api.Group("/auth"), userSvc)

	authed := api.Group("", auth.Middleware(tokens))

	taskhandler.Register(
		authed.Group("/tasks", auth.RequireRole(domainuser.RoleAdmin, domainuser.RoleWorker)),
		taskSvc, idem,
	)

	admin := authed.Group("/admin", auth.RequireRole(domainuser.RoleAdmin))
	userhandler.Register(admin.Group("/users"), userSvc)
	dashboardhandler.Register(admin.Group("/dashboard"), dashboardSvc)

	hub := wshandler.NewHub()
	hub.Register(authed.Group("/ws", auth.RequireRole(domainuser.RoleAdmin, domainuser.RoleWorker)))

	// One LISTEN connection per channel; clients filter on event.Type.
	for _, ch := range []event.Channel{
		event.ChannelTask,
		event.ChannelUser,
		event.ChannelDashboard,
	} {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	// MCP callers authenticate like the REST task routes.
	r.Group("/mcp", auth.Middleware(tokens), auth.RequireRole(domainuser.RoleAdmin, domainuser.RoleWorker)).
		Any("", gin.WrapH(mcpHandler))

	return r
}

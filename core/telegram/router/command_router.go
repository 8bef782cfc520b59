package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/giveawaybot/core/logger"
	tg "github.com/m3rciful/giveawaybot/core/telegram"
	"github.com/m3rciful/giveawaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command and its aliases to a handler
// that logs a summary line. Admin-only commands are guarded.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := summarized(normalizeHandlerName(cmd), def.Handler)
		if def.AdminOnly {
			h = adminOnly(h)
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + normalizeHandlerName(alias), Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands"),
		slog.Int("commands", len(reg.Commands())),
	)
	return routes
}

func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, name, start, func() error { return h(c) })
	}
}

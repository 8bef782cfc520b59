package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	"github.com/m3rciful/giveawaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareHooks lets a bot answer users when a middleware short-circuits.
type MiddlewareHooks struct {
	OnLimited tele.HandlerFunc
	OnPanic   tele.HandlerFunc
}

// DefaultMiddlewares builds the shared middleware chain for bots. The logger
// runs first so that every later stage, including panic recovery, logs with
// the update's rid.
func DefaultMiddlewares(cfg *coreconfig.Config, hooks MiddlewareHooks) []Middleware {
	mws := []Middleware{
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
		{Name: "recover", Use: middleware.Recover(hooks.OnPanic)},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: hooks.OnLimited,
				}),
			})
		}
	}
	return mws
}

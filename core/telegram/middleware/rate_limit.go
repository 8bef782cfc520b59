package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	now       func() time.Time
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		lastSeen   = make(map[int64]time.Time)
		lastSeenMu sync.Mutex
	)
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}

			ts := now()
			lastSeenMu.Lock()
			if last, ok := lastSeen[user.ID]; ok && ts.Sub(last) < opts.Interval {
				lastSeenMu.Unlock()
				logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
					slog.String("status", "ok"),
					slog.String("outcome", "rejected"),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			lastSeen[user.ID] = ts
			lastSeenMu.Unlock()
			return next(c)
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

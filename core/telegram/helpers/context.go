package helpers

import (
	"context"

	"github.com/m3rciful/giveawaybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxStoreKey = "logger_ctx"

// IDs returns the update, user and chat ids of c. Missing parts are zero.
func IDs(c tele.Context) (updateID int, userID, chatID int64) {
	updateID = c.Update().ID
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return updateID, userID, chatID
}

// StoreContext caches ctx on c for the rest of the update.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxStoreKey, ctx)
	}
}

// ContextFrom returns the context cached by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxStoreKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the logging context of the current update: rid
// "update:chat:user", the ids themselves and the tg component logger.
// The first call caches it on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	updateID, userID, chatID := IDs(c)

	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" && logger.HandlerFrom(ctx) != handler {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}

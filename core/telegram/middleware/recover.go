package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Recover catches panics in downstream handlers so one malformed update never
// stops the bot. onPanic, when set, is given the chance to answer the user.
func Recover(onPanic tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				ctx := tghelpers.BuildContext(c)
				logger.Error(ctx, "tg", "tg.panic",
					slog.String("status", "fail"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				err = nil
				if onPanic != nil {
					if replyErr := onPanic(c); replyErr != nil {
						logger.Warn(ctx, "tg", "tg.panic.reply",
							slog.String("status", "fail"),
							slog.String("err", replyErr.Error()),
						)
					}
				}
			}()
			return next(c)
		}
	}
}

// RecoverMiddleware recovers panics without replying.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return Recover(nil)(next)
}

package middleware

import (
	"log/slog"

	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions configures AdminOnlyMiddleware. OnReject answers callers who
// are not the admin; nil drops them silently.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

func (o AdminOptions) isAdmin(u *tele.User) bool {
	return o.AdminID != 0 && u != nil && u.ID == o.AdminID
}

// AdminOnlyMiddleware lets only the configured admin through. With no admin
// configured nobody passes.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.isAdmin(c.Sender()) {
				return next(c)
			}
			logger.Info(tghelpers.BuildContext(c), "tg", "access.denied",
				slog.String("status", "ok"),
				slog.String("outcome", "rejected"),
				slog.Bool("admin_configured", opts.AdminID != 0),
			)
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}

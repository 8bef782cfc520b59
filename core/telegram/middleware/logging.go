package middleware

import (
	"log/slog"

	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware stores the update context (rid, user, chat) on c so that
// every later log line of this update carries it, and logs a sampled
// receipt line. Message text is never logged, only its length.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		c.Set("rid", logger.RIDFrom(ctx))

		if logger.ShouldSampleDebug() {
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", updateKind(c.Update())),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil && user.LanguageCode != "" {
		attrs = append(attrs, slog.String("lang", user.LanguageCode))
	}
	if n := logger.TextLen(c.Text()); n > 0 {
		attrs = append(attrs, slog.Int("text_len", n))
	}
	return attrs
}

package router

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"
	"github.com/m3rciful/giveawaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn as handlerName and logs one handler.handled line.
func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn func() error) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, "", err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, statusOverride string, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	replies := middleware.Replies(c)

	status := statusOverride
	if status == "" {
		status = logger.Status(err)
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.Int("messages", replies.Sent),
		slog.Bool("kb", replies.Keyboard),
		slog.Duration("duration", time.Since(start)),
	}
	if replies.Failed > 0 {
		attrs = append(attrs, slog.Int("failed_replies", replies.Failed))
	}

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("outcome", "fail"),
			slog.String("err", logger.ErrText(err)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// deriveErrorCode gives handler failures a short grouping key: the Bot API
// code for Telegram errors, a Code() method when present, else the type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return "TG_FLOOD"
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return fmt.Sprintf("TG_%d", apiErr.Code)
	}
	type coder interface{ Code() string }
	if c, ok := err.(coder); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}

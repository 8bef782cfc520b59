package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type ctxKey int

const (
	keyLogger ctxKey = iota
	keyRID
	keyUpdate
	keyHandler
)

// updateMeta identifies the Telegram update a log line belongs to.
type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func value[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithLogger stores log in ctx; a nil logger leaves ctx unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return ensure(ctx)
	}
	return context.WithValue(ensure(ctx), keyLogger, log)
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := value[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches a correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ensure(ctx), keyRID, rid)
}

func RIDFrom(ctx context.Context) string { return value[string](ctx, keyRID) }

// WithUpdateMeta attaches the update, user and chat ids added to every line.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return context.WithValue(ensure(ctx), keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

func UpdateIDFrom(ctx context.Context) int { return value[updateMeta](ctx, keyUpdate).updateID }

func UserIDFrom(ctx context.Context) int64 { return value[updateMeta](ctx, keyUpdate).userID }

func ChatIDFrom(ctx context.Context) int64 { return value[updateMeta](ctx, keyUpdate).chatID }

// WithHandler names the route handling the update. Blank names are ignored.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ensure(ctx)
	}
	return context.WithValue(ensure(ctx), keyHandler, handler)
}

func HandlerFrom(ctx context.Context) string { return value[string](ctx, keyHandler) }

// Sanitize removes control and format characters other than tab and newline,
// so user text cannot forge log lines.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit sanitizes s and keeps at most limit runes.
func SanitizeLimit(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	clean := Sanitize(s)
	n := 0
	for i := range clean {
		if n == limit {
			return clean[:i]
		}
		n++
	}
	return clean
}

// BuildRID formats updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID rewrites each numeric part of a BuildRID value in base36,
// joined by dots. Other input is returned trimmed but otherwise unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}

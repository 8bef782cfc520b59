package logger

import (
	"log/slog"
	"slices"
	"strings"
)

// Accepted values for the status and outcome keys.
var (
	statusValues  = []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled"}
	outcomeValues = []string{"ok", "fail", "rejected", "cancelled", "rate_limited"}
)

// levelName snaps custom levels such as INFO+2 down to the nearest named level.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// normalizeEnum lowercases value and reports whether it is one of allowed.
func normalizeEnum(allowed []string, value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	return value, value != "" && slices.Contains(allowed, value)
}

// defaultKeyOrder puts correlation fields first, then the conversation
// fields, then errors. Keys not listed are appended alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"command",
	"from",
	"to",
	"result",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"notifications",
	"kind",
	"claim_id",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"store",
	"db",
	"host",
	"port",
	"action",
	"endpoint",
	"err",
	"err_code",
	"error_kind",
	"cause",
	"attempts",
	"elapsed_ms",
}

package logger

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Status maps error to a unified status string for logs.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// RoundMS rounds duration to the nearest millisecond for consistent logging.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview joins at most limit values and reports whether some were left out.
func Preview(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) > limit {
		return strings.Join(values[:limit], ", "), true
	}
	return strings.Join(values, ", "), false
}

// TextLen is what gets logged in place of user input such as wallets and handles.
func TextLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Bot API URLs carry the token as /bot<id>:<secret>/.
var botTokenRe = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

// RedactToken hides bot tokens that leak into error strings through request URLs.
func RedactToken(s string) string {
	return botTokenRe.ReplaceAllString(s, "bot<redacted>")
}

// ErrText renders err for a log attribute: token redacted, control runes
// dropped, at most 256 runes.
func ErrText(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeLimit(RedactToken(err.Error()), 256)
}

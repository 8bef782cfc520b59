package giveaway

import (
	"regexp"
	"strings"
)

// handlePattern is the X/Twitter username rule: 1 to 15 letters, digits or underscores.
var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// ConfirmsTasks reports whether text contains "done" in any letter case.
func ConfirmsTasks(text string) bool {
	return strings.Contains(strings.ToLower(text), "done")
}

// NormalizeHandle trims spaces and one leading "@" and validates the rest.
func NormalizeHandle(text string) (string, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(text), "@")
	if !handlePattern.MatchString(h) {
		return "", false
	}
	return h, true
}

// NormalizeWallet accepts any non-blank text. Addresses are not verified.
func NormalizeWallet(text string) (string, bool) {
	w := strings.TrimSpace(text)
	return w, w != ""
}

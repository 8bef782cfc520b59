// Package format escapes user supplied text for Telegram parse modes.
package format

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile(`([_*\[\]()~` + "`" + `>#+\-=|{}.!\\])`)
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// MD escapes text for the legacy Markdown parse mode.
func MD(text string) string {
	s, _ := EscapeMarkdown(text, MarkdownV1)
	return s
}

// BoldMD renders text in bold for legacy Markdown. Escapes are not honored
// inside an entity, so text carrying markup characters is escaped and left
// unbolded instead.
func BoldMD(text string) string {
	if strings.ContainsAny(text, "_*`[") {
		return MD(text)
	}
	return "*" + text + "*"
}

// CodeMD renders text as inline code in legacy Markdown. Backticks cannot be
// escaped inside a code span, so they are replaced with a prime.
func CodeMD(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "ʹ") + "`"
}

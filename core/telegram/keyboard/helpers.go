// Package keyboard builds reply markups for outgoing messages.
package keyboard

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// LinkBtn describes an inline button that opens a URL.
type LinkBtn struct {
	Text string
	URL  string
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// InlineLinks builds an inline keyboard with up to perRow URL buttons per row.
// Buttons with an empty label or URL are skipped; nil is returned when none remain.
func InlineLinks(links []LinkBtn, perRow int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var buttons []tele.Btn
	for _, l := range links {
		text, url := strings.TrimSpace(l.Text), strings.TrimSpace(l.URL)
		if text == "" || url == "" {
			continue
		}
		buttons = append(buttons, markup.URL(text, url))
	}
	if len(buttons) == 0 {
		return nil
	}
	rows := make([]tele.Row, 0, len(buttons))
	for _, chunk := range ChunkButtons(buttons, perRow) {
		rows = append(rows, markup.Row(chunk...))
	}
	markup.Inline(rows...)
	return markup
}

// ChunkButtons splits a flat list of tele.Btn into rows with up to n buttons per row.
func ChunkButtons(buttons []tele.Btn, n int) [][]tele.Btn {
	if n <= 1 {
		out := make([][]tele.Btn, 0, len(buttons))
		for _, b := range buttons {
			out = append(out, []tele.Btn{b})
		}
		return out
	}
	var rows [][]tele.Btn
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return rows
}

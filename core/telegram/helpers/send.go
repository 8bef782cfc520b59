package helpers

import (
	tele "gopkg.in/telebot.v4"
)

// Replies to the current chat are sent synchronously so that several
// messages produced by one update arrive in order.

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	if len(opts) > 0 && opts[0] != nil {
		return c.Send(text, opts[0])
	}
	return c.Send(text)
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, MarkdownOptions(false, markup...))
}

// SendMDNoPreview sends a Markdown message with link previews disabled.
func SendMDNoPreview(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, MarkdownOptions(true, markup...))
}

// MarkdownOptions builds send options for Markdown messages.
func MarkdownOptions(noPreview bool, markup ...*tele.ReplyMarkup) *tele.SendOptions {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		ReplyMarkup:           rm,
		DisableWebPagePreview: noPreview,
	}
}

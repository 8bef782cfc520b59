package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/giveawaybot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text and non-text messages.
type TextOptions struct {
	// UnknownCommand answers "/something" that is not registered.
	UnknownCommand tele.HandlerFunc
	// NonText answers stickers, photos and other messages without text.
	NonText tele.HandlerFunc
}

// TextRoutes routes free text to the registry's text fallback. Commands that
// reach OnText (for example typed with a bot mention) are resolved through
// the registry first.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := strings.TrimSpace(c.Text())

		if strings.HasPrefix(text, "/") {
			if reg != nil {
				if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && !cmd.AdminOnly {
					return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
						return cmd.Handler(c)
					})
				}
			}
			if opts.UnknownCommand != nil {
				return handleWithSummary(c, "unknown_command", start, func() error {
					return opts.UnknownCommand(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
	if opts.NonText != nil {
		nonText := func(c tele.Context) error {
			return handleWithSummary(c, "non_text", time.Now(), func() error {
				return opts.NonText(c)
			})
		}
		for _, ep := range []string{tele.OnSticker, tele.OnPhoto, tele.OnDocument, tele.OnVoice, tele.OnVideo} {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: nonText})
		}
	}
	return routes
}

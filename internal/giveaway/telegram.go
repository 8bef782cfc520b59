package giveaway

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/giveawaybot/core/logger"
	tg "github.com/m3rciful/giveawaybot/core/telegram"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"
	"github.com/m3rciful/giveawaybot/core/telegram/keyboard"
	"github.com/m3rciful/giveawaybot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

type eventHandler interface {
	Handle(ctx context.Context, ev Event) ([]Reply, error)
	Stats(ctx context.Context) (state.Stats, error)
}

// Handlers adapts Telegram updates to controller events.
type Handlers struct {
	ctrl eventHandler
}

// NewHandlers returns Telegram handlers backed by ctrl.
func NewHandlers(ctrl eventHandler) *Handlers {
	return &Handlers{ctrl: ctrl}
}

// Register adds the giveaway commands and the free text handler to reg.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", tg.Command{Handler: h.Start, Description: "Join the giveaway"})
	reg.RegisterCommand("/cancel", tg.Command{Handler: h.Cancel, Description: "Stop and start over later", Aliases: []string{"/stop"}})
	reg.RegisterCommand("/help", tg.Command{Handler: h.Help, Description: "Show available commands"})
	reg.RegisterCommand("/stats", tg.Command{Handler: h.Stats, Description: "Giveaway statistics", AdminOnly: true})
	reg.SetTextFallback(h.Text)
}

// Start handles /start.
func (h *Handlers) Start(c tele.Context) error { return h.dispatch(c, CommandStart) }

// Cancel handles /cancel.
func (h *Handlers) Cancel(c tele.Context) error { return h.dispatch(c, CommandCancel) }

// Help handles /help and unknown commands.
func (h *Handlers) Help(c tele.Context) error { return h.dispatch(c, CommandHelp) }

// Text handles free text and messages without text.
func (h *Handlers) Text(c tele.Context) error { return h.dispatch(c, CommandNone) }

// Apology answers a user after an unexpected failure.
func (h *Handlers) Apology(c tele.Context) error {
	return tghelpers.SendText(c, ApologyText)
}

// RateLimited answers a user who writes too fast.
func (h *Handlers) RateLimited(c tele.Context) error {
	return tghelpers.SendText(c, RateLimitedText)
}

// Stats handles the operator /stats command.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	st, err := h.ctrl.Stats(ctx)
	if err != nil {
		logger.Error(ctx, "flow", "stats.fail", slog.String("status", "fail"), slog.String("err", logger.ErrText(err)))
		return h.Apology(c)
	}
	return tghelpers.SendText(c, FormatStats(st))
}

func (h *Handlers) dispatch(c tele.Context, cmd Command) error {
	ctx := tghelpers.BuildContext(c)
	// On failure the replies already hold the apology; err is returned after
	// sending so the handler summary records it.
	replies, err := h.ctrl.Handle(ctx, EventFromContext(c, cmd))
	if sendErr := sendReplies(ctx, c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

// EventFromContext builds an Event from the update in c.
func EventFromContext(c tele.Context, cmd Command) Event {
	ev := Event{Command: cmd, Text: c.Text()}
	if u := c.Sender(); u != nil {
		ev.UserID = u.ID
		ev.Username = u.Username
		ev.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}
	return ev
}

func sendReplies(ctx context.Context, c tele.Context, replies []Reply) error {
	for i, r := range replies {
		opts := &tele.SendOptions{DisableWebPagePreview: r.NoPreview}
		if r.Markdown {
			opts.ParseMode = tele.ModeMarkdown
		}
		if markup := linkMarkup(r.Links); markup != nil {
			opts.ReplyMarkup = markup
		}
		if err := tghelpers.SendText(c, r.Text, opts); err != nil {
			logger.Warn(ctx, "tg", "reply.fail",
				slog.String("status", "fail"),
				slog.Int("index", i),
				slog.String("err", logger.ErrText(err)),
			)
			return fmt.Errorf("send reply %d: %w", i, err)
		}
	}
	return nil
}

func linkMarkup(links []Link) *tele.ReplyMarkup {
	if len(links) == 0 {
		return nil
	}
	btns := make([]keyboard.LinkBtn, 0, len(links))
	for _, l := range links {
		btns = append(btns, keyboard.LinkBtn{Text: l.Text, URL: l.URL})
	}
	return keyboard.InlineLinks(btns, 1)
}

// FormatStats renders session counts for the operator.
func FormatStats(st state.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Giveaway sessions: %d\nCompleted: %d", st.Total, st.Completed)
	keys := make([]string, 0, len(st.ByState))
	for k := range st.ByState {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n• %s: %d", k, st.ByState[state.State(k)])
	}
	return b.String()
}

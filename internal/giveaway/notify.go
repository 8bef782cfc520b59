package giveaway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/giveawaybot/core/logger"
	"github.com/m3rciful/giveawaybot/core/telegram/format"

	tele "gopkg.in/telebot.v4"
)

// Notifier delivers operator notifications on a best-effort basis. Notify
// must not block on delivery and never reports failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Notification) {}

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, action, endpoint string, run func(ctx context.Context) error) error
}

// TelegramNotifier posts notifications to the operator chat through a job
// queue. It is usable only after Bind, which happens once the bot is built.
type TelegramNotifier struct {
	chatID int64

	mu    sync.RWMutex
	bot   messageSender
	queue jobQueue
}

// NewTelegramNotifier creates a notifier for the operator chat.
func NewTelegramNotifier(chatID int64) *TelegramNotifier {
	return &TelegramNotifier{chatID: chatID}
}

// Bind attaches the bot used for sending and the queue that runs sends.
func (n *TelegramNotifier) Bind(bot messageSender, queue jobQueue) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bot = bot
	n.queue = queue
}

// Notify implements Notifier.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) {
	n.mu.RLock()
	bot, queue := n.bot, n.queue
	n.mu.RUnlock()

	attrs := []slog.Attr{
		slog.String("kind", string(note.Kind)),
	}
	if bot == nil || queue == nil {
		logger.Warn(ctx, "notify", "notify.skip",
			append(attrs, slog.String("status", "skip"), slog.String("reason", "unbound"))...,
		)
		return
	}

	text := FormatNotification(note)
	to := tele.ChatID(n.chatID)
	send := func(context.Context) error {
		_, err := bot.Send(to, text, &tele.SendOptions{
			ParseMode:             tele.ModeMarkdown,
			DisableWebPagePreview: true,
		})
		return err
	}
	if err := queue.Enqueue(ctx, "notify."+string(note.Kind), "sendMessage", send); err != nil {
		logger.Warn(ctx, "notify", "notify.drop",
			append(attrs, slog.String("status", "fail"), slog.String("err", logger.ErrText(err)))...,
		)
		return
	}
	logger.Debug(ctx, "notify", "notify.enqueued", append(attrs, slog.String("status", "ok"))...)
}

// FormatNotification renders the operator message in legacy Markdown.
func FormatNotification(note Notification) string {
	var b strings.Builder
	switch note.Kind {
	case NotifyHandle:
		b.WriteString("🆕 *Handle submitted*\n")
	case NotifyWallet:
		b.WriteString("💰 *Wallet submitted*\n")
	default:
		fmt.Fprintf(&b, "*%s*\n", format.MD(string(note.Kind)))
	}

	name := strings.TrimSpace(note.DisplayName)
	if name == "" {
		name = "unknown"
	}
	fmt.Fprintf(&b, "User: %s", format.MD(name))
	if note.Username != "" {
		fmt.Fprintf(&b, " (@%s)", format.MD(note.Username))
	}
	fmt.Fprintf(&b, "\nID: `%d`", note.UserID)

	if note.Handle != "" {
		fmt.Fprintf(&b, "\nHandle: @%s", format.MD(note.Handle))
	}
	if note.ProfileURL != "" && note.Kind == NotifyHandle {
		fmt.Fprintf(&b, "\nVerify: %s", format.MD(note.ProfileURL))
	}
	if note.Wallet != "" {
		fmt.Fprintf(&b, "\nWallet: %s", format.CodeMD(note.Wallet))
	}
	if note.ClaimID != "" {
		fmt.Fprintf(&b, "\nClaim: %s", format.CodeMD(note.ClaimID))
	}
	return b.String()
}

package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"

	tele "gopkg.in/telebot.v4"
)

// DefaultLongPollTimeout applies when no positive timeout is configured.
const DefaultLongPollTimeout = 10 * time.Second

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	DropPendingUpdates     bool
	Webhook                WebhookOptions
}

// PollerOptionsFrom maps the Telegram and webhook sections of cfg.
func PollerOptionsFrom(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		DropPendingUpdates:     cfg.Telegram.DropPending(),
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
}

// UsesWebhook reports whether the options select webhook mode.
func (o PollerOptions) UsesWebhook() bool {
	return strings.EqualFold(strings.TrimSpace(o.RunMode), coreconfig.RunModeWebhook)
}

// PollTimeout is the long-poll timeout, DefaultLongPollTimeout when unset.
func (o PollerOptions) PollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds <= 0 {
		return DefaultLongPollTimeout
	}
	return time.Duration(o.LongPollTimeoutSeconds) * time.Second
}

// BuildPoller returns a webhook listener or a long poller. The webhook drops
// pending updates itself; for long polling RunTelegram calls deleteWebhook.
func BuildPoller(opts PollerOptions) tele.Poller {
	if opts.UsesWebhook() {
		return &tele.Webhook{
			Listen:      fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			DropUpdates: opts.DropPendingUpdates,
			Endpoint:    &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: opts.PollTimeout()}
}

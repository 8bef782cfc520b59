package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	"github.com/m3rciful/giveawaybot/core/logger"
	tghelpers "github.com/m3rciful/giveawaybot/core/telegram/helpers"
	tgsender "github.com/m3rciful/giveawaybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot from opts and serves updates until ctx is done.
// OnStart runs after wiring and before the first update; OnStop runs after
// the poller stopped, then the dispatcher drains its queue.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	pollOpts := PollerOptionsFrom(cfg)
	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  BuildPoller(pollOpts),
		Client:  BuildHTTPClient(pollOpts.PollTimeout()),
		OnError: logUnhandled,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	announceMode(ctx, cfg, pollOpts, time.Since(buildStart))
	if !pollOpts.UsesWebhook() && !opts.DisableWebhookCleanup {
		clearWebhook(ctx, bot.URL, cfg.Telegram.Token, pollOpts.DropPendingUpdates)
	}

	wire(bot, opts)
	InitBotCommands(bot, opts.Registry)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	// Flush operator notifications queued before shutdown.
	defer dispatcher.Close()

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: opts.Registry}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// serve blocks in bot.Start until ctx is cancelled or the poller gives up.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func wire(bot *tele.Bot, opts RunOptions) {
	middlewares, routes := 0, 0
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
			middlewares++
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
			routes++
		}
	}
	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("middlewares", middlewares),
		slog.Int("routes", routes),
	)
}

func logUnhandled(err error, c tele.Context) {
	ctx := logger.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "tg.error",
		slog.String("status", "fail"),
		slog.String("err", logger.ErrText(err)),
	)
}

func announceMode(ctx context.Context, cfg *coreconfig.Config, pollOpts PollerOptions, took time.Duration) {
	if cfg.Hosting.Platform && strings.TrimSpace(cfg.Hosting.ExternalHostname) == "" {
		logger.Warn(ctx, "tg", "mode",
			slog.String("status", "skip"),
			slog.String("reason", "hosting platform without public hostname, polling instead"),
		)
	}
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Bool("drop_pending", pollOpts.DropPendingUpdates),
		slog.Duration("duration", took),
	}
	if pollOpts.UsesWebhook() {
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", fmt.Sprintf("%s:%d", pollOpts.Webhook.Listen, pollOpts.Webhook.Port)),
			slog.String("public_url", pollOpts.Webhook.URL),
		)
	} else {
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("poll_timeout", pollOpts.PollTimeout()),
		)
	}
	logger.Info(ctx, "tg", "mode", attrs...)
}

func clearWebhook(ctx context.Context, apiURL, token string, dropPending bool) {
	if err := deleteWebhook(ctx, apiURL, token, dropPending); err != nil {
		logger.Warn(ctx, "tg", "delete_webhook",
			slog.String("status", "fail"),
			slog.String("err", logger.ErrText(err)),
		)
		return
	}
	logger.Info(ctx, "tg", "delete_webhook",
		slog.String("status", "ok"),
		slog.Bool("drop_pending", dropPending),
	)
}

// deleteWebhook removes a previously registered webhook so long polling can
// receive updates, optionally dropping the backlog.
func deleteWebhook(ctx context.Context, apiURL, token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	if apiURL == "" {
		apiURL = tele.DefaultApiURL
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	form := url.Values{"drop_pending_updates": {fmt.Sprint(dropPending)}}
	endpoint := strings.TrimSuffix(apiURL, "/") + "/bot" + token + "/deleteWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which contains the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("deleteWebhook: %w", uerr.Err)
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}

// Package cmd runs a bot process: config, bootstrap, Telegram loop, shutdown.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	"github.com/m3rciful/giveawaybot/core/logger"
	coretelegram "github.com/m3rciful/giveawaybot/core/telegram"
)

const defaultConfigEnvVar = "CONFIG_PATH"

// ConfigCarrier is a bot config that embeds the core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is a bootstrapped bot ready to be handed to RunTelegram.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
// ShutdownLogger and RunTelegram default to the real implementations.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// Run loads configuration, bootstraps the app and serves updates until
// SIGINT or SIGTERM. Configuration errors are returned before any network
// activity.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return fmt.Errorf("cmd: LoadConfig and Bootstrap are required")
	}
	startedAt := time.Now()

	path, err := configPath(opts)
	if err != nil {
		return err
	}
	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	core := cfg.CoreConfig()
	if core == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	application, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	withLifecycleLogs(&runOpts, core.Telegram.RunMode, startedAt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

func configPath(opts Options) (string, error) {
	env := opts.ConfigEnvVar
	if env == "" {
		env = defaultConfigEnvVar
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if opts.DefaultConfigPath != "" {
		return opts.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
}

// withLifecycleLogs chains app.ready after the app's OnStart and app.shutdown
// before its OnStop.
func withLifecycleLogs(runOpts *coretelegram.RunOptions, runMode string, startedAt time.Time) {
	onStart, onStop := runOpts.OnStart, runOpts.OnStop

	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "app.ready",
			slog.String("status", "ok"),
			slog.String("mode", runMode),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "app.shutdown",
			slog.Duration("uptime", logger.RoundMS(time.Since(startedAt))),
		)
		if onStop != nil {
			return onStop(ctx, rt)
		}
		return nil
	}
}

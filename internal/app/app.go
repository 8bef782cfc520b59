package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/giveawaybot/core/bootstrap"
	"github.com/m3rciful/giveawaybot/core/cmd"
	"github.com/m3rciful/giveawaybot/core/logger"
	coretelegram "github.com/m3rciful/giveawaybot/core/telegram"
	"github.com/m3rciful/giveawaybot/core/telegram/router"
	tgsender "github.com/m3rciful/giveawaybot/core/telegram/sender"
	"github.com/m3rciful/giveawaybot/core/telegram/state"
	"github.com/m3rciful/giveawaybot/internal/giveaway"
	"github.com/m3rciful/giveawaybot/migrations"
)

// App holds the wired components of the bot.
type App struct {
	Config     *Config
	DB         *sqlx.DB
	Store      state.Store
	Controller *giveaway.Controller
	Notifier   *giveaway.TelegramNotifier
	Handlers   *giveaway.Handlers
	Registry   *coretelegram.Registry
}

// Bootstrap initializes logging and storage and builds the giveaway flow.
func Bootstrap(cfg *Config, opts ...func(*bootstrap.Options)) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	bopts := bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	}
	for _, o := range opts {
		o(&bopts)
	}
	res, err := bootstrap.Run(bopts)
	if err != nil {
		return nil, err
	}

	var store state.Store
	if res.DB != nil {
		store = state.NewPostgresStore(res.DB)
	} else {
		store = state.NewMemoryStore()
	}

	notifier := giveaway.NewTelegramNotifier(cfg.Giveaway.OperatorChatID)
	ctrl := giveaway.NewController(cfg.Giveaway, store, notifier)
	handlers := giveaway.NewHandlers(ctrl)

	reg := coretelegram.NewRegistry()
	handlers.Register(reg)

	storeKind := "memory"
	if res.DB != nil {
		storeKind = "postgres"
	}
	logger.Info(context.Background(), "app", "app.wired",
		slog.String("status", "ok"),
		slog.String("store", storeKind),
		slog.Bool("handle_step", cfg.Giveaway.HandleStep),
		slog.Bool("interactive_links", cfg.Giveaway.InteractiveLinks),
	)

	return &App{
		Config:     cfg,
		DB:         res.DB,
		Store:      store,
		Controller: ctrl,
		Notifier:   notifier,
		Handlers:   handlers,
		Registry:   reg,
	}, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := &a.Config.Config

	routes := router.CommandRoutes(a.Registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.Registry, router.TextOptions{
		UnknownCommand: a.Handlers.Help,
		NonText:        a.Handlers.Text,
	})...)

	return coretelegram.RunOptions{
		Config:   core,
		Registry: a.Registry,
		// Operator notifications are sent once; a failed send is logged only.
		DispatcherOptions: tgsender.Options{Workers: 2, MaxRetries: 0},
		Middlewares: coretelegram.DefaultMiddlewares(core, coretelegram.MiddlewareHooks{
			OnLimited: a.Handlers.RateLimited,
			OnPanic:   a.Handlers.Apology,
		}),
		Routes: routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.Notifier.Bind(rt.Bot, rt.Dispatcher)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.DB != nil {
				return a.DB.Close()
			}
			return nil
		},
	}, nil
}

// RunOptions returns the cmd.Run options for this bot.
func RunOptions() cmd.Options {
	return cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			c, ok := cfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("app: unexpected config type %T", cfg)
			}
			a, err := Bootstrap(c)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	}
}

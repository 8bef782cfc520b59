package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	coredatabase "github.com/m3rciful/giveawaybot/core/database"
	"github.com/m3rciful/giveawaybot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// Migrations holds the SQL files applied when the database is enabled.
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB is nil when the database is disabled.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger and, when the database is enabled, applies
// migrations and then opens the pool.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.withDefaults()
	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	ctx := logger.Background()
	if !opts.Database.Enabled {
		logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.skip",
			slog.String("status", "skip"),
			slog.String("store", "memory"),
		)
		return &Result{}, nil
	}

	if opts.Migrations != nil {
		if err := opts.Migrate(opts.Database, opts.Migrations); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	return &Result{DB: db}, nil
}

func (o *Options) withDefaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
}

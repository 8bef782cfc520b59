package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/giveawaybot/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	pingInterval   = 2 * time.Second
)

// Connect opens the session database, sizes the pool and checks that it answers.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(logger.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.ConnString())
	attrs := targetAttrs(cfg, time.Since(start))
	if err != nil {
		attrs = append(attrs, slog.String("status", "fail"), slog.String("err", logger.ErrText(err)))
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect", attrs...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	db.SetConnMaxIdleTime(5 * time.Minute)

	attrs = append(attrs, slog.String("status", "ok"), slog.Int("pool_open", cfg.MaxConnections))
	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect", attrs...)
	return db, nil
}

func targetAttrs(cfg Config, took time.Duration) []slog.Attr {
	return []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Duration("duration", logger.RoundMS(took)),
	}
}

// WaitForPostgres retries a ping every couple of seconds until the server
// answers or timeout elapses. The last ping error is wrapped on timeout.
func WaitForPostgres(ctx context.Context, cfg Config, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	attempt := 0
	for {
		attempt++
		lastErr := db.PingContext(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug(ctx, "db", "db.ready", slog.Int("attempts", attempt))
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not reachable after %d attempts: %w", attempt, lastErr)
		case <-time.After(pingInterval):
		}
	}
}

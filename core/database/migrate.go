package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/giveawaybot/core/logger"
)

const readyTimeout = 30 * time.Second

// RunMigrations waits for Postgres and applies every pending up migration
// found at the root of fsys. An up-to-date schema is not an error.
func RunMigrations(cfg Config, fsys fs.FS) error {
	if fsys == nil {
		return fmt.Errorf("migrations: nil filesystem")
	}
	ctx := logger.Background()
	if err := WaitForPostgres(ctx, cfg, readyTimeout); err != nil {
		migrateFailed(ctx, "wait", err)
		return fmt.Errorf("database not ready: %w", err)
	}

	files := listMigrationFiles(fsys)
	if preview, more := logger.Preview(files, 6); preview != "" {
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "db.migrate.resolve",
			slog.Int("files_total", len(files)),
			slog.String("files_preview", preview),
			slog.Bool("files_truncated", more),
		)
	}

	src, err := iofs.New(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		migrateFailed(ctx, "init", err)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		migrateFailed(ctx, "apply", err)
		return fmt.Errorf("migration execution failed: %w", err)
	}
	to, _, _ := m.Version()

	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "db.migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", countApplied(files, uint64(from), uint64(to))),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func migrateFailed(ctx context.Context, action string, err error) {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, "db.migrate",
		slog.String("status", "fail"),
		slog.String("action", action),
		slog.String("err", logger.ErrText(err)),
	)
}

func listMigrationFiles(fsys fs.FS) []string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func countApplied(files []string, from, to uint64) int {
	c := 0
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			c++
		}
	}
	return c
}

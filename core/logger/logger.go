// Package logger provides the bot's structured slog setup: one line per
// event, fixed key order, correlation ids pulled from context.
package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/giveawaybot/core/buildinfo"
	coreconfig "github.com/m3rciful/giveawaybot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	sink    *asyncWriter
	files   []io.Closer
	minimum slog.LevelVar

	debugSampler = newRatioSampler(1, 50)
	traceAll     bool

	// L is the base logger. It discards everything until InitLogger runs,
	// so packages can log from tests without setup.
	L = slog.New(slog.DiscardHandler)

	// DB logs connection events.
	DB *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TWire logs handler and command registration.
	TWire *slog.Logger
)

func init() {
	scopeComponents()
}

// options is the logging section of the config after defaults are applied.
type options struct {
	level    slog.Level
	format   logFormat
	profile  string
	keyOrder []string
	sampleN  int
	sampleD  int
	file     string
}

func resolveOptions(cfg *coreconfig.Config) options {
	o := options{
		level:    slog.LevelInfo,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
		sampleN:  1,
		sampleD:  50,
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging

	o.profile = "prod"
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		o.level = slog.LevelDebug
	case "warn", "warning":
		o.level = slog.LevelWarn
	case "error":
		o.level = slog.LevelError
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var keys []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			o.keyOrder = keys
		}
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch n, d := parseRatioSpec(spec); {
		case n == 0 && d == 0:
			o.sampleN, o.sampleD = 0, 0
		case n > 0 && d > 0:
			o.sampleN, o.sampleD = n, d
		}
	}

	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		o.file = filepath.Join(dir, name)
	}
	return o
}

// InitLogger installs the structured handler as the slog default. Only the
// first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		o := resolveOptions(cfg)
		minimum.Set(o.level)
		debugSampler.Set(o.sampleN, o.sampleD)
		traceAll = envFlag("TRACE") || envFlag("LOG_TRACE")

		outputs := []io.Writer{os.Stdout}
		if f := openLogFile(o.file); f != nil {
			outputs = append(outputs, f)
			files = append(files, f)
		}
		sink = newAsyncWriter(outputs, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &minimum,
			writer:   sink,
			format:   o.format,
			keyOrder: o.keyOrder,
		}))
		slog.SetDefault(L)
		scopeComponents()

		Info(Background(), "app", "startup",
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", o.profile),
		)
	})
	return nil
}

func scopeComponents() {
	DB = Component("db")
	MIG = Component("db.migrate")
	TWire = Component("tg.wire")
}

// openLogFile returns nil when path is empty or unusable; stdout keeps working either way.
func openLogFile(path string) *os.File {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("logger: create log dir: %v", err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file: %v", err)
		return nil
	}
	return f
}

// Shutdown flushes buffered output and closes the log file. Later calls are no-ops.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Flush(), sink.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Background returns context.Background() for call sites outside an update.
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs under the given event name, resolving the logger from ctx when logg is nil.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ensure(ctx), level, "", attrs...)
}

// Component returns L scoped to a component; a blank name returns L.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged.
// TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return traceAll || debugSampler.Allow()
}

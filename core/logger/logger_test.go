package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
)

func TestResolveOptionsDefaults(t *testing.T) {
	o := resolveOptions(nil)
	if o.level != slog.LevelInfo || o.format != formatJSON {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if o.sampleN != 1 || o.sampleD != 50 || o.file != "" {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func TestResolveOptionsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "Warning",
		Profile:     "DEV",
		KeysOrder:   "event, ,level",
		DebugSample: "0",
		Dir:         "logs",
		BotFile:     "bot.log",
	}}
	o := resolveOptions(cfg)
	if o.level != slog.LevelWarn {
		t.Fatalf("level = %v", o.level)
	}
	if o.format != formatKV || o.profile != "dev" {
		t.Fatalf("dev profile should default to kv, got %s/%s", o.format, o.profile)
	}
	if len(o.keyOrder) != 2 || o.keyOrder[0] != "event" || o.keyOrder[1] != "level" {
		t.Fatalf("keyOrder = %v", o.keyOrder)
	}
	if o.sampleN != 0 || o.sampleD != 0 {
		t.Fatalf("sampling should be disabled, got %d/%d", o.sampleN, o.sampleD)
	}
	if o.file != filepath.Join("logs", "bot.log") {
		t.Fatalf("file = %s", o.file)
	}
}

func TestResolveOptionsExplicitJSONWins(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{Format: "json", Profile: "debug", DebugSample: "1/5"}}
	o := resolveOptions(cfg)
	if o.format != formatJSON {
		t.Fatalf("format = %s", o.format)
	}
	if o.sampleN != 1 || o.sampleD != 5 {
		t.Fatalf("sample = %d/%d", o.sampleN, o.sampleD)
	}
}

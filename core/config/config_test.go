package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "123:abc"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "123:abc", RunMode: "Polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "123:abc", RunMode: RunModeWebhook}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook without url")
	}
}

func TestNormalizeHostingAutodetect(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Hosting:  HostingConfig{Platform: true, ExternalHostname: "giveaway.example.com", Port: 10000},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeWebhook {
		t.Fatalf("run mode = %q, want webhook", cfg.Telegram.RunMode)
	}
	if cfg.Webhook.URL != "https://giveaway.example.com/webhook" {
		t.Fatalf("webhook url = %q", cfg.Webhook.URL)
	}
	if cfg.Webhook.Listen != "0.0.0.0" || cfg.Webhook.Port != 10000 {
		t.Fatalf("listen = %s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)
	}
}

func TestNormalizeHostingDefaultPort(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Hosting:  HostingConfig{ExternalHostname: "giveaway.example.com"},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Webhook.Port != DefaultWebhookPort {
		t.Fatalf("port = %d, want %d", cfg.Webhook.Port, DefaultWebhookPort)
	}
}

func TestNormalizeRejectsUnknownExclusion(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "123:abc"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{"sticker"}},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown exclusion")
	}
}

func TestLoadOverlaysEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("telegram:\n  token: from-file\n  run_mode: longpoll\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-only" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}

func TestDropPendingDefaultsToTrue(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Telegram.DropPending() {
		t.Fatal("env-only deployment must drop pending updates")
	}

	t.Setenv("TELEGRAM_DROP_PENDING_UPDATES", "false")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.DropPending() {
		t.Fatal("explicit false from env must keep pending updates")
	}
}

func TestDropPendingExplicitFalseInYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("telegram:\n  token: t\n  drop_pending_updates: false\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.DropPending() {
		t.Fatal("drop_pending_updates: false must be honored")
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// DropPendingUpdates discards updates queued while the bot was down.
	// Unset means true; only an explicit false keeps them.
	DropPendingUpdates *bool `yaml:"drop_pending_updates" envconfig:"TELEGRAM_DROP_PENDING_UPDATES"`
}

// DropPending reports whether pending updates are discarded on start.
func (t TelegramConfig) DropPending() bool {
	return t.DropPendingUpdates == nil || *t.DropPendingUpdates
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// HostingConfig carries variables injected by the hosting platform.
// When ExternalHostname is set and no run mode is configured explicitly,
// the bot switches to webhook mode on https://<ExternalHostname>/webhook.
type HostingConfig struct {
	Platform         bool   `yaml:"-" envconfig:"RENDER"`
	ExternalHostname string `yaml:"-" envconfig:"RENDER_EXTERNAL_HOSTNAME"`
	Port             int    `yaml:"-" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"

	// WebhookPath is the path appended to an autodetected public hostname.
	WebhookPath = "/webhook"
	// DefaultWebhookPort is used when the platform does not provide PORT.
	DefaultWebhookPort = 8443
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Hosting   HostingConfig   `yaml:"-"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads the core configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto decodes the YAML file at path into dst and overlays environment
// variables. Bots embedding Config use it to load their own settings in one pass.
// A missing file is tolerated so that env-only deployments keep working.
func LoadInto(path string, dst any) error {
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Normalize validates cfg in place: it trims the token, resolves the run
// mode and lowercases rate limit exclusions.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token); cfg.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	mode, err := cfg.resolveRunMode()
	if err != nil {
		return err
	}
	cfg.Telegram.RunMode = mode
	return cfg.RateLimit.normalize()
}

func (cfg *Config) resolveRunMode() (string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "":
		mode = detectRunMode(cfg)
	case "polling":
		mode = RunModeLongpoll
	}
	switch mode {
	case RunModeWebhook:
		return mode, cfg.Webhook.validate()
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return "", errors.New("telegram.longpoll_timeout_seconds must be >= 0")
		}
		return mode, nil
	}
	return "", fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
}

func (w WebhookConfig) validate() error {
	const when = "when telegram.run_mode is 'webhook'"
	switch {
	case strings.TrimSpace(w.URL) == "":
		return fmt.Errorf("webhook.url is required %s", when)
	case strings.TrimSpace(w.Listen) == "":
		return fmt.Errorf("webhook.listen is required %s", when)
	case w.Port <= 0:
		return fmt.Errorf("webhook.port must be > 0 %s", when)
	}
	return nil
}

var excludableUpdates = []string{UpdateCallback, UpdateMessage, UpdateInlineQuery}

func (r *RateLimitConfig) normalize() error {
	if r.IntervalMS < 0 {
		return errors.New("rate_limit.interval_ms must be >= 0")
	}
	for i, v := range r.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(v))
		if kind != "" && !slices.Contains(excludableUpdates, kind) {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: %s", v, strings.Join(excludableUpdates, ", "))
		}
		r.ExcludeUpdates[i] = kind
	}
	return nil
}

// detectRunMode switches to webhook mode when the host platform publishes an
// external hostname, filling webhook fields that were left empty.
func detectRunMode(cfg *Config) string {
	host := strings.TrimSpace(cfg.Hosting.ExternalHostname)
	if host == "" {
		return RunModeLongpoll
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "https://"), "/")
	w := &cfg.Webhook
	if strings.TrimSpace(w.URL) == "" {
		w.URL = "https://" + host + WebhookPath
	}
	if strings.TrimSpace(w.Listen) == "" {
		w.Listen = "0.0.0.0"
	}
	for _, port := range []int{w.Port, cfg.Hosting.Port, DefaultWebhookPort} {
		if port > 0 {
			w.Port = port
			break
		}
	}
	return RunModeWebhook
}

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/giveawaybot/core/bootstrap"
	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	coretelegram "github.com/m3rciful/giveawaybot/core/telegram"
	"github.com/m3rciful/giveawaybot/core/telegram/state"
	"github.com/m3rciful/giveawaybot/internal/giveaway"
)

const testYAML = `
telegram:
  token: "123:yaml"
  run_mode: longpoll
database:
  enabled: false
giveaway:
  project_name: Testmotif
  handle_step: true
  operator_chat_id: 555
  links:
    website: https://example.org/collection
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:yaml", cfg.Telegram.Token)
	assert.Equal(t, coreconfig.RunModeLongpoll, cfg.Telegram.RunMode)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "Testmotif", cfg.Giveaway.ProjectName)
	assert.True(t, cfg.Giveaway.HandleStep)
	assert.Equal(t, int64(555), cfg.Giveaway.OperatorChatID)
	assert.Equal(t, "https://example.org/collection", cfg.Giveaway.Links.Website)
	assert.Equal(t, giveaway.DefaultCommunityURL, cfg.Giveaway.Links.Community)
	assert.Equal(t, int64(555), cfg.Telegram.AdminID, "a private operator chat becomes the admin")
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:env")
	t.Setenv("OPERATOR_CHAT_ID", "-100777")
	t.Setenv("TELEGRAM_ADMIN_ID", "42")
	t.Setenv("GIVEAWAY_HANDLE_STEP", "false")

	cfg, err := LoadConfig(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "123:env", cfg.Telegram.Token)
	assert.Equal(t, int64(-100777), cfg.Giveaway.OperatorChatID)
	assert.Equal(t, int64(42), cfg.Telegram.AdminID)
	assert.False(t, cfg.Giveaway.HandleStep)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:env")
	t.Setenv("OPERATOR_CHAT_ID", "-100")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, giveaway.DefaultProjectName, cfg.Giveaway.ProjectName)
	assert.Zero(t, cfg.Telegram.AdminID, "group chats are never promoted to admin")
}

func TestLoadConfigRequiresOperatorChat(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:env")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPERATOR_CHAT_ID")
}

func TestLoadConfigRejectsIncompleteDatabase(t *testing.T) {
	t.Setenv("DB_ENABLED", "true")
	_, err := LoadConfig(writeConfig(t, testYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(writeConfig(t, testYAML))
	require.NoError(t, err)
	return cfg
}

func noLogger(o *bootstrap.Options) {
	o.LoggerInit = func(*coreconfig.Config) error { return nil }
}

func TestBootstrapUsesMemoryStoreWithoutDatabase(t *testing.T) {
	a, err := Bootstrap(testConfig(t), noLogger)
	require.NoError(t, err)

	assert.Nil(t, a.DB)
	assert.IsType(t, &state.MemoryStore{}, a.Store)
	for _, name := range []string{"/start", "/cancel", "/help", "/stats"} {
		_, _, ok := a.Registry.LookupCommand(name)
		assert.True(t, ok, name)
	}

	replies, err := a.Controller.Handle(context.Background(), giveaway.Event{UserID: 1, Command: giveaway.CommandStart})
	require.NoError(t, err)
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "Testmotif")
}

func TestBootstrapPropagatesFailures(t *testing.T) {
	_, err := Bootstrap(nil)
	require.Error(t, err)

	boom := errors.New("logger broke")
	_, err = Bootstrap(testConfig(t), func(o *bootstrap.Options) {
		o.LoggerInit = func(*coreconfig.Config) error { return boom }
	})
	assert.ErrorIs(t, err, boom)
}

func TestTelegramRunOptions(t *testing.T) {
	a, err := Bootstrap(testConfig(t), noLogger)
	require.NoError(t, err)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, &a.Config.Config, opts.Config)
	assert.Same(t, a.Registry, opts.Registry)
	assert.Zero(t, opts.DispatcherOptions.MaxRetries)
	assert.NotEmpty(t, opts.Routes)
	assert.NotEmpty(t, opts.Middlewares)
	require.NotNil(t, opts.OnStart)
	require.NotNil(t, opts.OnStop)
	assert.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
}

type foreignConfig struct{ core coreconfig.Config }

func (f *foreignConfig) CoreConfig() *coreconfig.Config { return &f.core }

func TestRunOptionsRejectsForeignConfig(t *testing.T) {
	opts := RunOptions()
	assert.Equal(t, "CONFIG_PATH", opts.ConfigEnvVar)
	_, err := opts.Bootstrap(&foreignConfig{})
	assert.Error(t, err)
}

func TestRunOptionsLoadConfigError(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	cfg, err := RunOptions().LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	coretelegram "github.com/m3rciful/giveawaybot/core/telegram"
)

type testConfig struct{ core coreconfig.Config }

func (c *testConfig) CoreConfig() *coreconfig.Config { return &c.core }

type testApp struct {
	opts coretelegram.RunOptions
	err  error
}

func (a testApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, a.err }

func TestRunRequiresHooks(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
	if err := Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return &testConfig{}, nil }}); err == nil {
		t.Fatal("expected error without Bootstrap")
	}
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("TEST_GIVEAWAY_CONFIG", "from-env.yaml")

	var (
		loadedPath  string
		order       []string
		loggerDown  bool
		receivedCfg *coreconfig.Config
	)
	cfg := &testConfig{}
	opts := Options{
		ConfigEnvVar:      "TEST_GIVEAWAY_CONFIG",
		DefaultConfigPath: "unused.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return cfg, nil
		},
		Bootstrap: func(c ConfigCarrier) (TelegramApp, error) {
			return testApp{opts: coretelegram.RunOptions{
				Config: c.CoreConfig(),
				OnStart: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "app.start")
					return nil
				},
				OnStop: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "app.stop")
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error { loggerDown = true; return nil },
		RunTelegram: func(ctx context.Context, ro coretelegram.RunOptions) error {
			receivedCfg = ro.Config
			if err := ro.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return ro.OnStop(ctx, coretelegram.Runtime{})
		},
	}

	if err := Run(opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if loadedPath != "from-env.yaml" {
		t.Fatalf("config path = %q", loadedPath)
	}
	if receivedCfg != &cfg.core {
		t.Fatal("run options lost the core config")
	}
	if strings.Join(order, ",") != "app.start,app.stop" {
		t.Fatalf("hook order = %v", order)
	}
	if !loggerDown {
		t.Fatal("logger was not shut down")
	}
}

func TestRunShutsDownLoggerOnBootstrapFailure(t *testing.T) {
	boom := errors.New("db unreachable")
	loggerDown := false
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return &testConfig{}, nil },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger:    func() error { loggerDown = true; return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if !loggerDown {
		t.Fatal("logger was not shut down")
	}
}

func TestRunReportsConfigErrors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	boom := errors.New("bad yaml")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected config error, got %v", err)
	}

	err = Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return &testConfig{}, nil },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
	})
	if err == nil || !strings.Contains(err.Error(), "config path") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

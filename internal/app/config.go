// Package app wires configuration, storage and the giveaway flow into a
// runnable Telegram bot.
package app

import (
	"fmt"

	coreconfig "github.com/m3rciful/giveawaybot/core/config"
	coredatabase "github.com/m3rciful/giveawaybot/core/database"
	"github.com/m3rciful/giveawaybot/internal/giveaway"
)

// Config is the full bot configuration: the shared core settings plus the
// database and giveaway sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Giveaway giveaway.Settings   `yaml:"giveaway"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path (optional) and the environment, then validates every
// section. Any error here stops the process before it accepts updates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes every section. When no admin is configured and the
// operator chat is a private chat, the operator becomes the admin.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if err := c.Giveaway.Normalize(); err != nil {
		return err
	}
	if c.Telegram.AdminID == 0 && c.Giveaway.OperatorChatID > 0 {
		c.Telegram.AdminID = c.Giveaway.OperatorChatID
	}
	return nil
}

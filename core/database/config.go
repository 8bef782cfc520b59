package database

import (
	"fmt"
	"net/url"
)

// Config holds database connection settings. The database is optional:
// when Enabled is false the bot keeps sessions in memory only.
type Config struct {
	Enabled        bool   `yaml:"enabled" envconfig:"DB_ENABLED"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize fills defaults and validates the settings when the database is enabled.
func (c *Config) Normalize() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" || c.Name == "" || c.User == "" {
		return fmt.Errorf("database.host, database.name and database.user are required when database.enabled is true")
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 5
	}
	return nil
}

// ConnString returns a lib/pq keyword/value connection string.
func (c Config) ConnString() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		quoteValue(c.User), quoteValue(c.Password), c.Host, c.Port, quoteValue(c.Name), c.SSLMode,
	)
}

// URL returns the postgres:// form expected by golang-migrate.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func quoteValue(v string) string {
	out := make([]byte, 0, len(v)+2)
	out = append(out, '\'')
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' || v[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, v[i])
	}
	return string(append(out, '\''))
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Database struct {
	DSN          string `yaml:"url" env:"DATABASE_URL"`
	Username     string `yaml:"user" env:"POSTGRES_USER"`
	Password     string `yaml:"password" env:"POSTGRES_PASSWORD"`
	PasswordFile string `yaml:"password-file" env:"POSTGRES_PASSWORD_FILE"`
	Host         string `yaml:"host" env:"POSTGRES_HOST"`
	Port         uint16 `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	DBName       string `yaml:"db" env:"POSTGRES_DB"`
	SSLMode      string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

// Enabled reports whether any database connection was configured. The
// server runs without one; finished games are then not recorded.
func (c Database) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

func (c *Database) LoadPassword() error {
	if c.Password != "" || c.PasswordFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return fmt.Errorf("unable to read from password file: %w", err)
	}

	c.Password = strings.TrimSpace(string(data))
	return nil
}

func (c Database) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

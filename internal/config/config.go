// Package config loads server settings from an optional YAML file overlaid
// by HOUSEHOLDER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/money"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `yaml:"port"`
	DBPath          string        `yaml:"db_path"`
	BaseURL         string        `yaml:"base_url"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	DefaultCurrency string        `yaml:"default_currency"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
	Postmark        Postmark      `yaml:"postmark"`
}

type Postmark struct {
	ServerToken string `yaml:"server_token"`
	FromEmail   string `yaml:"from_email"`
}

func Default() Config {
	return Config{
		Port:            "8080",
		DBPath:          "householder.db",
		BaseURL:         "http://localhost:8080",
		LogLevel:        "info",
		LogFormat:       "text",
		SessionTTL:      30 * 24 * time.Hour,
		DefaultCurrency: "EUR",
		BcryptCost:      10,
	}
}

// Load reads path when it is non-empty, then applies the environment. A
// missing file is an error; an empty path means defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("HOUSEHOLDER_PORT", &cfg.Port)
	str("HOUSEHOLDER_DB_PATH", &cfg.DBPath)
	str("HOUSEHOLDER_BASE_URL", &cfg.BaseURL)
	str("HOUSEHOLDER_LOG_LEVEL", &cfg.LogLevel)
	str("HOUSEHOLDER_LOG_FORMAT", &cfg.LogFormat)
	str("HOUSEHOLDER_DEFAULT_CURRENCY", &cfg.DefaultCurrency)
	str("HOUSEHOLDER_POSTMARK_TOKEN", &cfg.Postmark.ServerToken)
	str("HOUSEHOLDER_POSTMARK_FROM", &cfg.Postmark.FromEmail)

	if v, ok := lookup("HOUSEHOLDER_SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HOUSEHOLDER_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v, ok := lookup("HOUSEHOLDER_BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOUSEHOLDER_BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.DefaultCurrency = strings.ToUpper(c.DefaultCurrency)
	if _, err := money.CurrencyFor(c.DefaultCurrency); err != nil {
		return fmt.Errorf("default currency: %w", err)
	}
	return nil
}

// Currency resolves DefaultCurrency. Load has already validated it.
func (c Config) Currency() money.Currency {
	cur, err := money.CurrencyFor(c.DefaultCurrency)
	if err != nil {
		return money.MustCurrency("EUR", 2)
	}
	return cur
}

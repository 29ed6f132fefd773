// Package config holds runtime settings: defaults overlaid with
// environment variables.
package config

import (
	"os"
	"time"
)

type Config struct {
	Port             string
	DatabaseURL      string
	GuestDBPath      string
	JWTSecret        string
	EncryptionKey    string // 32 bytes; empty disables at-rest encryption
	GeminiAPIKey     string
	GeminiModel      string
	ReminderInterval time.Duration
}

// LoadDefaults populates development defaults. Secrets have no default and
// must come from the environment.
func (c *Config) LoadDefaults() {
	c.Port = "8080"
	c.GuestDBPath = "mindguard.db"
	c.GeminiModel = "gemini-2.5-flash"
	c.ReminderInterval = time.Minute
}

// Load builds a Config from defaults plus the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	overlay(&cfg.Port, "PORT")
	overlay(&cfg.DatabaseURL, "DATABASE_URL")
	overlay(&cfg.GuestDBPath, "GUEST_DB_PATH")
	overlay(&cfg.JWTSecret, "JWT_SECRET")
	overlay(&cfg.EncryptionKey, "ENCRYPTION_KEY")
	overlay(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&cfg.GeminiModel, "GEMINI_MODEL")

	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReminderInterval = d
		}
	}
	return cfg
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

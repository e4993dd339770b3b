// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"IKLIM_DB_PATH" envDefault:"./data/iklimsesi.db"`
	SessionSecret string `env:"IKLIM_SESSION_SECRET,required"`
	ServerHost    string `env:"IKLIM_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"IKLIM_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"IKLIM_ENV" envDefault:"development"`
	LogLevel      string `env:"IKLIM_LOG_LEVEL" envDefault:"info"`

	// Site configuration
	SiteURL     string `env:"IKLIM_SITE_URL" envDefault:"https://iklimsesi.org"`
	SitemapPath string `env:"IKLIM_SITEMAP_PATH" envDefault:"./public/sitemap.xml"`

	// Cache configuration
	RedisURL     string `env:"IKLIM_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"IKLIM_CACHE_PREFIX" envDefault:"iklim:"`  // Redis key prefix
	CacheMaxSize int    `env:"IKLIM_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Scheduler configuration
	SitemapCron    string `env:"IKLIM_SITEMAP_CRON" envDefault:"0 4 * * *"`  // Daily sitemap reconciliation
	EventRetention int    `env:"IKLIM_EVENT_RETENTION_DAYS" envDefault:"90"` // Audit event retention in days

	// Seeding configuration
	DoSeed bool `env:"IKLIM_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("IKLIM_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("IKLIM_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("IKLIM_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if !strings.HasPrefix(cfg.SiteURL, "http://") && !strings.HasPrefix(cfg.SiteURL, "https://") {
		return nil, fmt.Errorf("IKLIM_SITE_URL must be an absolute URL, got %q", cfg.SiteURL)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}

package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Discord application credentials. Client ID/secret drive the user OAuth
	// flow; the bot token is used for elevated calls (channel listing, webhook
	// management). Missing any of the three means the integration is reported
	// as unavailable rather than half-working.
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordBotToken     string `env:"DISCORD_BOT_TOKEN"`
	DiscordRedirectBase string `env:"DISCORD_REDIRECT_BASE" envDefault:""`
	DiscordAPIBase      string `env:"DISCORD_API_BASE" envDefault:"https://discord.com/api/v10"`

	EncryptionKey string `env:"ENCRYPTION_KEY"`

	CacheStalenessSeconds int `env:"CACHE_STALENESS_SECONDS" envDefault:"300"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) CacheStaleness() time.Duration {
	return time.Duration(c.CacheStalenessSeconds) * time.Second
}

// DiscordConfigured reports whether the Discord integration has the full
// credential set. A partially configured integration is treated as absent.
func (c *Config) DiscordConfigured() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != "" && c.DiscordBotToken != ""
}

func (c *Config) Validate(isProduction bool) error {
	if c.EncryptionKey != "" {
		key, err := hex.DecodeString(c.EncryptionKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters (generate with: openssl rand -hex 32)")
		}
	}

	for _, weak := range knownWeakSecrets {
		if c.DiscordClientSecret == weak {
			return fmt.Errorf("DISCORD_CLIENT_SECRET is a known weak placeholder")
		}
	}

	if isProduction {
		if c.EncryptionKey == "" {
			log.Warn().Msg("ENCRYPTION_KEY is empty in production: Discord tokens will not be encrypted at rest")
		}
		if !c.DiscordConfigured() {
			log.Warn().Msg("Discord credentials incomplete: integration endpoints will report unavailable")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

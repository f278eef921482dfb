package utils

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DiscordAppToken string `envconfig:"DISCORD_APP_TOKEN" required:"true"`
	DiscordClientID string `envconfig:"DISCORD_CLIENT_ID"`
	// empty registers slash commands globally
	DiscordGuildID string `envconfig:"DISCORD_GUILD_ID"`

	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"https://api.rac-corp.net/"`
	APIKey       string        `envconfig:"API_KEY" required:"true"`
	APIUserAgent string        `envconfig:"API_USER_AGENT" default:"racbot"`
	APITimeout   time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	APIOKStatus  []int         `envconfig:"API_OK_STATUS" default:"200,201,204"`
	APIDisabled  bool          `envconfig:"API_DISABLED" default:"false"`

	CommandPrefix string   `envconfig:"COMMAND_PREFIX" default:"r."`
	OwnerID       string   `envconfig:"OWNER_ID"`
	ModUsernames  []string `envconfig:"MOD_USERNAMES"`
	InviteURL     string   `envconfig:"INVITE_URL"`

	Port                     string        `envconfig:"PORT" default:"8080"`
	MetricCollectionInterval time.Duration `envconfig:"METRIC_COLLECTION_INTERVAL" default:"15s"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"debug"`
}

// LoadConfig reads the environment. A .env file, if any, must already be
// loaded.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}
	c.log()
	return &c, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DiscordAppToken) == "" {
		return fmt.Errorf("DISCORD_APP_TOKEN is empty")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("API_KEY is empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if len(c.APIOKStatus) == 0 {
		return fmt.Errorf("API_OK_STATUS can't be empty")
	}
	for _, code := range c.APIOKStatus {
		if code < 100 || code > 599 {
			return fmt.Errorf("API_OK_STATUS has invalid status %d", code)
		}
	}
	if c.MetricCollectionInterval <= 0 {
		return fmt.Errorf("METRIC_COLLECTION_INTERVAL must be positive, got %s", c.MetricCollectionInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) log() {
	slog.Debug("env", "DISCORD_APP_TOKEN", mask(c.DiscordAppToken))
	slog.Debug("env", "DISCORD_CLIENT_ID", c.DiscordClientID)
	slog.Debug("env", "DISCORD_GUILD_ID", c.DiscordGuildID)
	slog.Debug("env", "API_BASE_URL", c.APIBaseURL)
	slog.Debug("env", "API_KEY", mask(c.APIKey))
	slog.Debug("env", "API_USER_AGENT", c.APIUserAgent)
	slog.Debug("env", "API_TIMEOUT", c.APITimeout)
	slog.Debug("env", "API_OK_STATUS", c.APIOKStatus)
	if c.APIDisabled {
		slog.Warn("API_DISABLED is set, every API command will fail until maintenance is turned off")
	}
	slog.Debug("env", "COMMAND_PREFIX", c.CommandPrefix)
	slog.Debug("env", "OWNER_ID", c.OwnerID)
	slog.Debug("env", "MOD_USERNAMES", strings.Join(c.ModUsernames, ","))
	slog.Debug("env", "PORT", c.Port)
	slog.Debug("env", "METRIC_COLLECTION_INTERVAL", c.MetricCollectionInterval)
	slog.Debug("env", "LOG_LEVEL", c.LogLevel)
	if c.OwnerID == "" {
		slog.Warn("OWNER_ID is not set, operator-only commands are unusable")
	}
}

func mask(secret string) string {
	if len(secret) <= 3 {
		return "..."
	}
	return secret[0:3] + "..."
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelDebug, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// Package config provides configuration loading, validation, and management
// for the Castellan application. It handles reading from YAML files,
// environment variables prefixed with BOT_, default values, and validation
// of configuration parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the Castellan system, including logging, Telegram settings, the state
// store, the audit database, scoring rules, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Store     StoreConfig     `mapstructure:"store"`
	Web       WebConfig       `mapstructure:"web"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram API settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// AuditChatID is the chat that receives moderation audit messages.
	// Zero disables audit posting.
	AuditChatID int64 `mapstructure:"audit_chat_id"`
}

// RedisConfig holds the connection settings for the moderation state store.
// An empty URL selects the in-memory store, which loses state on restart.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,uri"`
}

// DatabaseConfig holds settings for the SQLite audit event database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`

	// EventRetention bounds how long moderation events are kept before the
	// scheduled prune task removes them.
	EventRetention time.Duration `mapstructure:"event_retention" validate:"min=24h"`
}

// RulesConfig points at the optional scoring rules overrides file.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig bounds individual state store operations.
type StoreConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required,min=100ms,max=30s"`
}

// WebConfig configures the HTTP server exposing health and metrics endpoints.
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// TaskConfig defines whether a named scheduled task runs and on what cron
// schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// LoadConfig reads configuration from the given YAML file (which may be
// absent), overlays BOT_* environment variables, applies defaults, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Registered so BOT_TELEGRAM_* environment variables are picked up
	// even when the config file omits the section.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.audit_chat_id", 0)

	v.SetDefault("redis.url", "")

	v.SetDefault("database.path", "castellan.db")
	v.SetDefault("database.event_retention", 30*24*time.Hour)

	v.SetDefault("rules.path", "rules.yaml")

	v.SetDefault("store.timeout", 3*time.Second)

	v.SetDefault("web.enabled", true)
	v.SetDefault("web.addr", ":8080")

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"events_prune": {Enabled: true, Schedule: "0 0 4 * * *"},
		"store_health": {Enabled: true, Schedule: "0 */5 * * * *"},
	})
}

// Package config provides Viper-based hierarchical configuration for the
// server and the command-line client.
//
// Values are resolved in this order, later wins: defaults, config.yaml
// (in $HOME/.odemetakip, .odemetakip or the working directory, or the file
// given explicitly), a .env file, ODEME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// ODEME_DB_PATH for db.path.
const EnvPrefix = "ODEME"

// Config represents the complete application configuration.
type Config struct {
	Server struct {
		Port            int           `mapstructure:"port"`
		StaticPath      string        `mapstructure:"static_path"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenDuration time.Duration `mapstructure:"token_duration"`
	} `mapstructure:"auth"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	CORS struct {
		AllowedOrigin string `mapstructure:"allowed_origin"`
	} `mapstructure:"cors"`

	Command struct {
		DispatchLimit int `mapstructure:"dispatch_limit"`
	} `mapstructure:"command"`

	Cache struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"cache"`

	Remote struct {
		URL       string `mapstructure:"url"`
		TokenPath string `mapstructure:"token_path"`
	} `mapstructure:"remote"`
}

// Load reads the configuration. configFile may be empty to search the
// default locations; a missing config file is not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.odemetakip")
		v.AddConfigPath(".odemetakip")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".odemetakip")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_path", "./web")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "./data/odemetakip.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", 7*24*time.Hour)

	v.SetDefault("log.level", "info")

	v.SetDefault("cors.allowed_origin", "*")

	v.SetDefault("command.dispatch_limit", 8)

	v.SetDefault("cache.path", filepath.Join(dir, "cache.yaml"))

	v.SetDefault("remote.url", "http://localhost:8080")
	v.SetDefault("remote.token_path", filepath.Join(dir, "token"))
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Command.DispatchLimit < 1 {
		return fmt.Errorf("command.dispatch_limit must be positive, got: %d", c.Command.DispatchLimit)
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive, got: %s", c.Auth.TokenDuration)
	}
	return nil
}

// MinSecretLength is the shortest JWT secret the server accepts.
const MinSecretLength = 16

// ValidateServer checks the settings only the server needs.
func (c *Config) ValidateServer() error {
	if len(c.Auth.JWTSecret) < MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters (set %s_AUTH_JWT_SECRET)", MinSecretLength, EnvPrefix)
	}
	return nil
}

// LogLevel returns the configured level.
func (c *Config) LogLevel() slog.Level {
	level, _ := ParseLevel(c.Log.Level)
	return level
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
	return level, nil
}

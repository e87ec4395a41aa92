package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Commerce CommerceConfig `mapstructure:"commerce"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Fallback FallbackConfig `mapstructure:"fallback"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	SessionTTL   int    `mapstructure:"session_ttl"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CommerceConfig holds the remote commerce API configuration
type CommerceConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	PublishableKey       string `mapstructure:"publishable_key"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	PageLimit            int    `mapstructure:"page_limit"`
}

// RedisConfig holds Redis connection details for the response cache
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds response cache lifetimes in seconds
type CacheConfig struct {
	ListTTL   int `mapstructure:"list_ttl"`
	LookupTTL int `mapstructure:"lookup_ttl"`
}

// FallbackConfig selects when sample data replaces API results
type FallbackConfig struct {
	Mode string `mapstructure:"mode"` // off, on_failure, always
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

var fallbackModes = map[string]bool{"off": true, "on_failure": true, "always": true}

// Load loads configuration from an optional config.yaml with environment
// variable overrides (COMMERCE_BASE_URL, SERVER_PORT, ...). Extra search
// paths are tried before the working directory.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Commerce.BaseURL == "" {
		return fmt.Errorf("commerce.base_url must be set")
	}
	if !fallbackModes[c.Fallback.Mode] {
		return fmt.Errorf("fallback.mode %q is not one of off, on_failure, always", c.Fallback.Mode)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.session_ttl", 1800)

	v.SetDefault("commerce.base_url", "http://localhost:9000")
	v.SetDefault("commerce.publishable_key", "")
	v.SetDefault("commerce.timeout", 10)
	v.SetDefault("commerce.max_requests_per_second", 50)
	v.SetDefault("commerce.page_limit", 100)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("cache.list_ttl", 3600)
	v.SetDefault("cache.lookup_ttl", 60)

	v.SetDefault("fallback.mode", "off")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

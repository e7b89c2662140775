package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/trendchart/storage"
)

// EnvPrefix prefixes every environment override, e.g. TRENDCHART_MARKET_SYMBOL.
const EnvPrefix = "TRENDCHART_"

// Config represents the complete chart configuration
type Config struct {
	Market  MarketConfig  `json:"market" yaml:"market" envPrefix:"MARKET_"`
	History HistoryConfig `json:"history" yaml:"history" envPrefix:"HISTORY_"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" envPrefix:"FEED_"`
	Storage StorageConfig `json:"storage" yaml:"storage" envPrefix:"STORAGE_"`
	Log     LogConfig     `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// MarketConfig names the one instrument the chart shows
type MarketConfig struct {
	Symbol string `json:"symbol" yaml:"symbol" env:"SYMBOL"`
}

// HistoryConfig contains the initial series request
type HistoryConfig struct {
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" env:"BASE_URL"`
	Interval string `json:"interval" yaml:"interval" env:"INTERVAL"`
	Limit    int    `json:"limit" yaml:"limit" env:"LIMIT"`
	Timeout  string `json:"timeout" yaml:"timeout" env:"TIMEOUT"` // e.g., "10s"
}

// FeedConfig contains live stream parameters
type FeedConfig struct {
	URL            string `json:"url,omitempty" yaml:"url,omitempty" env:"URL"`
	Interval       string `json:"interval" yaml:"interval" env:"INTERVAL"`
	ReconnectDelay string `json:"reconnect_delay" yaml:"reconnect_delay" env:"RECONNECT_DELAY"`
}

// StorageConfig selects where trendlines persist
type StorageConfig struct {
	Type  string      `json:"type" yaml:"type" env:"TYPE"` // "memory", "file", "sqlite" or "redis"
	Path  string      `json:"path,omitempty" yaml:"path,omitempty" env:"PATH"`
	Key   string      `json:"key" yaml:"key" env:"KEY"`
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty" envPrefix:"REDIS_"`
}

type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty" env:"ADDR"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" env:"PASSWORD"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty" env:"DB"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"PREFIX"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"LEVEL"`
	Format string `json:"format" yaml:"format" env:"FORMAT"` // "text", "json" or "prefixed"
}

// ParseReconnectDelay converts the delay string to time.Duration
func (f FeedConfig) ParseReconnectDelay() (time.Duration, error) {
	if f.ReconnectDelay == "" {
		return 0, nil
	}
	return time.ParseDuration(f.ReconnectDelay)
}

// ParseTimeout converts the timeout string to time.Duration
func (h HistoryConfig) ParseTimeout() (time.Duration, error) {
	if h.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(h.Timeout)
}

// StreamURL is the configured URL or the Binance kline stream for symbol.
func (c *Config) StreamURL() string {
	if c.Feed.URL != "" {
		return c.Feed.URL
	}
	return fmt.Sprintf("wss://stream.binance.com:9443/ws/%s@kline_%s",
		strings.ToLower(c.Market.Symbol), c.Feed.Interval)
}

// StorageOptions maps the storage section onto storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Type: c.Storage.Type,
		Path: c.Storage.Path,
		Redis: storage.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
		},
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// readFile parses path over the defaults without validating.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// if one is given, then environment overrides. A .env file in the working
// directory is read first when present. Validation runs once, after the
// environment is applied.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TRENDCHART_* variables. Unset variables
// leave the field alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if c.History.Interval == "" {
		return fmt.Errorf("history.interval is required")
	}
	// Binance caps a klines request at 1000 bars
	if c.History.Limit <= 0 || c.History.Limit > 1000 {
		return fmt.Errorf("history.limit must be between 1 and 1000")
	}
	if _, err := c.History.ParseTimeout(); err != nil {
		return fmt.Errorf("history.timeout: %w", err)
	}
	if c.Feed.URL == "" && c.Feed.Interval == "" {
		return fmt.Errorf("feed.interval is required when feed.url is empty")
	}
	d, err := c.Feed.ParseReconnectDelay()
	if err != nil {
		return fmt.Errorf("feed.reconnect_delay: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("feed.reconnect_delay must not be negative")
	}

	switch c.Storage.Type {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path required for %s type", c.Storage.Type)
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr required for redis type")
		}
	default:
		return fmt.Errorf("storage.type must be 'memory', 'file', 'sqlite' or 'redis'")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json", "prefixed":
	default:
		return fmt.Errorf("log.format must be 'text', 'json' or 'prefixed'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			Symbol: "BTCUSDT",
		},
		History: HistoryConfig{
			Interval: "1d",
			Limit:    365,
			Timeout:  "10s",
		},
		Feed: FeedConfig{
			Interval:       "1m",
			ReconnectDelay: "5s",
		},
		Storage: StorageConfig{
			Type: "file",
			Path: "./trendlines.json",
			Key:  "tradingChartTrendlines",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "prefixed",
		},
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "BTCUSDT", cfg.Market.Symbol)
	assert.Equal(t, "1d", cfg.History.Interval)
	assert.Equal(t, 365, cfg.History.Limit)
	assert.Equal(t, "tradingChartTrendlines", cfg.Storage.Key)
	assert.Equal(t, "wss://stream.binance.com:9443/ws/btcusdt@kline_1m", cfg.StreamURL())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing symbol",
			mutate:  func(c *Config) { c.Market.Symbol = "" },
			wantErr: true,
			errMsg:  "market.symbol is required",
		},
		{
			name:    "limit too large",
			mutate:  func(c *Config) { c.History.Limit = 5000 },
			wantErr: true,
			errMsg:  "history.limit must be between 1 and 1000",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.History.Timeout = "soon" },
			wantErr: true,
			errMsg:  "history.timeout",
		},
		{
			name:    "bad reconnect delay",
			mutate:  func(c *Config) { c.Feed.ReconnectDelay = "5 seconds" },
			wantErr: true,
			errMsg:  "feed.reconnect_delay",
		},
		{
			name:    "negative reconnect delay",
			mutate:  func(c *Config) { c.Feed.ReconnectDelay = "-1s" },
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "no stream",
			mutate:  func(c *Config) { c.Feed.Interval = "" },
			wantErr: true,
			errMsg:  "feed.interval is required",
		},
		{
			name:   "explicit stream url",
			mutate: func(c *Config) { c.Feed.Interval = ""; c.Feed.URL = "ws://localhost:9000/ws" },
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Storage.Type = "postgres" },
			wantErr: true,
			errMsg:  "storage.type must be",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Storage.Type = "sqlite"; c.Storage.Path = "" },
			wantErr: true,
			errMsg:  "storage.path required for sqlite type",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Storage.Type = "redis" },
			wantErr: true,
			errMsg:  "storage.redis.addr required",
		},
		{
			name:   "memory storage",
			mutate: func(c *Config) { c.Storage.Type = "memory"; c.Storage.Path = "" },
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log.format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Market.Symbol = "ETHUSDT"
			cfg.Storage.Type = "redis"
			cfg.Storage.Redis.Addr = "localhost:6379"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			// Save
			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			// Verify file exists
			_, err = os.Stat(path)
			require.NoError(t, err)

			// Load
			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  symbol: SOLUSDT\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Market.Symbol)
	assert.Equal(t, 365, cfg.History.Limit)
	assert.Equal(t, "wss://stream.binance.com:9443/ws/solusdt@kline_1m", cfg.StreamURL())
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  limit: 0\n"), 0644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := Default()
	cfg.Market.Symbol = "ETHUSDT"
	require.NoError(t, cfg.SaveToFile(path))

	t.Setenv("TRENDCHART_MARKET_SYMBOL", "BNBUSDT")
	t.Setenv("TRENDCHART_HISTORY_LIMIT", "100")
	t.Setenv("TRENDCHART_STORAGE_TYPE", "redis")
	t.Setenv("TRENDCHART_STORAGE_REDIS_ADDR", "redis:6379")
	t.Setenv("TRENDCHART_STORAGE_REDIS_DB", "2")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BNBUSDT", loaded.Market.Symbol)
	assert.Equal(t, 100, loaded.History.Limit)
	assert.Equal(t, "redis", loaded.Storage.Type)
	assert.Equal(t, "redis:6379", loaded.Storage.Redis.Addr)
	assert.Equal(t, 2, loaded.Storage.Redis.DB)
	// untouched by the environment
	assert.Equal(t, "1d", loaded.History.Interval)
}

func TestLoadFileCompletedByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  type: redis\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err, "file alone lacks storage.redis.addr")

	t.Setenv("TRENDCHART_STORAGE_REDIS_ADDR", "localhost:6379")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)

	t.Setenv("TRENDCHART_STORAGE_REDIS_ADDR", "")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TRENDCHART_FEED_RECONNECT_DELAY", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	d, err := cfg.Feed.ParseReconnectDelay()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("TRENDCHART_HISTORY_LIMIT", "many")
	_, err := Load("")
	assert.Error(t, err)
}

func TestStorageOptions(t *testing.T) {
	cfg := Default()
	cfg.Storage.Type = "redis"
	cfg.Storage.Redis = RedisConfig{Addr: "localhost:6379", DB: 1, Prefix: "tc:"}

	opts := cfg.StorageOptions()
	assert.Equal(t, "redis", opts.Type)
	assert.Equal(t, "localhost:6379", opts.Redis.Addr)
	assert.Equal(t, 1, opts.Redis.DB)
	assert.Equal(t, "tc:", opts.Redis.Prefix)
}

func TestParseDurations(t *testing.T) {
	tests := []struct {
		delay    string
		expected string
		wantErr  bool
	}{
		{"5s", "5s", false},
		{"30m", "30m0s", false},
		{"", "0s", false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.delay, func(t *testing.T) {
			d, err := FeedConfig{ReconnectDelay: tt.delay}.ParseReconnectDelay()
			h, herr := HistoryConfig{Timeout: tt.delay}.ParseTimeout()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Error(t, herr)
			} else {
				assert.NoError(t, err)
				assert.NoError(t, herr)
				assert.Equal(t, tt.expected, d.String())
				assert.Equal(t, d, h)
			}
		})
	}
}

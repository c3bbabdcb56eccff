// Package config defines all configuration for the arbitrage scanner.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// sensitive fields overridable via ARB_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Kalshi     KalshiConfig     `mapstructure:"kalshi"`
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Realtime   RealtimeConfig   `mapstructure:"realtime"`
	API        APIConfig        `mapstructure:"api"`
	MatchCache MatchCacheConfig `mapstructure:"match_cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PolymarketConfig holds Polymarket API endpoints. The Gamma API serves the
// event catalog, the CLOB API serves per-token order books, and the market
// WebSocket streams book updates. All three are unauthenticated reads.
type PolymarketConfig struct {
	GammaBaseURL string `mapstructure:"gamma_base_url"`
	CLOBBaseURL  string `mapstructure:"clob_base_url"`
	WSURL        string `mapstructure:"ws_url"`
}

// KalshiConfig holds Kalshi endpoints and streaming credentials.
// APIKeyID comes from KALSHI_API_ID; PrivateKeyPath points at the RSA key
// file used to sign WebSocket auth headers (default: ./kalshi-api-rsa).
// REST catalog and order-book reads need no credentials.
type KalshiConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	WSURL          string `mapstructure:"ws_url"`
	APIKeyID       string `mapstructure:"api_key_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

// ScannerConfig tunes the batch scan pipeline.
//
//   - CacheTTL: how long a completed scan is served from cache.
//   - TopLiquidity: how many top-ranked opportunities get a liquidity analysis.
//   - Days: how many consecutive days of dynamic catalog entries to generate.
//   - MinSpreadPct: simple-spread opportunities below this are dropped.
//   - MinProfitPct: displayed profitability floor for liquidity status labels.
//   - PolyFeePct / KalshiFeePct: estimated venue fees, displayed in the DTO
//     (not applied to the arbitrage math unless passed to the analyzer).
//   - KalshiConcurrency: Kalshi rate-limits by concurrent connections; event
//     and book fetches are batched at this width. Polymarket fan-out is
//     unbounded.
//   - KalshiPageDelay: pause between Kalshi pagination calls.
type ScannerConfig struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	TopLiquidity      int           `mapstructure:"top_liquidity"`
	Days              int           `mapstructure:"days"`
	MinSpreadPct      float64       `mapstructure:"min_spread_pct"`
	MinProfitPct      float64       `mapstructure:"min_profit_pct"`
	PolyFeePct        float64       `mapstructure:"poly_fee_pct"`
	KalshiFeePct      float64       `mapstructure:"kalshi_fee_pct"`
	KalshiConcurrency int           `mapstructure:"kalshi_concurrency"`
	KalshiPageDelay   time.Duration `mapstructure:"kalshi_page_delay"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
}

// RealtimeConfig tunes the streaming engine.
//
//   - Debounce: quiet window before a pair's opportunity is recomputed.
//   - ReconnectDelay: fixed wait before re-dialing a dropped stream.
//   - SpreadDeltaPct: re-emit an active opportunity only when its spread
//     moved by more than this many percentage points.
type RealtimeConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	SpreadDeltaPct float64       `mapstructure:"spread_delta_pct"`
}

// APIConfig controls the HTTP adapter that serves scan results.
type APIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// MatchCacheConfig sets where confirmed/rejected pairings are persisted.
type MatchCacheConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides. A missing file
// is not an error; defaults cover every field so the scanner can run with
// zero configuration. Sensitive fields use env vars: KALSHI_API_ID.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if id := os.Getenv("KALSHI_API_ID"); id != "" {
		cfg.Kalshi.APIKeyID = id
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("polymarket.gamma_base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.clob_base_url", "https://clob.polymarket.com")
	v.SetDefault("polymarket.ws_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")

	v.SetDefault("kalshi.base_url", "https://api.elections.kalshi.com/trade-api/v2")
	v.SetDefault("kalshi.ws_url", "wss://api.elections.kalshi.com/trade-api/ws/v2")
	v.SetDefault("kalshi.private_key_path", "kalshi-api-rsa")

	v.SetDefault("scanner.cache_ttl", 60*time.Second)
	v.SetDefault("scanner.top_liquidity", 70)
	v.SetDefault("scanner.days", 3)
	v.SetDefault("scanner.min_spread_pct", 2.0)
	v.SetDefault("scanner.min_profit_pct", 1.0)
	v.SetDefault("scanner.poly_fee_pct", 2.0)
	v.SetDefault("scanner.kalshi_fee_pct", 1.0)
	v.SetDefault("scanner.kalshi_concurrency", 4)
	v.SetDefault("scanner.kalshi_page_delay", 50*time.Millisecond)
	v.SetDefault("scanner.http_timeout", 30*time.Second)

	v.SetDefault("realtime.debounce", 100*time.Millisecond)
	v.SetDefault("realtime.reconnect_delay", 5*time.Second)
	v.SetDefault("realtime.spread_delta_pct", 0.1)

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.port", 8080)

	v.SetDefault("match_cache.path", "data/match-cache.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks required fields and value ranges. Streaming credentials
// are checked separately (ValidateStreaming) because the batch scanner does
// not need them.
func (c *Config) Validate() error {
	if c.Polymarket.GammaBaseURL == "" {
		return fmt.Errorf("polymarket.gamma_base_url is required")
	}
	if c.Polymarket.CLOBBaseURL == "" {
		return fmt.Errorf("polymarket.clob_base_url is required")
	}
	if c.Kalshi.BaseURL == "" {
		return fmt.Errorf("kalshi.base_url is required")
	}
	if c.Scanner.CacheTTL <= 0 {
		return fmt.Errorf("scanner.cache_ttl must be > 0")
	}
	if c.Scanner.TopLiquidity <= 0 {
		return fmt.Errorf("scanner.top_liquidity must be > 0")
	}
	if c.Scanner.Days <= 0 {
		return fmt.Errorf("scanner.days must be > 0")
	}
	if c.Scanner.KalshiConcurrency <= 0 {
		return fmt.Errorf("scanner.kalshi_concurrency must be > 0")
	}
	return nil
}

// ValidateStreaming checks the credentials the realtime engine needs to
// authenticate the Kalshi WebSocket.
func (c *Config) ValidateStreaming() error {
	if c.Kalshi.APIKeyID == "" {
		return fmt.Errorf("kalshi.api_key_id is required (set KALSHI_API_ID)")
	}
	if c.Kalshi.PrivateKeyPath == "" {
		return fmt.Errorf("kalshi.private_key_path is required")
	}
	if _, err := os.Stat(c.Kalshi.PrivateKeyPath); err != nil {
		return fmt.Errorf("kalshi private key: %w", err)
	}
	return nil
}

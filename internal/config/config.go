package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	DexScreener DexScreenerConfig `mapstructure:"dexscreener"`
	Scanner     ScannerConfig     `mapstructure:"scanner"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Dedup       DedupConfig       `mapstructure:"dedup"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// DexScreenerConfig holds feed API configuration
type DexScreenerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Query          string        `mapstructure:"query"`
	ChainID        string        `mapstructure:"chain_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ScannerConfig holds scan loop configuration
type ScannerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MinScore int           `mapstructure:"min_score"`
}

// FilterConfig holds eligibility thresholds; a zero value disables the
// corresponding constraint
type FilterConfig struct {
	MinLiquidityUSD  float64  `mapstructure:"min_liquidity_usd"`
	MinMarketCapUSD  float64  `mapstructure:"min_market_cap_usd"`
	MaxMarketCapUSD  float64  `mapstructure:"max_market_cap_usd"`
	MinAgeMinutes    int      `mapstructure:"min_age_minutes"`
	MaxAgeMinutes    int      `mapstructure:"max_age_minutes"`
	MinTx24hBuys     int      `mapstructure:"min_tx_24h_buys"`
	MinTx24hSells    int      `mapstructure:"min_tx_24h_sells"`
	MinTx5mTotal     int      `mapstructure:"min_tx_5m_total"`
	KeywordAllowlist []string `mapstructure:"keyword_allowlist"`
}

// DedupConfig holds seen-set configuration
type DedupConfig struct {
	Backend       string        `mapstructure:"backend"` // "memory" or "redis"
	TTL           time.Duration `mapstructure:"ttl"`     // 0 = unbounded (memory backend)
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds alert history configuration
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("ALPHASCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// DexScreener defaults
	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com")
	v.SetDefault("dexscreener.query", "solana")
	v.SetDefault("dexscreener.chain_id", "solana")
	v.SetDefault("dexscreener.timeout", "8s")
	v.SetDefault("dexscreener.max_retries", 3)
	v.SetDefault("dexscreener.retry_delay_base", "1s")

	// Scanner defaults
	v.SetDefault("scanner.interval", "20s")
	v.SetDefault("scanner.min_score", 60)

	// Filter defaults
	v.SetDefault("filter.max_age_minutes", 72*60)
	v.SetDefault("filter.min_tx_24h_buys", 50)
	v.SetDefault("filter.min_tx_24h_sells", 30)
	v.SetDefault("filter.min_tx_5m_total", 10)

	// Dedup defaults
	v.SetDefault("dedup.backend", "memory")
	v.SetDefault("dedup.ttl", "0s") // unbounded for the memory backend
	v.SetDefault("dedup.redis_addr", "")
	v.SetDefault("dedup.redis_password", "")
	v.SetDefault("dedup.redis_db", 0)

	// Telegram defaults. The credential keys need an explicit default even
	// though it is empty: AutomaticEnv only surfaces ALPHASCAN_* values
	// through Unmarshal for keys viper already knows about.
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/alphascan.db")
	v.SetDefault("storage.max_alerts", 5000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid. A failure here
// is fatal at startup: the scan loop is never entered with a bad config.
func (c *Config) Validate() error {
	if c.DexScreener.BaseURL == "" {
		return fmt.Errorf("dexscreener.base_url is required")
	}
	if c.DexScreener.Query == "" {
		return fmt.Errorf("dexscreener.query is required")
	}
	if c.DexScreener.Timeout < time.Second {
		return fmt.Errorf("dexscreener.timeout must be at least 1 second")
	}
	if c.DexScreener.MaxRetries < 1 {
		return fmt.Errorf("dexscreener.max_retries must be at least 1")
	}

	if c.Scanner.Interval < 5*time.Second {
		return fmt.Errorf("scanner.interval must be at least 5 seconds")
	}
	if c.Scanner.MinScore < 0 || c.Scanner.MinScore > 100 {
		return fmt.Errorf("scanner.min_score must be between 0 and 100")
	}

	if c.Filter.MinLiquidityUSD < 0 || c.Filter.MinMarketCapUSD < 0 || c.Filter.MaxMarketCapUSD < 0 {
		return fmt.Errorf("filter thresholds must not be negative")
	}
	if c.Filter.MaxMarketCapUSD > 0 && c.Filter.MinMarketCapUSD > c.Filter.MaxMarketCapUSD {
		return fmt.Errorf("filter.min_market_cap_usd must not exceed filter.max_market_cap_usd")
	}
	if c.Filter.MaxAgeMinutes > 0 && c.Filter.MinAgeMinutes > c.Filter.MaxAgeMinutes {
		return fmt.Errorf("filter.min_age_minutes must not exceed filter.max_age_minutes")
	}

	switch c.Dedup.Backend {
	case "memory":
	case "redis":
		if c.Dedup.RedisAddr == "" {
			return fmt.Errorf("dedup.redis_addr is required when backend is redis")
		}
	default:
		return fmt.Errorf("dedup.backend must be one of: memory, redis")
	}
	if c.Dedup.TTL < 0 {
		return fmt.Errorf("dedup.ttl must not be negative")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.MaxAlerts < 1 {
		return fmt.Errorf("storage.max_alerts must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

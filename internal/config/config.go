// Package config handles configuration loading for stockdash.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Vendors  VendorsConfig  `mapstructure:"vendors"  yaml:"vendors"`
	HTTP     HTTPConfig     `mapstructure:"http"     yaml:"http"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Access   AccessConfig   `mapstructure:"access"   yaml:"access"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// VendorConfig holds one vendor's credential and endpoint.
type VendorConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// CongressConfig holds the two disclosure feed locations.
type CongressConfig struct {
	HouseURL  string `mapstructure:"house_url"  yaml:"house_url"`
	SenateURL string `mapstructure:"senate_url" yaml:"senate_url"`
}

// VendorsConfig holds every upstream source.
type VendorsConfig struct {
	FMP          VendorConfig   `mapstructure:"fmp"          yaml:"fmp"`
	Finnhub      VendorConfig   `mapstructure:"finnhub"      yaml:"finnhub"`
	AlphaVantage VendorConfig   `mapstructure:"alphavantage" yaml:"alphavantage"`
	Yahoo        VendorConfig   `mapstructure:"yahoo"        yaml:"yahoo"`
	Reference    VendorConfig   `mapstructure:"reference"    yaml:"reference"` // BaseURL is the CSV location
	Congress     CongressConfig `mapstructure:"congress"     yaml:"congress"`
	GoogleNews   VendorConfig   `mapstructure:"googlenews"   yaml:"googlenews"`
}

// HTTPConfig holds outbound request settings shared by all vendors.
type HTTPConfig struct {
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
}

// Timeout returns the per-call timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSec) * time.Second
}

// CacheConfig holds vendor response cache settings.
type CacheConfig struct {
	TTLSec     int `mapstructure:"ttl_sec"     yaml:"ttl_sec"`     // 0 keeps entries until evicted
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"` // 0 means unbounded
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// PipelineConfig holds aggregation settings.
type PipelineConfig struct {
	Concurrency        int      `mapstructure:"concurrency"          yaml:"concurrency"`
	DropThreshold      float64  `mapstructure:"drop_threshold"       yaml:"drop_threshold"` // fraction, 0.10 = 10%
	DropSector         string   `mapstructure:"drop_sector"          yaml:"drop_sector"`
	DropIndustry       string   `mapstructure:"drop_industry"        yaml:"drop_industry"`
	RelevanceThreshold float64  `mapstructure:"relevance_threshold"  yaml:"relevance_threshold"`
	NewsLimit          int      `mapstructure:"news_limit"           yaml:"news_limit"`
	NewsTopics         []string `mapstructure:"news_topics"          yaml:"news_topics"`
	NewsSort           string   `mapstructure:"news_sort"            yaml:"news_sort"`
	EarningsLimit      int      `mapstructure:"earnings_limit"       yaml:"earnings_limit"`
	TradesLookbackDays int      `mapstructure:"trades_lookback_days" yaml:"trades_lookback_days"`
	DefaultRange       string   `mapstructure:"default_range"        yaml:"default_range"`
	HeadlineLimit      int      `mapstructure:"headline_limit"       yaml:"headline_limit"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host              string   `mapstructure:"host"                yaml:"host"`
	Port              int      `mapstructure:"port"                yaml:"port"`
	CORSOrigins       []string `mapstructure:"cors_origins"        yaml:"cors_origins"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	StreamIntervalSec int      `mapstructure:"stream_interval_sec" yaml:"stream_interval_sec"` // drop stream refresh period
}

// Addr returns the listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// AccessConfig holds the passphrase gate settings.
type AccessConfig struct {
	Enabled          bool     `mapstructure:"enabled"           yaml:"enabled"`
	PassphraseHashes []string `mapstructure:"passphrase_hashes" yaml:"passphrase_hashes"` // bcrypt
	Param            string   `mapstructure:"param"             yaml:"param"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Plain environment variables honoured for vendor keys, in addition to the
// STOCKDASH_VENDORS_<NAME>_API_KEY form.
const (
	EnvFMPKey          = "FMP_API_KEY"
	EnvFinnhubKey      = "FINNHUB_API_KEY"
	EnvAlphaVantageKey = "ALPHAVANTAGE_API_KEY"
)

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockdash/config.yaml (home directory)
//  3. /etc/stockdash/config.yaml (system)
//
// A .env file in the working directory is loaded first when present.
// Environment variables override config file values.
// Format: STOCKDASH_<SECTION>_<KEY>, e.g., STOCKDASH_HTTP_TIMEOUT_SEC
func Load() (*Config, error) {
	loadDotEnv(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockdash"))
	v.AddConfigPath("/etc/stockdash")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

// Default returns the built-in defaults without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STOCKDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs without overwriting variables that are
// already set. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Vendor endpoints
	v.SetDefault("vendors.fmp.base_url", "https://financialmodelingprep.com/api")
	v.SetDefault("vendors.finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("vendors.alphavantage.base_url", "https://www.alphavantage.co/query")
	v.SetDefault("vendors.yahoo.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("vendors.reference.base_url",
		"https://raw.githubusercontent.com/xcollantes/stock_analysis_dataset/main/us_tickers.csv")
	v.SetDefault("vendors.congress.house_url",
		"https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json")
	v.SetDefault("vendors.congress.senate_url",
		"https://senate-stock-watcher-data.s3-us-west-2.amazonaws.com/aggregate/all_ticker_transactions.json")
	v.SetDefault("vendors.googlenews.base_url", "https://news.google.com/rss/search")

	// Outbound HTTP
	v.SetDefault("http.timeout_sec", 15)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (compatible; stockdash/1.0)")

	// Cache
	v.SetDefault("cache.ttl_sec", 3600)
	v.SetDefault("cache.max_entries", 1024)

	// Pipeline
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.drop_threshold", 0.10)
	v.SetDefault("pipeline.drop_sector", "")
	v.SetDefault("pipeline.drop_industry", "")
	v.SetDefault("pipeline.relevance_threshold", 0.30)
	v.SetDefault("pipeline.news_limit", 50)
	v.SetDefault("pipeline.news_topics", []string{
		"ipo", "blockchain", "finance", "financial_markets",
		"mergers_and_acquisitions", "economy_monetary", "technology",
	})
	v.SetDefault("pipeline.news_sort", "LATEST")
	v.SetDefault("pipeline.earnings_limit", 20)
	v.SetDefault("pipeline.trades_lookback_days", 600)
	v.SetDefault("pipeline.default_range", "6 months")
	v.SetDefault("pipeline.headline_limit", 10)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout_sec", 60)
	v.SetDefault("api.stream_interval_sec", 60)

	// Access gate
	v.SetDefault("access.enabled", false)
	v.SetDefault("access.param", "p")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads vendor keys from their conventional
// environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvFMPKey); key != "" {
		cfg.Vendors.FMP.APIKey = key
	}
	if key := os.Getenv(EnvFinnhubKey); key != "" {
		cfg.Vendors.Finnhub.APIKey = key
	}
	if key := os.Getenv(EnvAlphaVantageKey); key != "" {
		cfg.Vendors.AlphaVantage.APIKey = key
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout_sec must be positive, got %d", c.HTTP.TimeoutSec))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("http.max_retries must not be negative, got %d", c.HTTP.MaxRetries))
	}
	if c.Cache.TTLSec < 0 || c.Cache.MaxEntries < 0 {
		errs = append(errs, errors.New("cache settings must not be negative"))
	}
	if c.Pipeline.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency))
	}
	if c.Pipeline.RelevanceThreshold < 0 || c.Pipeline.RelevanceThreshold > 1 {
		errs = append(errs, fmt.Errorf("pipeline.relevance_threshold must be within [0,1], got %g", c.Pipeline.RelevanceThreshold))
	}
	if c.Pipeline.DropThreshold < 0 {
		errs = append(errs, fmt.Errorf("pipeline.drop_threshold must not be negative, got %g", c.Pipeline.DropThreshold))
	}
	if c.Access.Enabled && len(c.Access.PassphraseHashes) == 0 {
		errs = append(errs, errors.New("access.enabled requires at least one passphrase hash"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

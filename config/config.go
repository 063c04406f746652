package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Browser   BrowserConfig   `toml:"browser"`
	Scraper   ScraperConfig   `toml:"scraper"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `toml:"host"` // default: "0.0.0.0"
	Port int    `toml:"port"` // default: 3000
	Mode string `toml:"mode"` // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Chromium instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `toml:"headless"` // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `toml:"no_sandbox"` // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `toml:"bin"`

	// Proxy is the proxy URL for all browser traffic.
	Proxy string `toml:"proxy"`

	// BlockAds blocks well-known ad and tracking domains.
	BlockAds bool `toml:"block_ads"` // default: true

	// BlockedURLs are extra Network.setBlockedURLs patterns.
	// default: fonts and video
	BlockedURLs []string `toml:"blocked_urls"`

	// MaxTabs caps concurrently open tabs; 0 means no cap.
	MaxTabs int `toml:"max_tabs"` // default: 10
}

// ScraperConfig controls extraction behavior.
type ScraperConfig struct {
	// BaseURL is the site root; locale prefixes are appended to it.
	BaseURL string `toml:"base_url"` // default: "https://www.imdb.com"

	// DefaultTimeout bounds a whole extraction, retries included.
	DefaultTimeout time.Duration `toml:"timeout"` // default: 120s

	// NavigationTimeout bounds a single navigation or tab switch.
	NavigationTimeout time.Duration `toml:"navigation_timeout"` // default: 30s

	// SeasonTabTimeout is how long to wait for the season tabs of an
	// episodes listing.
	SeasonTabTimeout time.Duration `toml:"season_tab_timeout"` // default: 3s

	// SearchWaitTimeout is how long to wait for search results to render.
	SearchWaitTimeout time.Duration `toml:"search_wait_timeout"` // default: 5s

	// Retries is how many times an extraction is re-run after the browser
	// was restarted under it.
	Retries int `toml:"retries"` // default: 1
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication. It has no effect when APIKeys
	// is empty.
	Enabled bool `toml:"enabled"` // default: true

	APIKeys []string `toml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `toml:"rps"` // default: 2

	// Burst is the maximum burst size per API key.
	Burst int `toml:"burst"` // default: 5
}

// CacheConfig controls the API response cache.
type CacheConfig struct {
	// TTL is how long a response stays cached; 0 disables the cache.
	TTL time.Duration `toml:"ttl"` // default: 0

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int `toml:"max_entries"` // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"`  // default: "info"
	Format string `toml:"format"` // "json" or "text"; default: "json"
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"` // default: true
	Port    int  `toml:"port"`    // default: 9090
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 3000, Mode: "release"},
		Browser: BrowserConfig{
			Headless:    true,
			BlockAds:    true,
			MaxTabs:     10,
			BlockedURLs: []string{"*.woff", "*.woff2", "*.ttf", "*.mp4", "*.m3u8"},
		},
		Scraper: ScraperConfig{
			BaseURL:           "https://www.imdb.com",
			DefaultTimeout:    120 * time.Second,
			NavigationTimeout: 30 * time.Second,
			SeasonTabTimeout:  3 * time.Second,
			SearchWaitTimeout: 5 * time.Second,
			Retries:           1,
		},
		Auth:      AuthConfig{Enabled: true},
		RateLimit: RateLimitConfig{RequestsPerSecond: 2, Burst: 5},
		Cache:     CacheConfig{MaxEntries: 1000},
		Log:       LogConfig{Level: "info", Format: "json"},
		Metrics:   MetricsConfig{Enabled: true, Port: 9090},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// IMDBAPI_CONFIG when set, then IMDBAPI_* environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("IMDBAPI_CONFIG"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = envOr("IMDBAPI_HOST", cfg.Server.Host)
	cfg.Server.Port = envIntOr("IMDBAPI_PORT", cfg.Server.Port)
	cfg.Server.Mode = envOr("IMDBAPI_MODE", cfg.Server.Mode)

	cfg.Browser.Headless = envBoolOr("IMDBAPI_HEADLESS", cfg.Browser.Headless)
	cfg.Browser.NoSandbox = envBoolOr("IMDBAPI_NO_SANDBOX", cfg.Browser.NoSandbox)
	cfg.Browser.BrowserBin = envOr("IMDBAPI_BROWSER_BIN", cfg.Browser.BrowserBin)
	cfg.Browser.Proxy = envOr("IMDBAPI_PROXY", cfg.Browser.Proxy)
	cfg.Browser.BlockAds = envBoolOr("IMDBAPI_BLOCK_ADS", cfg.Browser.BlockAds)
	cfg.Browser.BlockedURLs = envSliceOr("IMDBAPI_BLOCKED_URLS", cfg.Browser.BlockedURLs)
	cfg.Browser.MaxTabs = envIntOr("IMDBAPI_MAX_TABS", cfg.Browser.MaxTabs)

	cfg.Scraper.BaseURL = strings.TrimRight(envOr("IMDBAPI_BASE_URL", cfg.Scraper.BaseURL), "/")
	cfg.Scraper.DefaultTimeout = envDurationOr("IMDBAPI_TIMEOUT", cfg.Scraper.DefaultTimeout)
	cfg.Scraper.NavigationTimeout = envDurationOr("IMDBAPI_NAV_TIMEOUT", cfg.Scraper.NavigationTimeout)
	cfg.Scraper.SeasonTabTimeout = envDurationOr("IMDBAPI_SEASON_TAB_TIMEOUT", cfg.Scraper.SeasonTabTimeout)
	cfg.Scraper.SearchWaitTimeout = envDurationOr("IMDBAPI_SEARCH_WAIT_TIMEOUT", cfg.Scraper.SearchWaitTimeout)
	cfg.Scraper.Retries = envIntOr("IMDBAPI_RETRIES", cfg.Scraper.Retries)

	cfg.Auth.Enabled = envBoolOr("IMDBAPI_AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.APIKeys = envSliceOr("IMDBAPI_API_KEYS", cfg.Auth.APIKeys)

	cfg.RateLimit.RequestsPerSecond = envFloatOr("IMDBAPI_RATE_RPS", cfg.RateLimit.RequestsPerSecond)
	cfg.RateLimit.Burst = envIntOr("IMDBAPI_RATE_BURST", cfg.RateLimit.Burst)

	cfg.Cache.TTL = envDurationOr("IMDBAPI_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.MaxEntries = envIntOr("IMDBAPI_CACHE_MAX_ENTRIES", cfg.Cache.MaxEntries)

	cfg.Log.Level = envOr("IMDBAPI_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("IMDBAPI_LOG_FORMAT", cfg.Log.Format)

	cfg.Metrics.Enabled = envBoolOr("IMDBAPI_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Port = envIntOr("IMDBAPI_METRICS_PORT", cfg.Metrics.Port)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("IMDBAPI_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://www.imdb.com", cfg.Scraper.BaseURL)
	assert.Equal(t, 1, cfg.Scraper.Retries)
	assert.Equal(t, 3*time.Second, cfg.Scraper.SeasonTabTimeout)
	assert.Equal(t, 5*time.Second, cfg.Scraper.SearchWaitTimeout)
	assert.Zero(t, cfg.Cache.TTL)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.BlockAds)
	assert.Equal(t, 10, cfg.Browser.MaxTabs)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IMDBAPI_CONFIG", "")
	t.Setenv("IMDBAPI_PORT", "8081")
	t.Setenv("IMDBAPI_API_KEYS", "a, b ,,c")
	t.Setenv("IMDBAPI_CACHE_TTL", "10m")
	t.Setenv("IMDBAPI_BASE_URL", "http://localhost:9999/")
	t.Setenv("IMDBAPI_HEADLESS", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Auth.APIKeys)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "http://localhost:9999", cfg.Scraper.BaseURL)
	assert.True(t, cfg.Browser.Headless, "invalid values keep the default")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imdbapi.toml")
	content := `
[server]
port = 4000
mode = "debug"

[scraper]
retries = 3
navigation_timeout = "45s"

[auth]
api_keys = ["file-key"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("IMDBAPI_CONFIG", path)
	t.Setenv("IMDBAPI_PORT", "4001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 3, cfg.Scraper.Retries)
	assert.Equal(t, 45*time.Second, cfg.Scraper.NavigationTimeout)
	assert.Equal(t, []string{"file-key"}, cfg.Auth.APIKeys)
	assert.Equal(t, "https://www.imdb.com", cfg.Scraper.BaseURL, "absent keys keep defaults")
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))
	t.Setenv("IMDBAPI_CONFIG", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrcrawler/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.flickr.com/services/rest/", cfg.Flickr.BaseURL)
	assert.Equal(t, 500, cfg.Flickr.PageSize)
	assert.Equal(t, 1, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, 1, cfg.Crawl.SearchConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Download.DownloadTimeout)
	assert.Equal(t, "./downloads", cfg.Output.BaseDirectory)
	assert.Equal(t, "token_bucket", cfg.RateLimit.Strategy)
	assert.True(t, cfg.Retry.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FLICKRCRAWLER_API_KEY", "env-key")
	t.Setenv("FLICKRCRAWLER_LIMIT", "250")
	t.Setenv("FLICKRCRAWLER_MIN_UPLOAD_DATE", "2020-01-31")
	t.Setenv("FLICKRCRAWLER_KEYWORDS", "cat, dog ,,owl")
	t.Setenv("FLICKRCRAWLER_OUTPUT_DIR", "/tmp/crawl")
	t.Setenv("FLICKRCRAWLER_CONCURRENT_DOWNLOADS", "8")
	t.Setenv("FLICKRCRAWLER_NOTIFICATIONS_ENABLED", "TRUE")
	t.Setenv("FLICKRCRAWLER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-key", cfg.Flickr.APIKey)
	assert.Equal(t, 250, cfg.Crawl.Limit)
	assert.Equal(t, "2020-01-31", cfg.Crawl.MinUploadDate)
	assert.Equal(t, []string{"cat", "dog", "owl"}, cfg.Crawl.Keywords)
	assert.Equal(t, "/tmp/crawl", cfg.Output.BaseDirectory)
	assert.Equal(t, 8, cfg.Download.ConcurrentDownloads)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("FLICKRCRAWLER_LIMIT", "lots")

	err := DefaultConfig().LoadFromEnv()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
	assert.Contains(t, err.Error(), "FLICKRCRAWLER_LIMIT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero limit", func(c *Config) { c.Crawl.Limit = 0 }, "limit must be positive"},
		{"negative limit", func(c *Config) { c.Crawl.Limit = -3 }, "limit must be positive"},
		{"zero workers", func(c *Config) { c.Download.ConcurrentDownloads = 0 }, "concurrent downloads must be positive"},
		{"bad date", func(c *Config) { c.Crawl.MinUploadDate = "31/01/2020" }, "YYYY-MM-DD"},
		{"page size too large", func(c *Config) { c.Flickr.PageSize = 501 }, "page size"},
		{"unknown strategy", func(c *Config) { c.RateLimit.Strategy = "leaky" }, "rate limit strategy"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
		})
	}
}

func TestValidateJoinsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Crawl.Limit = 0
	cfg.Download.ConcurrentDownloads = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit must be positive")
	assert.Contains(t, err.Error(), "concurrent downloads must be positive")
}

func TestParseDate(t *testing.T) {
	ts, err := ParseDate("2019-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1559347200), ts.Unix())

	epoch, err := ParseDate("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), epoch.Unix())

	_, err = ParseDate("yesterday")
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
}

func TestManifestPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.BaseDirectory = "out"
	assert.Equal(t, filepath.Join("out", "manifest.json"), cfg.ManifestPath())

	cfg.Output.ManifestFile = "/var/tmp/m.json"
	assert.Equal(t, "/var/tmp/m.json", cfg.ManifestPath())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"api-key":    "flag-key",
		"limit":      12,
		"keyword":    []string{"fox"},
		"output":     "/flag/output",
		"concurrent": 7,
		"timeout":    5 * time.Second,
		"log-level":  "error",
		"tui":        true,
	})

	assert.Equal(t, "flag-key", cfg.Flickr.APIKey)
	assert.Equal(t, 12, cfg.Crawl.Limit)
	assert.Equal(t, []string{"fox"}, cfg.Crawl.Keywords)
	assert.Equal(t, "/flag/output", cfg.Output.BaseDirectory)
	assert.Equal(t, 7, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, 5*time.Second, cfg.Download.DownloadTimeout)
	assert.Equal(t, 5*time.Second, cfg.Flickr.Timeout)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.TUI.Enabled)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Flickr.APIKey = "saved-key"
	cfg.Crawl.Keywords = []string{"cat", "dog"}
	cfg.Download.ConcurrentDownloads = 4
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "saved-key", loaded.Flickr.APIKey)
	assert.Equal(t, []string{"cat", "dog"}, loaded.Crawl.Keywords)
	assert.Equal(t, 4, loaded.Download.ConcurrentDownloads)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  limit: 40\ndownload:\n  concurrent_downloads: 2\n"), 0644))

	t.Setenv("FLICKRCRAWLER_CONCURRENT_DOWNLOADS", "3")

	cfg, err := Load(path, map[string]interface{}{"limit": 9})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Crawl.Limit)
	assert.Equal(t, 3, cfg.Download.ConcurrentDownloads)
}

func TestLoadFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  limit: -1\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
}

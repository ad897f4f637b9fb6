package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "flickrcrawler/pkg/errors"
)

// EnvPrefix is prepended to every environment variable the crawler reads.
const EnvPrefix = "FLICKRCRAWLER_"

// DateLayout is the accepted format of the minimum upload date.
const DateLayout = "2006-01-02"

// MaxPageSize is the largest per_page value the search API honours.
const MaxPageSize = 500

// Config holds all configuration options for a crawl
type Config struct {
	Flickr        FlickrConfig       `yaml:"flickr" json:"flickr"`
	Crawl         CrawlConfig        `yaml:"crawl" json:"crawl"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit" json:"rate_limit"`
	Retry         RetryConfig        `yaml:"retry" json:"retry"`
	Output        OutputConfig       `yaml:"output" json:"output"`
	Download      DownloadConfig     `yaml:"download" json:"download"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
	TUI           TUIConfig          `yaml:"tui" json:"tui"`
}

// FlickrConfig holds search API settings
type FlickrConfig struct {
	APIKey    string        `yaml:"api_key" json:"api_key"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	PageSize  int           `yaml:"page_size" json:"page_size"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// CrawlConfig describes what to crawl
type CrawlConfig struct {
	Limit             int      `yaml:"limit" json:"limit"`
	MinUploadDate     string   `yaml:"min_upload_date" json:"min_upload_date"`
	Keywords          []string `yaml:"keywords" json:"keywords"`
	KeywordsFile      string   `yaml:"keywords_file" json:"keywords_file"`
	SearchConcurrency int      `yaml:"search_concurrency" json:"search_concurrency"`
}

// RateLimitConfig holds rate limiting configuration for search calls
type RateLimitConfig struct {
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int    `yaml:"burst_size" json:"burst_size"`
	Strategy          string `yaml:"strategy" json:"strategy"`
}

// RetryConfig holds retry settings shared by search and download calls
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds output locations
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	ManifestFile  string `yaml:"manifest_file" json:"manifest_file"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// TUIConfig toggles the interactive dashboard
type TUIConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			BaseURL:   "https://api.flickr.com/services/rest/",
			PageSize:  MaxPageSize,
			Timeout:   30 * time.Second,
			UserAgent: "flickrcrawler/1.0",
		},
		Crawl: CrawlConfig{
			Limit:             100,
			SearchConcurrency: 1,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
			Strategy:          "token_bucket",
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		Output: OutputConfig{
			BaseDirectory: "./downloads",
			ManifestFile:  "manifest.json",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 1,
			DownloadTimeout:     30 * time.Second,
		},
		Notifications: NotificationConfig{
			Enabled:          false,
			OnComplete:       true,
			OnError:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ManifestPath resolves the manifest location. Relative paths live inside
// the output directory.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Output.ManifestFile) {
		return c.Output.ManifestFile
	}
	return filepath.Join(c.Output.BaseDirectory, c.Output.ManifestFile)
}

// MinUploadTime parses Crawl.MinUploadDate as a UTC calendar date. An empty
// date means no cutoff and yields the Unix epoch.
func (c *Config) MinUploadTime() (time.Time, error) {
	return ParseDate(c.Crawl.MinUploadDate)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.ErrorTypeInvalidInput, err, fmt.Sprintf("minimum upload date %q must be YYYY-MM-DD", s))
	}
	return t, nil
}

// LoadFromEnv loads configuration from FLICKRCRAWLER_* environment variables
func (c *Config) LoadFromEnv() error {
	var problems []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*dst = n
	}

	setString("API_KEY", &c.Flickr.APIKey)
	setString("BASE_URL", &c.Flickr.BaseURL)
	setInt("PAGE_SIZE", &c.Flickr.PageSize)

	setInt("LIMIT", &c.Crawl.Limit)
	setString("MIN_UPLOAD_DATE", &c.Crawl.MinUploadDate)
	setString("KEYWORDS_FILE", &c.Crawl.KeywordsFile)
	setInt("SEARCH_CONCURRENCY", &c.Crawl.SearchConcurrency)
	if kw := os.Getenv(EnvPrefix + "KEYWORDS"); kw != "" {
		c.Crawl.Keywords = splitList(kw)
	}

	setInt("REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)
	setString("OUTPUT_DIR", &c.Output.BaseDirectory)
	setString("MANIFEST_FILE", &c.Output.ManifestFile)
	setInt("CONCURRENT_DOWNLOADS", &c.Download.ConcurrentDownloads)

	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv(EnvPrefix + "TUI"); v != "" {
		c.TUI.Enabled = strings.EqualFold(v, "true")
	}

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)
	setString("LOG_FILE", &c.Logging.File)

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrorTypeInvalidInput, errors.Join(problems...), "invalid environment")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	for _, loc := range []string{
		".flickrcrawler.yaml",
		".flickrcrawler.yml",
		filepath.Join(home, ".config", "flickrcrawler", "config.yaml"),
		filepath.Join(home, ".config", "flickrcrawler", "config.yml"),
	} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "flickrcrawler", "config.yaml")
}

// Validate checks if the configuration is valid. The API key is not
// checked here since it may still come from the credential store.
func (c *Config) Validate() error {
	var problems []error

	if c.Flickr.BaseURL == "" {
		problems = append(problems, errors.New("flickr base URL is required"))
	}
	if c.Flickr.PageSize <= 0 || c.Flickr.PageSize > MaxPageSize {
		problems = append(problems, fmt.Errorf("page size must be between 1 and %d", MaxPageSize))
	}
	if c.Flickr.Timeout <= 0 {
		problems = append(problems, errors.New("flickr timeout must be positive"))
	}

	if c.Crawl.Limit <= 0 {
		problems = append(problems, errors.New("limit must be positive"))
	}
	if _, err := c.MinUploadTime(); err != nil {
		problems = append(problems, err)
	}
	if c.Crawl.SearchConcurrency <= 0 {
		problems = append(problems, errors.New("search concurrency must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		problems = append(problems, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		problems = append(problems, errors.New("burst size must be positive"))
	}
	switch c.RateLimit.Strategy {
	case "token_bucket", "sliding_window":
	default:
		problems = append(problems, fmt.Errorf("unknown rate limit strategy %q", c.RateLimit.Strategy))
	}

	if c.Retry.MaxAttempts < 1 {
		problems = append(problems, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.Multiplier < 1 {
		problems = append(problems, errors.New("retry multiplier must be >= 1"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		problems = append(problems, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.DownloadTimeout <= 0 {
		problems = append(problems, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		problems = append(problems, errors.New("output directory is required"))
	}
	if c.Output.ManifestFile == "" {
		problems = append(problems, errors.New("manifest file is required"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, errors.New("invalid log level"))
	}
	if f := strings.ToLower(c.Logging.Format); f != "console" && f != "json" {
		problems = append(problems, errors.New("log format must be console or json"))
	}

	validNotifTypes := map[string]bool{"terminal": true, "desktop": true, "none": true}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		problems = append(problems, errors.New("invalid notification type"))
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrorTypeInvalidInput, errors.Join(problems...), "invalid configuration")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600: the file may hold the API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the
// configuration. Keys match the long flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["api-key"].(string); ok && v != "" {
		c.Flickr.APIKey = v
	}
	if v, ok := flags["page-size"].(int); ok && v > 0 {
		c.Flickr.PageSize = v
	}
	if v, ok := flags["limit"].(int); ok {
		c.Crawl.Limit = v
	}
	if v, ok := flags["since"].(string); ok && v != "" {
		c.Crawl.MinUploadDate = v
	}
	if v, ok := flags["keyword"].([]string); ok && len(v) > 0 {
		c.Crawl.Keywords = v
	}
	if v, ok := flags["keywords-file"].(string); ok && v != "" {
		c.Crawl.KeywordsFile = v
	}
	if v, ok := flags["search-concurrency"].(int); ok && v > 0 {
		c.Crawl.SearchConcurrency = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["manifest"].(string); ok && v != "" {
		c.Output.ManifestFile = v
	}
	if v, ok := flags["concurrent"].(int); ok {
		c.Download.ConcurrentDownloads = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Download.DownloadTimeout = v
		c.Flickr.Timeout = v
	}
	if v, ok := flags["rate-limit"].(int); ok && v > 0 {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-format"].(string); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := flags["tui"].(bool); ok && v {
		c.TUI.Enabled = true
	}
	if v, ok := flags["notify"].(bool); ok && v {
		c.Notifications.Enabled = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".flickrcrawler.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

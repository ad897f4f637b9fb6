package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrcrawler/pkg/config"
	"flickrcrawler/pkg/crawler"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/logger"
	"flickrcrawler/pkg/manifest"
)

func newTestCrawlCmd(t *testing.T, argv ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "crawl"}
	addCrawlFlags(cmd)
	require.NoError(t, cmd.ParseFlags(argv))
	return cmd
}

func TestCrawlFlagsOnlyIncludesChangedFlags(t *testing.T) {
	cmd := newTestCrawlCmd(t)
	flags, err := crawlFlags(cmd, nil)
	require.NoError(t, err)
	assert.NotContains(t, flags, "limit")
	assert.NotContains(t, flags, "keyword")
	assert.NotContains(t, flags, "timeout")
}

func TestCrawlFlagsMergeIntoConfig(t *testing.T) {
	cmd := newTestCrawlCmd(t,
		"--limit", "7",
		"-k", "owl",
		"--since", "2024-02-01",
		"--concurrent", "4",
		"--timeout", "5s",
		"--tui",
	)
	flags, err := crawlFlags(cmd, []string{"cat", "dog"})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)

	assert.Equal(t, 7, cfg.Crawl.Limit)
	assert.Equal(t, []string{"cat", "dog", "owl"}, cfg.Crawl.Keywords)
	assert.Equal(t, "2024-02-01", cfg.Crawl.MinUploadDate)
	assert.Equal(t, 4, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, 5*time.Second, cfg.Download.DownloadTimeout)
	assert.True(t, cfg.TUI.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestResolveAPIKeyPrefersConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Flickr.APIKey = "from-config"

	key, source, err := resolveAPIKey(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)
	assert.Equal(t, "config", source)
}

func TestNewFlickrClientRejectsBadRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit.RequestsPerMinute = 0

	_, err := newFlickrClient(cfg, "key", logger.NewNopLogger())
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))

	cfg = config.DefaultConfig()
	client, err := newFlickrClient(cfg, "key", logger.NewNopLogger())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(errs.New(errs.ErrorTypeInvalidInput, "bad")))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrapped: %w", errs.New(errs.ErrorTypeInvalidInput, "bad"))))
	assert.Equal(t, 1, exitCode(errs.New(errs.ErrorTypeFilesystem, "disk")))
}

func TestReportOutcome(t *testing.T) {
	summary := &crawler.Summary{ManifestPath: "out/manifest.json", FailedKeywords: []string{"dog"}}
	assert.NoError(t, reportOutcome(context.Background(), summary))
}

func TestPrintStats(t *testing.T) {
	m := &manifest.Manifest{Images: []*manifest.Entry{
		{URL: "a", Keyword: "dog", Index: 0},
		nil,
		{URL: "b", Keyword: "cat", Index: 2},
		{URL: "c", Keyword: "cat", Index: 3},
	}}

	var buf bytes.Buffer
	printStats(&buf, m.Stats())
	out := buf.String()

	assert.Contains(t, out, "Slots:      4")
	assert.Contains(t, out, "Downloaded: 3")
	assert.Contains(t, out, "Failed:     1")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("cat")), bytes.Index(buf.Bytes(), []byte("dog")))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "***", maskKey("short"))
	assert.Equal(t, "0123...cdef", maskKey("0123456789abcdef"))
}

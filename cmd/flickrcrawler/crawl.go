package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flickrcrawler/pkg/auth"
	"flickrcrawler/pkg/config"
	"flickrcrawler/pkg/crawler"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/flickr"
	"flickrcrawler/pkg/keywords"
	"flickrcrawler/pkg/logger"
	"flickrcrawler/pkg/ratelimit"
	"flickrcrawler/pkg/retry"
	"flickrcrawler/pkg/ui"
	"flickrcrawler/pkg/ui/tui"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [keyword...]",
	Short: "Search Flickr for keywords and download the photos",
	Long: `Search Flickr for every keyword and download up to --limit photos in total.

The limit is split evenly between keywords; when it does not divide evenly
the first keywords get one extra photo each. Keywords come from the
arguments, --keyword flags, the keywords file and the configuration file.

The API key is taken from --api-key, FLICKRCRAWLER_API_KEY, the configuration
file or the credential store (see 'flickrcrawler auth set').`,
	Example: `  # 100 photos split between two keywords
  flickrcrawler crawl sunset "golden gate" --limit 100

  # Keywords from a file, photos uploaded since 2023, 8 parallel downloads
  flickrcrawler crawl --keywords-file keywords.txt --since 2023-01-01 --concurrent 8

  # Full-screen dashboard
  flickrcrawler crawl cats --limit 500 --tui`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	addCrawlFlags(crawlCmd)
}

func addCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("limit", "n", 100, "total number of photos to download across all keywords")
	f.StringSliceP("keyword", "k", nil, "keyword to search for (repeatable)")
	f.String("keywords-file", "", "file with one or more comma separated keywords per line")
	f.String("since", "", "only photos uploaded on or after this date (YYYY-MM-DD)")
	f.StringP("output", "o", "", "output directory for downloads")
	f.String("manifest", "", "manifest file name or path (relative paths live in the output directory)")
	f.Int("concurrent", 1, "number of concurrent downloads")
	f.Int("search-concurrency", 1, "number of keywords searched at the same time")
	f.Int("page-size", config.MaxPageSize, "photos requested per search page")
	f.Duration("timeout", 30*time.Second, "timeout for each search request and each download")
	f.Int("rate-limit", 60, "search requests per minute")
	f.String("api-key", "", "Flickr API key")
	f.String("profile", auth.DefaultProfile, "stored API key profile to use")
	f.Bool("tui", false, "show the interactive dashboard")
	f.Bool("notify", false, "send notifications when the crawl finishes or fails")
}

// crawlFlags collects the crawl flags the user set explicitly, keyed the
// way config.MergeCommandLineFlags expects.
func crawlFlags(cmd *cobra.Command, args []string) (map[string]interface{}, error) {
	flags := globalFlags()
	f := cmd.Flags()

	var problems []error
	getInt := func(name string) {
		if f.Changed(name) {
			v, err := f.GetInt(name)
			problems = append(problems, err)
			flags[name] = v
		}
	}
	getString := func(name string) {
		if f.Changed(name) {
			v, err := f.GetString(name)
			problems = append(problems, err)
			flags[name] = v
		}
	}
	getBool := func(name string) {
		if f.Changed(name) {
			v, err := f.GetBool(name)
			problems = append(problems, err)
			flags[name] = v
		}
	}

	for _, name := range []string{"limit", "concurrent", "search-concurrency", "page-size", "rate-limit"} {
		getInt(name)
	}
	for _, name := range []string{"keywords-file", "since", "output", "manifest", "api-key"} {
		getString(name)
	}
	getBool("tui")
	getBool("notify")

	if f.Changed("timeout") {
		v, err := f.GetDuration("timeout")
		problems = append(problems, err)
		flags["timeout"] = v
	}

	kws, err := f.GetStringSlice("keyword")
	problems = append(problems, err)
	if all := append(append([]string{}, args...), kws...); len(all) > 0 {
		flags["keyword"] = all
	}

	if err := errors.Join(problems...); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeInvalidInput, err, "invalid flags")
	}
	return flags, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	flags, err := crawlFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeInvalidInput, err, "failed to load configuration")
	}

	// The dashboard owns the terminal; keep console logs out of its way.
	if cfg.TUI.Enabled && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errs.Wrap(errs.ErrorTypeInvalidInput, err, "failed to initialize logger")
	}
	log := logger.WithField("version", version)

	profile, _ := cmd.Flags().GetString("profile")
	apiKey, source, err := resolveAPIKey(cfg, profile)
	if err != nil {
		auth.ShowQuickGuide(os.Stderr)
		return err
	}
	log.WithField("source", source).Debug("Using Flickr API key")

	kws, err := keywords.Merge(cfg.Crawl.Keywords, cfg.Crawl.KeywordsFile)
	if err != nil {
		return err
	}

	req, err := crawler.RequestFromConfig(cfg, kws)
	if err != nil {
		return err
	}

	client, err := newFlickrClient(cfg, apiKey, log)
	if err != nil {
		return err
	}

	ui.PrintInfo("Keywords", fmt.Sprintf("%d", len(kws)))
	ui.PrintInfo("Limit", fmt.Sprintf("%d", req.Limit))
	ui.PrintInfo("Output", req.OutputDir)

	if cfg.TUI.Enabled {
		return crawlWithDashboard(cmd.Context(), cfg, client, req, log)
	}

	reporter := ui.BuildReporter(cfg, nil, os.Stdout)
	summary, err := crawler.New(client, crawler.WithReporter(reporter), crawler.WithLogger(log)).Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return reportOutcome(cmd.Context(), summary)
}

// resolveAPIKey prefers a key from configuration (flag, env or file) and
// falls back to the credential store.
func resolveAPIKey(cfg *config.Config, profile string) (key, source string, err error) {
	if cfg.Flickr.APIKey != "" {
		return cfg.Flickr.APIKey, "config", nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return "", "", errs.Wrap(errs.ErrorTypeAuth, err, "failed to open credential store")
	}

	var stored *auth.APIKey
	if profile == "" || profile == auth.DefaultProfile {
		stored, err = manager.RetrieveDefault()
	} else {
		stored, err = manager.Retrieve(profile)
	}
	if err != nil {
		return "", "", errs.Wrap(errs.ErrorTypeInvalidInput, err, "no Flickr API key configured")
	}
	return stored.Key, stored.Source, nil
}

// newFlickrClient wires the rate limiter and retry policy into the API client.
func newFlickrClient(cfg *config.Config, apiKey string, log logger.Logger) (*flickr.Client, error) {
	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeInvalidInput, err, "invalid rate limit")
	}

	opts := []flickr.Option{
		flickr.WithBaseURL(cfg.Flickr.BaseURL),
		flickr.WithRateLimiter(limiter),
		flickr.WithUserAgent(cfg.Flickr.UserAgent),
	}
	if cfg.Retry.Enabled {
		opts = append(opts, flickr.WithRetry(retry.FromConfig(cfg.Retry, log)))
	}
	return flickr.NewClient(apiKey, cfg.Flickr.Timeout, log, opts...), nil
}

// crawlWithDashboard runs the crawl in the background while the dashboard
// holds the terminal, then stops the dashboard and prints the outcome.
func crawlWithDashboard(ctx context.Context, cfg *config.Config, client crawler.Client, req crawler.Request, log logger.Logger) error {
	dash := tui.NewTUI(req.Workers)
	reporter := ui.BuildReporter(cfg, dash, os.Stdout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		summary *crawler.Summary
		err     error
	}
	crawlDone := make(chan outcome, 1)
	go func() {
		s, err := crawler.New(client, crawler.WithReporter(reporter), crawler.WithLogger(log)).Run(ctx, req)
		crawlDone <- outcome{s, err}
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- dash.Start()
	}()

	var res outcome
	select {
	case res = <-crawlDone:
		dash.Stop()
		<-tuiDone
	case err := <-tuiDone:
		// The user quit the dashboard; stop the crawl and wait for the manifest.
		cancel()
		res = <-crawlDone
		if err != nil {
			log.WithError(err).Error("Dashboard failed")
		}
	}

	if res.err != nil {
		return res.err
	}
	ui.PrintSuccess(fmt.Sprintf("Downloaded %d of %d photos", res.summary.Succeeded, res.summary.Submitted))
	return reportOutcome(ctx, res.summary)
}

// reportOutcome prints where the manifest went and flags partial runs.
func reportOutcome(ctx context.Context, summary *crawler.Summary) error {
	ui.PrintInfo("Manifest", summary.ManifestPath)
	for _, kw := range summary.FailedKeywords {
		ui.PrintWarning("Search failed for keyword", kw)
	}
	if ctx.Err() != nil {
		ui.PrintWarning("Crawl interrupted", ctx.Err())
	}
	return nil
}

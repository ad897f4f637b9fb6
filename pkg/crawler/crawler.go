package crawler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/config"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/logger"
	"flickrcrawler/pkg/manifest"
	"flickrcrawler/pkg/search"
	"flickrcrawler/pkg/storage"
)

// Client is everything a crawl needs from the photo service.
type Client interface {
	search.PageFetcher
	downloader.PhotoDownloader
}

// Request describes one crawl.
type Request struct {
	Keywords          []string
	Limit             int
	MinUploadDate     time.Time
	OutputDir         string
	ManifestPath      string
	Workers           int
	PageSize          int
	SearchConcurrency int
	DownloadTimeout   time.Duration
}

// RequestFromConfig builds a request from loaded configuration and the
// resolved keyword list.
func RequestFromConfig(cfg *config.Config, keywords []string) (Request, error) {
	minUpload, err := cfg.MinUploadTime()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Keywords:          keywords,
		Limit:             cfg.Crawl.Limit,
		MinUploadDate:     minUpload,
		OutputDir:         cfg.Output.BaseDirectory,
		ManifestPath:      cfg.ManifestPath(),
		Workers:           cfg.Download.ConcurrentDownloads,
		PageSize:          cfg.Flickr.PageSize,
		SearchConcurrency: cfg.Crawl.SearchConcurrency,
		DownloadTimeout:   cfg.Download.DownloadTimeout,
	}, nil
}

// Validate checks the request before any side effect happens.
func (r *Request) Validate() error {
	var problems []error
	if r.Limit < 0 {
		problems = append(problems, fmt.Errorf("limit must not be negative, got %d", r.Limit))
	}
	if r.OutputDir == "" {
		problems = append(problems, errors.New("output directory is required"))
	}
	if r.Workers < 1 {
		problems = append(problems, fmt.Errorf("workers must be at least 1, got %d", r.Workers))
	}
	if r.PageSize < 1 || r.PageSize > config.MaxPageSize {
		problems = append(problems, fmt.Errorf("page size must be between 1 and %d, got %d", config.MaxPageSize, r.PageSize))
	}
	if r.SearchConcurrency < 0 {
		problems = append(problems, fmt.Errorf("search concurrency must not be negative, got %d", r.SearchConcurrency))
	}
	if len(r.Keywords) == 0 && r.Limit > 0 {
		problems = append(problems, errors.New("at least one keyword is required"))
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrorTypeInvalidInput, errors.Join(problems...), "invalid crawl request")
	}
	return nil
}

func (r *Request) manifestPath() string {
	if r.ManifestPath != "" {
		return r.ManifestPath
	}
	return filepath.Join(r.OutputDir, "manifest.json")
}

// KeywordResult is the outcome of searching one keyword.
type KeywordResult struct {
	Keyword string
	Quota   int
	Found   int
	Err     error
}

// Summary describes a finished run.
type Summary struct {
	RunID          string
	Keywords       []KeywordResult
	Submitted      int
	Succeeded      int
	Failed         int
	FailedKeywords []string
	BytesWritten   int64
	Duration       time.Duration
	ManifestPath   string
	Manifest       *manifest.Manifest
}

// Crawler runs keyword searches and downloads the results.
type Crawler struct {
	client   Client
	reporter Reporter
	logger   logger.Logger
}

// Option customises a Crawler.
type Option func(*Crawler)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(c *Crawler) { c.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// New creates a crawler.
func New(client Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:   client,
		reporter: NopReporter{},
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs one crawl: allocate quotas, search each keyword, download
// every reference and write the manifest. A failed keyword search or a
// failed download does not fail the run; only invalid input and
// filesystem failures do.
func (c *Crawler) Run(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := c.logger.WithField("run_id", runID)

	if err := req.Validate(); err != nil {
		log.WithError(err).Error("Invalid crawl request")
		return nil, err
	}

	quotas, err := budget.Allocate(req.Limit, req.Keywords)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewManager(req.OutputDir)
	if err != nil {
		log.WithError(err).WithField("output_dir", req.OutputDir).Error("Failed to prepare output directory")
		return nil, err
	}

	planner, err := search.NewPlanner(c.client, req.PageSize, log)
	if err != nil {
		return nil, err
	}

	pool, err := downloader.NewWorkerPool(req.Workers, c.client, store,
		downloader.WithJobTimeout(req.DownloadTimeout),
		downloader.WithObserver(c.reporter),
		downloader.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	log.InfoWithFields("Starting crawl", map[string]interface{}{
		"action":     "crawl_start",
		"keywords":   len(req.Keywords),
		"limit":      req.Limit,
		"workers":    req.Workers,
		"output_dir": req.OutputDir,
	})
	c.reporter.RunStarted(runID, quotas)

	concurrency := req.SearchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// seq hands out sequence indices on the submitting goroutine so values
	// stay gapless and unique across concurrent keyword loops.
	var seq atomic.Int64
	results := make([]KeywordResult, len(quotas))
	handles := make([][]*downloader.Handle, len(quotas))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, q := range quotas {
		i, q := i, q
		results[i] = KeywordResult{Keyword: q.Keyword, Quota: q.Count}
		if q.Count == 0 {
			log.DebugWithFields("Skipping keyword with zero quota", map[string]interface{}{"keyword": q.Keyword})
			continue
		}

		g.Go(func() error {
			refs, err := planner.Plan(ctx, q.Keyword, req.MinUploadDate, q.Count)
			c.reporter.SearchFinished(i, q.Keyword, len(refs), err)
			if err != nil {
				results[i].Err = err
				log.WithError(err).WithField("keyword", q.Keyword).Warn("Keyword search failed, skipping keyword")
				return nil
			}

			results[i].Found = len(refs)
			local := make([]*downloader.Handle, 0, len(refs))
			for _, ref := range refs {
				job := downloader.DownloadJob{
					Photo:   ref,
					Keyword: q.Keyword,
					Index:   seq.Add(1) - 1,
				}
				local = append(local, pool.Submit(ctx, job))
			}
			handles[i] = local

			log.DebugWithFields("Keyword jobs submitted", map[string]interface{}{
				"keyword": q.Keyword,
				"jobs":    len(local),
			})
			return nil
		})
	}
	_ = g.Wait()

	log.InfoWithFields("All jobs submitted, waiting for downloads to complete", map[string]interface{}{
		"submitted": seq.Load(),
	})
	pool.Wait()

	summary := &Summary{
		RunID:        runID,
		Keywords:     results,
		ManifestPath: req.manifestPath(),
	}

	builder := manifest.NewBuilder()
	for _, group := range handles {
		for _, h := range group {
			res := h.Await()
			if err := builder.Add(res.Job.Index, res.Entry()); err != nil {
				return nil, err
			}
			summary.Submitted++
			if res.Success {
				summary.Succeeded++
				summary.BytesWritten += res.Size
			} else {
				summary.Failed++
			}
		}
	}
	for _, r := range results {
		if r.Err != nil {
			summary.FailedKeywords = append(summary.FailedKeywords, r.Keyword)
		}
	}

	summary.Manifest = builder.Build()
	if err := manifest.Write(summary.ManifestPath, summary.Manifest); err != nil {
		log.WithError(err).WithField("manifest", summary.ManifestPath).Error("Failed to write manifest")
		return nil, err
	}
	summary.Duration = time.Since(start)

	log.InfoWithFields("Crawl completed", map[string]interface{}{
		"action":          "crawl_complete",
		"submitted":       summary.Submitted,
		"succeeded":       summary.Succeeded,
		"failed":          summary.Failed,
		"failed_keywords": summary.FailedKeywords,
		"bytes":           summary.BytesWritten,
		"duration_ms":     summary.Duration.Milliseconds(),
		"manifest":        summary.ManifestPath,
	})
	c.reporter.RunFinished(summary)
	return summary, nil
}

package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/flickr"
	"flickrcrawler/pkg/logger"
	"flickrcrawler/pkg/manifest"
)

// DownloadJob is one photo to fetch. Index is the run-wide sequence index
// and decides the file name.
type DownloadJob struct {
	Photo   flickr.PhotoReference
	Keyword string
	Index   int64
}

// URL returns the image URL for the job.
func (j DownloadJob) URL() string {
	return j.Photo.URL()
}

// DownloadResult is produced exactly once per submitted job.
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	URL      string
	Path     string
	Error    error
	Duration time.Duration
	Size     int64
}

// Entry converts the result to a manifest entry; nil for failures.
func (r DownloadResult) Entry() *manifest.Entry {
	if !r.Success {
		return nil
	}
	return &manifest.Entry{URL: r.URL, Keyword: r.Job.Keyword, Index: r.Job.Index}
}

// PhotoDownloader fetches image bytes.
type PhotoDownloader interface {
	DownloadPhoto(ctx context.Context, url string) ([]byte, error)
}

// PhotoStorage persists image bytes for a keyword and sequence index.
type PhotoStorage interface {
	SavePhoto(r io.Reader, keyword string, index int64) (string, int64, error)
}

// Observer is notified as jobs move through the pool. Calls come from
// worker goroutines and must be safe for concurrent use.
type Observer interface {
	JobStarted(job DownloadJob)
	JobFinished(result DownloadResult)
}

// Handle refers to a submitted job.
type Handle struct {
	job    DownloadJob
	done   chan struct{}
	result DownloadResult
}

// Job returns the submitted job.
func (h *Handle) Job() DownloadJob {
	return h.job
}

// Done is closed once the result is available.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Await blocks until the job has finished and returns its result.
func (h *Handle) Await() DownloadResult {
	<-h.done
	return h.result
}

// WorkerPool runs download jobs with at most numWorkers executing at once.
// Submission never blocks; jobs beyond the cap wait for a free slot.
type WorkerPool struct {
	numWorkers int
	slots      *semaphore.Weighted
	wg         sync.WaitGroup
	client     PhotoDownloader
	storage    PhotoStorage
	jobTimeout time.Duration
	observer   Observer
	logger     logger.Logger

	submitted atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// Option customises a WorkerPool.
type Option func(*WorkerPool)

// WithJobTimeout bounds the network phase of each job.
func WithJobTimeout(d time.Duration) Option {
	return func(wp *WorkerPool) { wp.jobTimeout = d }
}

// WithObserver registers an observer for job progress.
func WithObserver(o Observer) Option {
	return func(wp *WorkerPool) { wp.observer = o }
}

// WithLogger sets the pool logger.
func WithLogger(l logger.Logger) Option {
	return func(wp *WorkerPool) { wp.logger = l }
}

// NewWorkerPool creates a pool. numWorkers must be at least 1.
func NewWorkerPool(numWorkers int, client PhotoDownloader, storage PhotoStorage, opts ...Option) (*WorkerPool, error) {
	if numWorkers < 1 {
		return nil, errs.Newf(errs.ErrorTypeInvalidInput, "worker count must be at least 1, got %d", numWorkers)
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		slots:      semaphore.NewWeighted(int64(numWorkers)),
		client:     client,
		storage:    storage,
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(wp)
	}

	wp.logger.DebugWithFields("Worker pool created", map[string]interface{}{
		"num_workers": numWorkers,
		"job_timeout": wp.jobTimeout,
	})
	return wp, nil
}

// Submit schedules job and returns immediately.
func (wp *WorkerPool) Submit(ctx context.Context, job DownloadJob) *Handle {
	h := &Handle{job: job, done: make(chan struct{})}
	wp.submitted.Add(1)
	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()
		h.result = wp.run(ctx, job)
		if h.result.Success {
			wp.completed.Add(1)
		} else {
			wp.failed.Add(1)
		}
		if wp.observer != nil {
			wp.observer.JobFinished(h.result)
		}
		close(h.done)
	}()

	return h
}

// Wait blocks until every submitted job has finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) run(ctx context.Context, job DownloadJob) (result DownloadResult) {
	if err := wp.slots.Acquire(ctx, 1); err != nil {
		return DownloadResult{
			Job:   job,
			URL:   job.URL(),
			Error: errs.Wrap(errs.ErrorTypeDownload, err, "job cancelled before it started"),
		}
	}
	wp.active.Add(1)
	defer func() {
		wp.active.Add(-1)
		wp.slots.Release(1)
	}()

	defer func() {
		if r := recover(); r != nil {
			result = DownloadResult{
				Job:   job,
				URL:   job.URL(),
				Error: errs.Newf(errs.ErrorTypeDownload, "job panicked: %v", r),
			}
			wp.logger.ErrorWithFields("Download job panicked", map[string]interface{}{
				"keyword": job.Keyword,
				"index":   job.Index,
				"panic":   fmt.Sprint(r),
			})
		}
	}()

	if wp.observer != nil {
		wp.observer.JobStarted(job)
	}
	return wp.processJob(ctx, job)
}

// processJob downloads and stores one photo.
func (wp *WorkerPool) processJob(ctx context.Context, job DownloadJob) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job, URL: job.URL()}

	fetchCtx := ctx
	if wp.jobTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, wp.jobTimeout)
		defer cancel()
	}

	data, err := wp.client.DownloadPhoto(fetchCtx, result.URL)
	if err != nil {
		result.Error = errs.Wrap(errs.ErrorTypeDownload, err, "download failed")
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger, job.Keyword, job.Index, result.URL, result.Error)
		return result
	}

	path, size, err := wp.storage.SavePhoto(bytes.NewReader(data), job.Keyword, job.Index)
	if err != nil {
		result.Error = errs.Wrap(errs.ErrorTypeDownload, err, "write failed")
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger, job.Keyword, job.Index, result.URL, result.Error)
		return result
	}

	result.Success = true
	result.Path = path
	result.Size = size
	result.Duration = time.Since(start)
	logger.LogDownload(wp.logger, job.Keyword, job.Index, result.URL, nil)
	return result
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int
	Submitted int64
	Active    int64
	Completed int64
	Failed    int64
}

// Pending is the number of submitted jobs not yet finished.
func (s Stats) Pending() int64 {
	return s.Submitted - s.Completed - s.Failed
}

// Stats returns current counters.
func (wp *WorkerPool) Stats() Stats {
	return Stats{
		Workers:   wp.numWorkers,
		Submitted: wp.submitted.Load(),
		Active:    wp.active.Load(),
		Completed: wp.completed.Load(),
		Failed:    wp.failed.Load(),
	}
}

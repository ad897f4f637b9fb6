package search

import (
	"context"
	"fmt"
	"time"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/flickr"
	"flickrcrawler/pkg/logger"
)

// PageFetcher issues one search request and returns the photos on that page.
type PageFetcher interface {
	FetchPage(ctx context.Context, keyword string, minUpload time.Time, perPage, page int) ([]flickr.PhotoReference, error)
}

// PageRequest is one planned call to the search API.
type PageRequest struct {
	Page    int
	PerPage int
}

// PlanPages lists the page requests needed to cover target photos. Full
// pages use indices 0..n-1 and a partial remainder page uses index n+1.
// The skipped index matches the live API's paging; verify against the
// service before changing it. No remainder request is made when target is
// a multiple of pageSize.
func PlanPages(target, pageSize int) []PageRequest {
	if target <= 0 || pageSize <= 0 {
		return nil
	}

	fullPages := target / pageSize
	remaining := target % pageSize

	reqs := make([]PageRequest, 0, fullPages+1)
	for page := 0; page < fullPages; page++ {
		reqs = append(reqs, PageRequest{Page: page, PerPage: pageSize})
	}
	if remaining > 0 {
		reqs = append(reqs, PageRequest{Page: fullPages + 1, PerPage: remaining})
	}
	return reqs
}

// Planner turns a keyword and a target count into photo references.
type Planner struct {
	fetcher  PageFetcher
	pageSize int
	logger   logger.Logger
}

// NewPlanner creates a planner fetching pageSize photos per full page.
func NewPlanner(fetcher PageFetcher, pageSize int, log logger.Logger) (*Planner, error) {
	if pageSize <= 0 || pageSize > flickr.MaxPerPage {
		return nil, errs.Newf(errs.ErrorTypeInvalidInput, "page size must be between 1 and %d, got %d", flickr.MaxPerPage, pageSize)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Planner{fetcher: fetcher, pageSize: pageSize, logger: log}, nil
}

// PageSize returns the full-page size.
func (p *Planner) PageSize() int {
	return p.pageSize
}

// PageIterator walks the planned pages of one keyword, fetching a page per
// call to Next. It is finite and cannot be restarted.
type PageIterator struct {
	planner   *Planner
	keyword   string
	minUpload time.Time
	target    int
	requests  []PageRequest
	next      int
	yielded   int
	err       error
}

// Pages returns an iterator over the pages for keyword.
func (p *Planner) Pages(keyword string, minUpload time.Time, target int) *PageIterator {
	return &PageIterator{
		planner:   p,
		keyword:   keyword,
		minUpload: minUpload,
		target:    target,
		requests:  PlanPages(target, p.pageSize),
	}
}

// Next fetches the next page. It returns false once all pages are consumed
// or a fetch failed; check Err afterwards.
func (it *PageIterator) Next(ctx context.Context) ([]flickr.PhotoReference, bool) {
	if it.err != nil || it.next >= len(it.requests) || it.yielded >= it.target {
		return nil, false
	}

	req := it.requests[it.next]
	it.next++

	refs, err := it.planner.fetcher.FetchPage(ctx, it.keyword, it.minUpload, req.PerPage, req.Page)
	if err != nil {
		it.err = errs.Wrap(errs.ErrorTypeSearch, err, fmt.Sprintf("keyword %q page %d", it.keyword, req.Page))
		return nil, false
	}

	logger.LogSearchPage(it.planner.logger, it.keyword, req.Page, req.PerPage, len(refs))

	if room := it.target - it.yielded; len(refs) > room {
		refs = refs[:room]
	}
	it.yielded += len(refs)
	return refs, true
}

// Err returns the error that stopped iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// Requests returns the number of page requests issued so far.
func (it *PageIterator) Requests() int {
	return it.next
}

// Plan returns up to target references for keyword in page order. A failed
// page discards everything fetched for the keyword.
func (p *Planner) Plan(ctx context.Context, keyword string, minUpload time.Time, target int) ([]flickr.PhotoReference, error) {
	if target < 0 {
		return nil, errs.Newf(errs.ErrorTypeInvalidInput, "target count must not be negative, got %d", target)
	}

	it := p.Pages(keyword, minUpload, target)
	refs := make([]flickr.PhotoReference, 0, min(target, p.pageSize))
	for {
		page, ok := it.Next(ctx)
		if !ok {
			break
		}
		refs = append(refs, page...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	if len(refs) < target {
		p.logger.InfoWithFields("Search returned fewer photos than requested", map[string]interface{}{
			"keyword":   keyword,
			"requested": target,
			"returned":  len(refs),
		})
	}
	return refs, nil
}

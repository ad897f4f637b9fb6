package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/flickr"
	"flickrcrawler/pkg/logger"
)

type call struct {
	Keyword string
	PerPage int
	Page    int
}

// fakeFetcher serves up to available photos per page and records calls.
type fakeFetcher struct {
	mu        sync.Mutex
	calls     []call
	available int
	failPage  int
}

func newFakeFetcher(available int) *fakeFetcher {
	return &fakeFetcher{available: available, failPage: -1}
}

func (f *fakeFetcher) FetchPage(_ context.Context, keyword string, _ time.Time, perPage, page int) ([]flickr.PhotoReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{keyword, perPage, page})

	if page == f.failPage {
		return nil, errs.New(errs.ErrorTypeServerError, "boom")
	}

	n := perPage
	if f.available < n {
		n = f.available
	}
	f.available -= n

	refs := make([]flickr.PhotoReference, n)
	for i := range refs {
		refs[i] = flickr.PhotoReference{ID: fmt.Sprintf("%s-%d-%d", keyword, page, i), Secret: "s", Server: "1", Farm: 1}
	}
	return refs, nil
}

func TestPlanPages(t *testing.T) {
	tests := []struct {
		target, pageSize int
		want             []PageRequest
	}{
		{0, 500, nil},
		{3, 500, []PageRequest{{Page: 1, PerPage: 3}}},
		{500, 500, []PageRequest{{Page: 0, PerPage: 500}}},
		{1000, 500, []PageRequest{{Page: 0, PerPage: 500}, {Page: 1, PerPage: 500}}},
		{1203, 500, []PageRequest{{Page: 0, PerPage: 500}, {Page: 1, PerPage: 500}, {Page: 3, PerPage: 203}}},
		{7, 3, []PageRequest{{Page: 0, PerPage: 3}, {Page: 1, PerPage: 3}, {Page: 3, PerPage: 1}}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.target, tt.pageSize), func(t *testing.T) {
			assert.Equal(t, tt.want, PlanPages(tt.target, tt.pageSize))
		})
	}
}

func TestPlanPagesRequestCountIsCeiling(t *testing.T) {
	for pageSize := 1; pageSize <= 12; pageSize++ {
		for target := 0; target <= 40; target++ {
			want := (target + pageSize - 1) / pageSize
			assert.Len(t, PlanPages(target, pageSize), want, "target=%d pageSize=%d", target, pageSize)
		}
	}
}

func TestPlanReturnsMinOfTargetAndAvailable(t *testing.T) {
	for _, tt := range []struct{ target, available int }{
		{0, 100}, {5, 100}, {10, 100}, {11, 100}, {11, 4}, {30, 0},
	} {
		t.Run(fmt.Sprintf("%d-of-%d", tt.target, tt.available), func(t *testing.T) {
			fetcher := newFakeFetcher(tt.available)
			planner, err := NewPlanner(fetcher, 5, logger.NewNopLogger())
			require.NoError(t, err)

			refs, err := planner.Plan(context.Background(), "cat", time.Unix(0, 0), tt.target)
			require.NoError(t, err)

			assert.Len(t, refs, min(tt.target, tt.available))
			assert.Len(t, fetcher.calls, (tt.target+4)/5)
		})
	}
}

func TestPlanConcatenatesInPageOrder(t *testing.T) {
	fetcher := newFakeFetcher(100)
	planner, err := NewPlanner(fetcher, 2, nil)
	require.NoError(t, err)

	refs, err := planner.Plan(context.Background(), "owl", time.Unix(0, 0), 5)
	require.NoError(t, err)

	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"owl-0-0", "owl-0-1", "owl-1-0", "owl-1-1", "owl-3-0"}, ids)
	assert.Equal(t, []call{{"owl", 2, 0}, {"owl", 2, 1}, {"owl", 1, 3}}, fetcher.calls)
}

func TestPlanZeroTargetMakesNoRequests(t *testing.T) {
	fetcher := newFakeFetcher(100)
	planner, err := NewPlanner(fetcher, 500, nil)
	require.NoError(t, err)

	refs, err := planner.Plan(context.Background(), "cat", time.Unix(0, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Empty(t, fetcher.calls)
}

func TestPlanAbortsKeywordOnPageError(t *testing.T) {
	fetcher := newFakeFetcher(100)
	fetcher.failPage = 1
	planner, err := NewPlanner(fetcher, 2, nil)
	require.NoError(t, err)

	refs, err := planner.Plan(context.Background(), "cat", time.Unix(0, 0), 7)
	require.Error(t, err)
	assert.Nil(t, refs)
	assert.True(t, errs.Is(err, errs.ErrorTypeSearch))
	assert.True(t, errs.Is(err, errs.ErrorTypeServerError))
	assert.Contains(t, err.Error(), `keyword "cat" page 1`)
	assert.Len(t, fetcher.calls, 2, "no pages requested after the failure")
}

func TestPageIteratorTruncatesOversizedPages(t *testing.T) {
	planner, err := NewPlanner(oversizedFetcher{}, 3, nil)
	require.NoError(t, err)

	it := planner.Pages("cat", time.Unix(0, 0), 4)
	var total int
	for {
		page, ok := it.Next(context.Background())
		if !ok {
			break
		}
		total += len(page)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, it.Requests(), "target already met after the first page")

	_, ok := it.Next(context.Background())
	assert.False(t, ok, "iterator is not restartable")
}

type oversizedFetcher struct{}

func (oversizedFetcher) FetchPage(_ context.Context, _ string, _ time.Time, _, _ int) ([]flickr.PhotoReference, error) {
	return make([]flickr.PhotoReference, 10), nil
}

func TestNewPlannerValidatesPageSize(t *testing.T) {
	_, err := NewPlanner(newFakeFetcher(0), 0, nil)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))

	_, err = NewPlanner(newFakeFetcher(0), 501, nil)
	assert.Error(t, err)
}

func TestPlanRejectsNegativeTarget(t *testing.T) {
	planner, err := NewPlanner(newFakeFetcher(0), 10, nil)
	require.NoError(t, err)

	_, err = planner.Plan(context.Background(), "cat", time.Unix(0, 0), -1)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
	assert.False(t, errors.Is(err, context.Canceled))
}

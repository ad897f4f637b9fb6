// Package budget splits a global image limit across keywords.
package budget

import (
	errs "flickrcrawler/pkg/errors"
)

// Quota is the number of images one keyword may contribute.
type Quota struct {
	Keyword string
	Count   int
}

// Allocate divides totalLimit as evenly as possible across keywords in input
// order. The first totalLimit%len(keywords) keywords get one extra image.
// Zero quotas are kept; callers skip them.
func Allocate(totalLimit int, keywords []string) ([]Quota, error) {
	if totalLimit < 0 {
		return nil, errs.Newf(errs.ErrorTypeInvalidInput, "limit must not be negative, got %d", totalLimit)
	}
	if len(keywords) == 0 {
		if totalLimit > 0 {
			return nil, errs.New(errs.ErrorTypeInvalidInput, "no keywords to distribute the limit across")
		}
		return []Quota{}, nil
	}

	base := totalLimit / len(keywords)
	remainder := totalLimit % len(keywords)

	quotas := make([]Quota, len(keywords))
	for i, kw := range keywords {
		quotas[i] = Quota{Keyword: kw, Count: base}
		if i < remainder {
			quotas[i].Count++
		}
	}
	return quotas, nil
}

// Total sums the counts of quotas.
func Total(quotas []Quota) int {
	var n int
	for _, q := range quotas {
		n += q.Count
	}
	return n
}

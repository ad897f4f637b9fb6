// Package retry re-runs transient failures with backoff.
//
// Typed errors from pkg/errors decide what is retryable: network, rate limit
// and server errors are retried, everything else is returned at once. Rate
// limit errors can use a slower backoff than other failures.
//
//	policy := retry.FromConfig(cfg.Retry, log)
//	page, err := retry.DoWithResult(ctx, func(ctx context.Context) (*flickr.SearchResponse, error) {
//		return client.Search(ctx, query)
//	}, policy)
package retry

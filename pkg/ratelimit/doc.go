// Package ratelimit throttles calls to the search API.
//
// Two strategies implement Limiter:
//
// Token bucket: holds up to a burst of tokens and regains one per interval.
// This is the default.
//
// Sliding window: admits at most N requests within any window.
//
// Both block in Wait until a slot frees or the context ends.
//
//	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit

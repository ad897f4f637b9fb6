package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/logger"
	"flickrcrawler/pkg/ratelimit"
	"flickrcrawler/pkg/retry"
)

// Flickr API error codes that map to typed errors.
const (
	apiCodeSearchUnavailable  = 10
	apiCodeInvalidKey         = 100
	apiCodeServiceUnavailable = 105
)

// Client talks to the Flickr REST API and the static image hosts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    ratelimit.Limiter
	retry      *retry.Config
	logger     logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a different REST endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimiter throttles search requests. Image downloads are not limited.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the retry policy for both search and download requests.
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client. timeout bounds every single HTTP exchange.
func NewClient(apiKey string, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    BaseURL,
		apiKey:     apiKey,
		userAgent:  "flickrcrawler/1.0",
		retry:      &retry.Config{MaxAttempts: 1},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Logger == nil {
		policy := *c.retry
		policy.Logger = log
		c.retry = &policy
	}
	return c
}

// get performs one GET and classifies transport failures.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      redactKey(rawURL),
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "network error")
	}

	logger.LogRequest(c.logger, req.Method, redactKey(rawURL), resp.StatusCode, time.Since(start))
	return resp, nil
}

// checkResponseStatus maps non-success HTTP statuses to typed errors.
func checkResponseStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	e := &errs.Error{Code: code, Message: fmt.Sprintf("unexpected status %d", code)}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e.Type = errs.ErrorTypeAuth
	case code == http.StatusNotFound || code == http.StatusGone:
		e.Type = errs.ErrorTypeNotFound
	case code == http.StatusTooManyRequests:
		e.Type = errs.ErrorTypeRateLimit
	case code >= 500:
		e.Type = errs.ErrorTypeServerError
	default:
		e.Type = errs.ErrorTypeUnknown
	}
	return e
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	c.logger.DebugWithFields("API response", map[string]interface{}{
		"url":  redactKey(rawURL),
		"body": string(body),
	})

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redactKey(rawURL),
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &errs.Error{Type: errs.ErrorTypeParsing, Message: "malformed JSON", Code: resp.StatusCode, Err: err}
	}
	return nil
}

// apiError converts a stat=fail envelope into a typed error.
func apiError(r *SearchResponse) error {
	e := &errs.Error{Code: r.Code, Message: r.Message}
	switch r.Code {
	case apiCodeInvalidKey:
		e.Type = errs.ErrorTypeAuth
	case apiCodeSearchUnavailable, apiCodeServiceUnavailable:
		e.Type = errs.ErrorTypeServerError
	default:
		e.Type = errs.ErrorTypeUnknown
	}
	if e.Message == "" {
		e.Message = "flickr API returned stat=" + r.Stat
	}
	return e
}

// Search fetches one page of photos. It waits on the rate limiter before
// every attempt and retries transient failures.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*PhotoPage, error) {
	rawURL := SearchURL(c.baseURL, c.apiKey, q)

	return retry.DoWithResult(ctx, func(ctx context.Context) (*PhotoPage, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var resp SearchResponse
		if err := c.getJSON(ctx, rawURL, &resp); err != nil {
			return nil, err
		}
		if resp.Stat != "ok" {
			return nil, apiError(&resp)
		}
		return &resp.Photos, nil
	}, c.retry)
}

// FetchPage returns the photo references of one search page.
func (c *Client) FetchPage(ctx context.Context, keyword string, minUpload time.Time, perPage, page int) ([]PhotoReference, error) {
	result, err := c.Search(ctx, SearchQuery{
		Text:          keyword,
		MinUploadDate: minUpload,
		PerPage:       perPage,
		Page:          page,
	})
	if err != nil {
		return nil, err
	}

	refs := make([]PhotoReference, 0, len(result.Photo))
	for _, p := range result.Photo {
		if !p.Valid() {
			return nil, errs.Newf(errs.ErrorTypeParsing, "photo record %q is missing URL fields", p.ID)
		}
		refs = append(refs, p)
	}
	return refs, nil
}

// DownloadPhoto fetches the raw bytes at photoURL.
func (c *Client) DownloadPhoto(ctx context.Context, photoURL string) ([]byte, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
		resp, err := c.get(ctx, photoURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if err := checkResponseStatus(resp); err != nil {
			return nil, err
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read photo body")
		}
		return data, nil
	}, c.retry)
}

package microsoft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client executes Graph requests with token freshness checks and rate-limit retries.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       driven.TokenProvider
	limiter      *RateLimiter
	logger       *slog.Logger
	maxRetries   int
	sleep        SleepFunc
	now          func() time.Time
	newRequestID func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimiter enables proactive throttling.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) { c.limiter = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithMaxRetries bounds rate-limited attempts. Values below 1 are ignored.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 1 {
			c.maxRetries = n
		}
	}
}

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(s SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = s }
}

// WithClock replaces time.Now when resolving Retry-After dates.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// WithRequestIDFunc replaces the client-request-id generator.
func WithRequestIDFunc(f func() string) ClientOption {
	return func(c *Client) { c.newRequestID = f }
}

// NewClient creates a Graph client.
func NewClient(tokens driven.TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: domain.DefaultTimeout},
		tokens:       tokens,
		logger:       slog.New(slog.DiscardHandler),
		maxRetries:   domain.DefaultMaxRetries,
		sleep:        sleepContext,
		now:          time.Now,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs call inside the retry loop. Each attempt first makes sure the
// token is fresh. A *RateLimitError from call is retried after its RetryAfter;
// any other error is returned immediately. When every attempt is rate limited
// Execute returns *RateLimitExceededError.
func (c *Client) Execute(ctx context.Context, op string, call func(ctx context.Context) error) error {
	log := c.logger.With("operation", op)

	attempt := 0
	for attempt < c.maxRetries {
		log.Debug("request attempt", "attempt", attempt, "max_retries", c.maxRetries)

		if err := c.tokens.EnsureFresh(ctx); err != nil {
			return err
		}

		err := call(ctx)

		var rateLimitErr *RateLimitError
		if !errors.As(err, &rateLimitErr) {
			return err
		}

		attempt++
		if c.limiter != nil {
			c.limiter.RecordRateLimitError(rateLimitErr.RetryAfter)
		}
		if attempt >= c.maxRetries {
			break
		}

		log.Warn("rate limit exceeded, retrying",
			"retry_after", rateLimitErr.RetryAfter,
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"request_id", rateLimitErr.RequestID,
		)
		if err := c.sleep(ctx, rateLimitErr.RetryAfter); err != nil {
			return err
		}
	}

	log.Warn("max retries reached", "attempts", attempt, "max_retries", c.maxRetries)
	return &RateLimitExceededError{Attempts: attempt, MaxRetries: c.maxRetries}
}

// request is one Graph call. Bodies are kept as bytes so retries can resend them.
type request struct {
	method string
	url    string
	body   []byte
	header http.Header
}

// do sends a single request and classifies the response.
// 2xx returns the body, 429 returns *RateLimitError, anything else *APIError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", tok.AuthorizationHeader())
	requestID := c.newRequestID()
	req.Header.Set(HeaderClientRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, redactURL(r.url), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("graph response",
		"method", r.method,
		"url", redactURL(r.url),
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr := newAPIError(resp, respBody)
		c.logger.Warn("graph rate limit exceeded", "status", resp.StatusCode, "message", apiErr.Message)
		return nil, &RateLimitError{
			RetryAfter: parseRetryAfter(resp, c.now()),
			Message:    apiErr.Message,
			RequestID:  requestID,
		}
	default:
		return nil, newAPIError(resp, respBody)
	}
}

// url joins the base URL with escaped path segments.
func (c *Client) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// redactURL drops the query string, which can carry user search terms.
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

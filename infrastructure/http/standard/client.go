// ABOUTME: Standard HTTP client implementation with retry, rate limiting and circuit breaking
// ABOUTME: Provides feed fetching with exponential backoff and per-host failure isolation

package standard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"rss-reader-app/core/interfaces"
	"rss-reader-app/pkg/featureflags"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries = 3
	defaultUserAgent  = "rss-reader/1.0"
)

// errServerStatus marks a 5xx response so the breaker counts it as a failure
var errServerStatus = errors.New("server error status")

// BreakerConfig configures the per-host circuit breakers
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open
	MaxRequests uint32

	// Interval clears the closed-state counts
	Interval time.Duration

	// Timeout is how long a breaker stays open before trying again
	Timeout time.Duration

	// FailureThreshold is the failure ratio that opens the breaker
	FailureThreshold float64

	// MinRequests is the number of requests seen before the ratio is checked
	MinRequests uint32
}

// FeedFetchBreakerConfig returns breaker settings tuned for feed hosts
func FeedFetchBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// StandardHTTPClient implements the HTTPClient interface on net/http
type StandardHTTPClient struct {
	client     *http.Client
	maxRetries int
	userAgent  string
	limiter    *rate.Limiter
	breakerCfg *BreakerConfig
	logger     interfaces.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// Option configures a StandardHTTPClient
type Option func(*StandardHTTPClient)

// WithMaxRetries sets how many attempts a GET makes. Values below 1 mean a single attempt.
func WithMaxRetries(n int) Option {
	return func(c *StandardHTTPClient) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *StandardHTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit applies a token bucket shared by every request.
// The limit is skipped when the rate_limit feature flag is off.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *StandardHTTPClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCircuitBreaker enables a circuit breaker per request host
func WithCircuitBreaker(cfg BreakerConfig) Option {
	return func(c *StandardHTTPClient) {
		c.breakerCfg = &cfg
	}
}

// WithLogger sets the logger for breaker state changes and retries
func WithLogger(logger interfaces.Logger) Option {
	return func(c *StandardHTTPClient) {
		c.logger = logger
	}
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration, opts ...Option) *StandardHTTPClient {
	c := &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries: defaultMaxRetries,
		userAgent:  defaultUserAgent,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request.
// 5xx responses and transport errors are retried with exponential backoff; the last
// response is returned even when it is a 5xx.
func (c *StandardHTTPClient) Get(ctx context.Context, rawURL string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	breaker := c.breakerFor(req.URL)
	if breaker == nil {
		return c.doWithRetry(ctx, req)
	}

	var resp interfaces.Response
	_, err = breaker.Execute(func() (interface{}, error) {
		r, err := c.doWithRetry(ctx, req)
		resp = r
		if err != nil {
			return nil, err
		}
		if r.StatusCode() >= http.StatusInternalServerError {
			return nil, errServerStatus
		}
		return nil, nil
	})

	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("requests to %s suspended: %w", req.URL.Host, err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *StandardHTTPClient) doWithRetry(ctx context.Context, req *http.Request) (interfaces.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 100ms, 200ms, 400ms
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.debug("Request failed", map[string]interface{}{
				"url":     req.URL.String(),
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		// Don't retry on success or 4xx errors, nor on the last attempt
		if resp.StatusCode < http.StatusInternalServerError || attempt == c.maxRetries-1 {
			return &httpResponse{
				statusCode: resp.StatusCode,
				body:       resp.Body,
				headers:    resp.Header,
			}, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return nil, lastErr
}

// wait blocks on the rate limiter when one is configured and enabled
func (c *StandardHTTPClient) wait(ctx context.Context) error {
	if c.limiter == nil || !featureflags.IsEnabled(ctx, featureflags.RateLimit) {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// breakerFor returns the circuit breaker for the request host, creating it on first use
func (c *StandardHTTPClient) breakerFor(u *url.URL) *gobreaker.CircuitBreaker {
	if c.breakerCfg == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[u.Host]; ok {
		return b
	}

	cfg := *c.breakerCfg
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        u.Host,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("Circuit breaker state changed", map[string]interface{}{
					"host": name,
					"from": from.String(),
					"to":   to.String(),
				})
			}
		},
	})
	c.breakers[u.Host] = b
	return b
}

// BreakerState reports the breaker state for host, or closed when none exists yet
func (c *StandardHTTPClient) BreakerState(host string) gobreaker.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[host]; ok {
		return b.State()
	}
	return gobreaker.StateClosed
}

func (c *StandardHTTPClient) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}

package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// maxBodySize caps a single vendor response. The congressional feeds are
// the largest payloads at a few tens of megabytes.
const maxBodySize = 128 << 20

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Timeout         time.Duration // per attempt; must be positive
	MaxRetries      int           // retries after the first attempt
	InitialInterval time.Duration // first backoff delay
	MaxInterval     time.Duration
	UserAgent       string
}

// DefaultHTTPOptions returns conservative defaults.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:         15 * time.Second,
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		UserAgent:       "stockdash/1.0",
	}
}

// HTTPClient performs vendor GET requests with a per-attempt timeout and
// exponential backoff on throttling, 5xx and network failures.
type HTTPClient struct {
	client *http.Client
	opts   HTTPOptions
	logger *zap.Logger
}

// NewHTTPClient builds a client. Zero durations and an empty user agent
// take their defaults; MaxRetries is used as given.
func NewHTTPClient(opts HTTPOptions, logger *zap.Logger) *HTTPClient {
	def := DefaultHTTPOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = def.InitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = def.MaxInterval
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger,
	}
}

// Timeout returns the per-attempt timeout.
func (c *HTTPClient) Timeout() time.Duration { return c.opts.Timeout }

// Get fetches url and returns the response body. Non-2xx responses are
// returned as *HTTPError; transport failures are returned unwrapped from
// net/http. Temporary failures are retried up to MaxRetries times.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		body, err := c.do(ctx, rawURL, headers)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		var herr *HTTPError
		if errors.As(err, &herr) && !herr.Temporary() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.InitialInterval
	exp.MaxInterval = c.opts.MaxInterval
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.opts.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			zap.String("url", RedactURL(rawURL)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotifyWithData(op, policy, notify)
}

func (c *HTTPClient) do(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = RedactURL(uerr.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        RedactURL(rawURL),
			Body:       snippet,
		}
	}
	return body, nil
}

// secretParams are query parameters that carry vendor credentials.
var secretParams = []string{"apikey", "apiKey", "token", "api_key"}

// RedactURL masks credential query parameters so URLs can be logged.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

package lolesports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/riskibarqy/esports-pickem/internal/platform/resilience"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL   = "https://esports-api.lolesports.com/persisted/gw"
	defaultLocale    = "en-US"
	defaultMaxPages  = 6
	defaultHorizon   = 14 * 24 * time.Hour
	maxResponseBytes = 6 << 20
	apiKeyHeader     = "x-api-key"
)

var errTransient = crerr.New("lolesports transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Locale     string
	Timeout    time.Duration
	MaxRetries int
	// MaxPages caps schedule requests per refresh, the first page included.
	MaxPages int
	// Horizon stops paging once a page reaches this far into the future.
	Horizon        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public LoL Esports persisted gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	locale     string
	maxRetries int
	maxPages   int
	horizon    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	now        func() time.Time
	backoff    func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = defaultLocale
	}
	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = defaultMaxPages
	}
	horizon := cfg.Horizon
	if horizon <= 0 {
		horizon = defaultHorizon
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		locale:     locale,
		maxRetries: max(cfg.MaxRetries, 0),
		maxPages:   maxPages,
		horizon:    horizon,
		logger:     logger.With("component", "lolesports_client"),
		breaker:    cfg.CircuitBreaker.Build(),
		now:        time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
	}
}

// doJSON issues a GET and decodes the body into target. Every failure is
// marked with usecase.ErrUpstream.
func (c *Client) doJSON(ctx context.Context, endpoint string, query url.Values, target any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("hl", c.locale)
	fullURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "lolesports circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		return fmt.Errorf("%w: %s: %w", usecase.ErrUpstream, endpoint, err)
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		switch {
		case reqErr == nil:
			c.breaker.RecordSuccess()
		case errors.Is(reqErr, context.Canceled), errors.Is(reqErr, context.DeadlineExceeded):
			// caller gave up; says nothing about upstream health
			c.breaker.Release()
		case errors.Is(reqErr, errTransient):
			c.breaker.RecordFailure()
		default:
			// a 4xx still proves the upstream is answering
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", usecase.ErrUpstream, endpoint, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("%w: %s: unexpected payload type %T", usecase.ErrUpstream, endpoint, out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", usecase.ErrUpstream, endpoint, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.roundTrip(ctx, fullURL)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			lastErr = fmt.Errorf("%w: %s", errTransient, c.redact(err.Error()))
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: status=%d body=%s", errTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "lolesports request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	// buf goes back to the pool; hand out a private copy.
	return append([]byte(nil), buf.B...), resp.StatusCode, nil
}

func (c *Client) redact(value string) string {
	if c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, c.apiKey, "REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

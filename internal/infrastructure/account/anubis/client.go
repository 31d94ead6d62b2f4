package anubis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/riskibarqy/esports-pickem/internal/platform/resilience"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	defaultIntrospectPath = "/v1/auth/introspect"
	defaultCacheTTL       = 30 * time.Second
	defaultCacheEntries   = 10000
	adminKeyHeader        = "x-admin-key"
)

var errAnubisTransient = crerr.New("anubis transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	CacheTTL       time.Duration
	CacheEntries   int
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client verifies bearer tokens against the Anubis introspection endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	cache         *principalCache
	breaker       *resilience.CircuitBreaker
	flight        singleflight.Group
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	path := cfg.IntrospectPath
	if strings.TrimSpace(path) == "" {
		path = defaultIntrospectPath
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	entries := cfg.CacheEntries
	if entries < 1 {
		entries = defaultCacheEntries
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, path),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		cache:         newPrincipalCache(ttl, entries),
		breaker:       cfg.CircuitBreaker.Build(),
		logger:        logger.With("component", "anubis_client"),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: anubis: %w", usecase.ErrDependencyUnavailable, err)
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		principal, introspectErr := c.introspect(ctx, token)
		switch {
		case isCallerGone(introspectErr):
			c.breaker.Release()
		case isCircuitFailure(introspectErr):
			c.breaker.RecordFailure()
		default:
			c.breaker.RecordSuccess()
		}
		return principal, introspectErr
	})
	if err != nil {
		return user.Principal{}, err
	}

	principal := out.(user.Principal)
	c.cache.Set(key, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set(adminKeyHeader, c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: request introspection: %w", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: read introspect response: %w", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// 403 means the admin key was refused, not the caller's token.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: anubis rejected admin key", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnContext(ctx, "anubis introspection unavailable", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: %w: status %d", usecase.ErrDependencyUnavailable, errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: anubis introspection failed with status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("%w: unmarshal introspect response: %w", usecase.ErrDependencyUnavailable, err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: introspect response has empty user_id", usecase.ErrDependencyUnavailable)
	}

	return user.Principal{UserID: decoded.UserID, Email: decoded.Email}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func isCallerGone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func isCircuitFailure(err error) bool {
	return errors.Is(err, errAnubisTransient)
}

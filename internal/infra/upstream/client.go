// Package upstream is the HTTP adapter for the B2B commerce platform.
// The broker never duplicates the platform's data; every call here is
// made on behalf of a user with their stored upstream token, guarded
// by a circuit breaker, bounded retries and a bulkhead.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("upstream")

// Sentinel errors distinguishing upstream HTTP outcomes inside this
// package. They are translated to domain errors before leaving it.
var (
	errUnauthorized = errors.New("upstream rejected the request as unauthorized")
	errConflict     = errors.New("upstream reported a conflict")
)

// Client wraps HTTP calls to the upstream commerce platform REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storeHash  string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates an upstream platform client.
func NewClient(httpClient *http.Client, baseURL, storeHash string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		storeHash:  storeHash,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// doRequest executes one request against the upstream API.
// A 404/204 yields (nil, nil) — "no data", which callers turn into
// domain.ErrNotFound. Transport failures and 5xx come back as plain
// errors for the retry/breaker layer to count.
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	u := fmt.Sprintf("%s/api/v2%s", c.baseURL, path)

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.storeHash != "" {
		req.Header.Set("X-Store-Hash", c.storeHash)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("upstream: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return nil, errConflict
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("upstream: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	c.logger.Debug("upstream: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// get runs a GET through bulkhead, breaker and retry.
func (c *Client) get(ctx context.Context, operation, path, token string) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: operation}
	}
	defer c.bulkhead.Release()

	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			b, err := c.doRequest(ctx, http.MethodGet, path, token, nil)
			if err != nil {
				return err
			}
			body = b
			return nil
		})
	})
	if err != nil {
		return nil, c.translate(operation, err)
	}
	return body, nil
}

// send runs a mutating request through bulkhead and breaker only.
// Mutations are not retried: the upstream API offers no idempotency
// keys for them.
func (c *Client) send(ctx context.Context, operation, method, path, token string, payload any) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: operation}
	}
	defer c.bulkhead.Release()

	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		b, err := c.doRequest(ctx, method, path, token, payload)
		if err != nil {
			return nil, err
		}
		body = b
		return nil, nil
	})
	if err != nil {
		return nil, c.translate(operation, err)
	}
	return body, nil
}

// translate maps transport-layer errors to the domain taxonomy.
// errUnauthorized and errConflict pass through untranslated so that
// operation-specific callers can decide what they mean.
func (c *Client) translate(operation string, err error) error {
	switch {
	case errors.Is(err, errUnauthorized), errors.Is(err, errConflict):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "upstream"}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: operation}
	default:
		return &domain.ErrUpstream{Operation: operation, Err: err}
	}
}

// unmarshal decodes an upstream response body.
func unmarshal(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// asSessionExpired converts an upstream 401/403 on a resource call
// into the domain signal that the stored upstream token is no longer
// accepted and the user must log in again.
func asSessionExpired(err error) error {
	if errors.Is(err, errUnauthorized) {
		return &domain.ErrUpstreamSessionExpired{}
	}
	return err
}

// listPath builds a collection path, forwarding query parameters to
// the upstream platform verbatim.
func listPath(base string, q domain.ListQuery) string {
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	if q.SortBy != "" {
		vals.Set("sortBy", q.SortBy)
	}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(vals) == 0 {
		return base
	}
	return base + "?" + vals.Encode()
}

// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/middleware"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 4 << 20

// Config configures a Client.
type Config struct {
	EmotionURL   string
	RecommendURL string

	// Timeout applies to each HTTP round trip. Default: 30s.
	Timeout time.Duration

	// RatePerSecond and Burst bound outbound requests per service.
	// RatePerSecond <= 0 disables limiting.
	RatePerSecond float64
	Burst         int

	Breaker BreakerConfig
}

// DefaultConfig points at the default local listeners.
func DefaultConfig() Config {
	return Config{
		EmotionURL:    "http://localhost:8000",
		RecommendURL:  "http://localhost:8001",
		Timeout:       30 * time.Second,
		RatePerSecond: 20,
		Burst:         10,
		Breaker:       DefaultBreakerConfig(),
	}
}

// APIError is a non-2xx answer from one of the services. Detail is the
// message for ordinary errors; for 422 responses it joins the field messages
// and Fields holds them individually.
type APIError struct {
	Status    int
	Code      string
	Detail    string
	Fields    []FieldError
	RequestID string
}

// FieldError is one entry of a 422 validation response.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Detail)
}

// Client calls the emotion and recommend services. Each service has its own
// rate limiter and circuit breaker, so an outage of one does not throttle
// calls to the other.
type Client struct {
	http      *http.Client
	emotion   *endpoint
	recommend *endpoint
}

type endpoint struct {
	name    string
	baseURL string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*result]
}

// New creates a Client. A zero Timeout or Breaker takes the DefaultConfig value.
func New(cfg Config) (*Client, error) {
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = d.Breaker
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.EmotionURL == "" && cfg.RecommendURL == "" {
		return nil, errors.New("client: no service URL configured")
	}

	logger := logging.WithComponent("client")
	c := &Client{http: &http.Client{Timeout: cfg.Timeout}}
	if cfg.EmotionURL != "" {
		c.emotion = newEndpoint("emotion-api", cfg.EmotionURL, cfg, logger)
	}
	if cfg.RecommendURL != "" {
		c.recommend = newEndpoint("recommend-api", cfg.RecommendURL, cfg, logger)
	}
	return c, nil
}

//nolint:gocritic // zerolog.Logger is passed by value
func newEndpoint(name, baseURL string, cfg Config, logger zerolog.Logger) *endpoint {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &endpoint{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: newBreaker(name, cfg.Breaker, logger.With().Str("breaker", name).Logger()),
	}
}

// do sends one request through the endpoint's limiter and breaker and
// decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, ep *endpoint, path, contentType string, body []byte, out any) error {
	if ep == nil {
		return errors.New("client: service URL not configured")
	}
	if err := ep.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit: %w", ep.name, err)
	}

	res, err := ep.breaker.Execute(func() (*result, error) {
		return c.roundTrip(ctx, ep.baseURL+path, contentType, body)
	})
	recordBreakerOutcome(ep.name, err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", ep.name, path, err)
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", ep.name, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, url, contentType string, body []byte) (*result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logging.Ctx(ctx).Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("service call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return &result{body: data}, nil
}

// decodeAPIError accepts both a string detail and a FastAPI validation list.
func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Detail: http.StatusText(status)}

	var body struct {
		Detail    json.RawMessage `json:"detail"`
		Code      string          `json:"code"`
		RequestID string          `json:"request_id"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	apiErr.Code = body.Code
	apiErr.RequestID = body.RequestID

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		apiErr.Detail = text
		return apiErr
	}
	var fields []FieldError
	if err := json.Unmarshal(body.Detail, &fields); err == nil && len(fields) > 0 {
		apiErr.Fields = fields
		msgs := make([]string, len(fields))
		for i, f := range fields {
			msgs[i] = strings.Join(f.Loc, ".") + ": " + f.Msg
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}

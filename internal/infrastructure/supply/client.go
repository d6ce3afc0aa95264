package supply

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/logger"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

// maxResponseSize is the maximum response size read from the supply API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client sends authenticated requests to the supply API. It is safe for
// concurrent use and never retries.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *telemetry.SupplyMetrics
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records every call on the given instruments
func WithMetrics(m *telemetry.SupplyMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a supply API client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ excursion.SupplyTransport = (*Client)(nil)

// Configured reports whether an API key is present for the active environment
func (c *Client) Configured() bool {
	return c.config.Credentials.Configured()
}

// Environment returns the active environment
func (c *Client) Environment() Environment {
	return c.config.Credentials.Environment
}

// Send performs one request. Missing credentials fail before any network
// access; non-2xx responses return *excursion.UpstreamError with the body.
func (c *Client) Send(ctx context.Context, req *excursion.SupplyRequest) (*excursion.SupplyResponse, error) {
	op := req.Operation
	if op == "" {
		op = req.Method + " " + req.Path
	}

	if !c.Configured() {
		c.metrics.RecordRequest(ctx, op, telemetry.OutcomeNotAttempted, 0, 0)
		return nil, excursion.NewConfigurationError("no API key configured for %s environment", c.config.Credentials.Environment)
	}

	locale := c.resolveLocale(req.Locale)

	ctx, span := telemetry.StartSpan(ctx, "supply."+op,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", req.Method),
		telemetry.WithAttribute("url.path", req.Path),
		telemetry.WithAttribute(telemetry.SpanAttrCurrency, locale.Currency),
	)
	defer span.End()

	log := c.log(ctx).With(zap.String("operation", op))
	start := time.Now()

	var (
		resp *excursion.SupplyResponse
		err  error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.SupplyOperationLabels(op), func(ctx context.Context) {
		resp, err = c.do(ctx, op, req, locale)
	})
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordError(span, err)
		status, outcome := 0, telemetry.OutcomeNetwork
		var upstream *excursion.UpstreamError
		switch {
		case errors.As(err, &upstream):
			status, outcome = upstream.Status, telemetry.OutcomeUpstream
		case errors.Is(err, excursion.ErrRequestNotSent):
			outcome = telemetry.OutcomeNotAttempted
		}
		c.metrics.RecordRequest(ctx, op, outcome, status, elapsed)
		log.Warn("supply request failed", zap.Int("status", status), zap.Duration("latency", elapsed), zap.Error(err))
		return nil, err
	}

	telemetry.SetAttributes(span, "http.response.status_code", resp.Status)
	telemetry.SetOK(span)
	c.metrics.RecordRequest(ctx, op, telemetry.OutcomeSuccess, resp.Status, elapsed)
	log.Debug("supply request completed", zap.Int("status", resp.Status), zap.Duration("latency", elapsed))
	return resp, nil
}

func (c *Client) do(ctx context.Context, op string, req *excursion.SupplyRequest, locale excursion.Locale) (*excursion.SupplyResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: rate limiter: %w", excursion.ErrRequestNotSent, op, err)
		}
	}

	httpReq, err := c.newRequest(ctx, req, locale)
	if err != nil {
		return nil, fmt.Errorf("supply: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &excursion.NetworkError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &excursion.NetworkError{Operation: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &excursion.UpstreamError{Operation: op, Status: resp.StatusCode, Body: body}
	}

	return &excursion.SupplyResponse{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, req *excursion.SupplyRequest, locale excursion.Locale) (*http.Request, error) {
	u, err := url.Parse(c.config.Credentials.BaseURL + "/" + strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}
	if query.Get("currency") == "" {
		query.Set("currency", locale.Currency)
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(APIKeyHeader, c.config.Credentials.APIKey)
	httpReq.Header.Set("Accept", AcceptHeader)
	httpReq.Header.Set("Accept-Language", locale.Language)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// resolveLocale fills missing fields from the client default locale
func (c *Client) resolveLocale(l excursion.Locale) excursion.Locale {
	if l.Currency == "" {
		l.Currency = c.config.DefaultLocale.Currency
	}
	if l.Language == "" {
		l.Language = c.config.DefaultLocale.Language
	}
	return l.WithDefaults()
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	return logger.LOr(ctx, c.logger)
}

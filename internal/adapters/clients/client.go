package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/requestctx"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotesync/internal/adapters/clients"

	// Request and correlation IDs are forwarded under these headers.
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	defaultTimeout      = 10 * time.Second
	defaultIdleTimeout  = 90 * time.Second
	defaultJitterFactor = 0.25
)

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// ServiceName labels logs, spans and metrics for the downstream endpoint.
	ServiceName string

	// Timeout bounds a single attempt; retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// HTTPClient replaces the pooled client built from Transport. Tests use it.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is an HTTP client for one downstream endpoint. GET requests are
// retried with exponential backoff and jitter; other methods get a single
// attempt. Every call passes through a circuit breaker, is traced and counted
// with OpenTelemetry, and carries the caller's request and correlation IDs.
type Client struct {
	http    *http.Client
	baseURL string
	name    string
	retry   config.RetryConfig
	logger  *slog.Logger
	breaker *CircuitBreaker

	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	if retry.JitterFactor == 0 {
		retry.JitterFactor = defaultJitterFactor
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("downstream", cfg.ServiceName))

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of requests to the remote quote endpoint"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requests, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Requests to the remote quote endpoint"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)}
	}

	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		name:     cfg.ServiceName,
		retry:    retry,
		logger:   logger,
		breaker:  breaker,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		requests: requests,
	}, nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.MaxIdleConns > 0 {
		t.MaxIdleConns = cfg.MaxIdleConns
	}

	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}

	t.IdleConnTimeout = defaultIdleTimeout
	if cfg.IdleConnTimeout > 0 {
		t.IdleConnTimeout = cfg.IdleConnTimeout
	}

	return t
}

// Get issues a GET for path, retrying transient failures.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Post issues a single-attempt POST of a JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Do sends req. A response with any status is a success as far as the
// client is concerned; callers map 4xx and 5xx themselves. 5xx responses to a
// GET are retried first.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.name),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.breaker.Allow() {
		c.record(ctx, req.Method, 0, time.Since(start), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.name),
		),
	)
	defer span.End()

	forwardIDs(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	attempts := 1
	if req.Method == http.MethodGet {
		attempts = c.retry.MaxAttempts
	}

	resp, err := c.attempt(ctx, req, attempts, logger)
	elapsed := time.Since(start)

	if err != nil {
		c.breaker.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, elapsed, "error")
		logger.WarnContext(ctx, "request failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+http.StatusText(resp.StatusCode))
	}

	c.record(ctx, req.Method, resp.StatusCode, elapsed, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)

	return resp, nil
}

// attempt runs up to n tries. The last 5xx response is returned rather than
// an error so the caller can map its status.
func (c *Client) attempt(ctx context.Context, req *http.Request, n int, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for i := range n {
		if i > 0 {
			wait := c.backoff(i)
			logger.DebugContext(ctx, "retrying request", slog.Int("attempt", i+1), slog.Duration("backoff", wait))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err

			if !isRetryableError(err) {
				return nil, err
			}

			continue
		}

		if resp.StatusCode < http.StatusInternalServerError || i == n-1 {
			return resp, nil
		}

		_ = resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

// backoff is InitialInterval * Multiplier^attempt, capped at MaxInterval,
// spread by ±JitterFactor.
func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt))
	if maxInterval := float64(c.retry.MaxInterval); maxInterval > 0 && d > maxInterval {
		d = maxInterval
	}

	spread := rand.Float64()*2 - 1 //nolint:gosec // jitter only
	d += d * c.retry.JitterFactor * spread

	return time.Duration(d)
}

// CircuitState returns the breaker state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// Name returns the downstream service name.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) record(ctx context.Context, method string, status int, d time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.name),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, d.Seconds(), set)
	c.requests.Add(ctx, 1, set)
}

func forwardIDs(ctx context.Context, req *http.Request) {
	if id := requestctx.RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	if id := requestctx.CorrelationID(ctx); id != "" {
		req.Header.Set(HeaderCorrelationID, id)
	}
}

// isRetryableError reports network failures worth another attempt.
// Cancellation and deadline errors are final.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

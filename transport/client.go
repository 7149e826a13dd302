package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/bitbucket/config"
	"github.com/kbukum/bitbucket/logger"
	"github.com/kbukum/bitbucket/observability"
	"github.com/kbukum/bitbucket/version"
)

// Client dispatches authenticated requests against the Bitbucket Cloud API.
// It performs exactly one network attempt per call; there is no retry,
// caching, or rate-limit handling. A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        *config.Config
	log        *logger.Logger
	metrics    *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is left
// untouched; per-request timeouts are enforced through the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics sets the metric instruments recorded per dispatch.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a transport client for the given configuration. The
// configuration is read-only; the client never mutates it.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.New(cfg.Logging).WithComponent("transport")
	}
	if c.metrics == nil {
		// Instruments on the global meter are no-ops until the embedding
		// application initializes a meter provider.
		c.metrics, _ = observability.NewMetrics(observability.Meter())
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() *config.Config { return c.cfg }

// Do builds, dispatches, and decodes one API request. On success it returns
// the decoded body; every failure is returned as a *Error.
//
// The request runs under a timeout (request override, else the configured
// default). The timer is always released when the exchange completes,
// success or failure. A fired timer cancels the in-flight request and is
// reported as an API error with synthetic status 408, distinguishable from
// other network failures.
func (c *Client) Do(ctx context.Context, creds *Credentials, req Request) (*DecodedBody, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := observability.StartSpan(ctx, "bitbucket.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	httpReq, buildErr := c.buildRequest(ctx, creds, method, req)
	if buildErr != nil {
		span.RecordError(buildErr)
		return nil, buildErr
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	body, statusCode, headers, dispatchErr := c.dispatch(httpReq, timeout)
	duration := time.Since(start)

	c.metrics.RecordRequest(ctx, method, statusCode, duration)
	log := c.log.Z().Debug().
		Str(logger.FieldRequestID, requestID).
		Stringer(logger.FieldAuth, creds).
		Str(logger.FieldMethod, method).
		Str(logger.FieldURL, httpReq.URL.String()).
		Int(logger.FieldStatus, statusCode).
		Int64(logger.FieldDuration, duration.Milliseconds())

	if dispatchErr != nil {
		log.Str(logger.FieldError, dispatchErr.Error()).Msg("request failed")
		span.RecordError(dispatchErr)
		return nil, dispatchErr
	}
	log.Msg("request completed")
	span.SetAttributes(attribute.Int("http.status_code", statusCode))

	if statusCode >= 200 && statusCode < 300 {
		return decodeBody(headers, body), nil
	}

	classified := classifyResponse(statusCode, body)
	span.RecordError(classified)
	return nil, classified
}

// dispatch performs the single network exchange and enforces the response
// size limit. It returns the status code even on failure so the caller can
// record it.
func (c *Client) dispatch(httpReq *http.Request, timeout time.Duration) ([]byte, int, http.Header, *Error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || httpReq.Context().Err() != nil {
			return nil, http.StatusRequestTimeout, nil, newTimeoutError(timeout, err)
		}
		return nil, http.StatusInternalServerError, nil, newNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Reject oversized responses before reading the body; a misbehaving
	// endpoint must not force unbounded reads.
	limit := c.cfg.MaxResponseBytes()
	if resp.ContentLength > limit {
		return nil, http.StatusRequestEntityTooLarge, nil, newOversizedError(resp.ContentLength, limit)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if httpReq.Context().Err() != nil {
			return nil, http.StatusRequestTimeout, nil, newTimeoutError(timeout, err)
		}
		return nil, http.StatusInternalServerError, nil, newNetworkError(err)
	}
	if int64(len(body)) > limit {
		// Undeclared Content-Length; the stream exceeded the limit anyway.
		return nil, http.StatusRequestEntityTooLarge, nil, newOversizedError(int64(len(body)), limit)
	}

	return body, resp.StatusCode, resp.Header, nil
}

// buildRequest constructs the *http.Request: absolute path against the base
// endpoint, exactly one Authorization header, Accept: application/json,
// and the body encoded per the effective Content-Type.
func (c *Client) buildRequest(ctx context.Context, creds *Credentials, method string, req Request) (*http.Request, *Error) {
	if creds == nil {
		return nil, NewAuthMissingError()
	}
	authValue, authErr := creds.authorization()
	if authErr != nil {
		return nil, authErr
	}

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	contentType := effectiveContentType(req.Headers)
	body, encErr := encodeBody(req.Body, contentType)
	if encErr != nil {
		return nil, encErr
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, newUnexpectedError("creating request", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	httpReq.Header.Set("Authorization", authValue)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// effectiveContentType returns the caller-supplied Content-Type, or the
// application/json default.
func effectiveContentType(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") {
			return v
		}
	}
	return "application/json"
}

// encodeBody converts a request body into an io.Reader. Strings and byte
// slices pass through unchanged regardless of content type; pre-encoded
// form and multipart payloads are supplied that way. Any other value is
// serialized as JSON, and only when the effective Content-Type is JSON.
func encodeBody(body any, contentType string) (io.Reader, *Error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		if !strings.Contains(contentType, "application/json") {
			return nil, newUnexpectedError(
				"structured request body requires an application/json content type, got "+contentType, nil)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, newUnexpectedError("encoding request body", err)
		}
		return bytes.NewReader(data), nil
	}
}

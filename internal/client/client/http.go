package client

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
	"strings"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 10 * time.Second

	// RetryHeader marks a replayed request.
	RetryHeader = "X-Retry-Count"

	maxBodyBytes = 4 << 20
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	creds          Credentials
	onUnauthorized func(ctx context.Context)
	retryUnsafe    bool
	log            logging.Logger
	transport      http.RoundTripper
	tracerProvider trace.TracerProvider
}

type Option func(*HTTPClient)

// WithTimeout sets the overall per-attempt timeout enforced by http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithTransport replaces the round tripper under the tracing layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithUnauthorizedHandler sets the callback run after a 401 revoked the
// stored credentials. It runs at most once per revoked token.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

// WithRetryUnsafe enables the single retry for non-idempotent methods too.
func WithRetryUnsafe(enabled bool) Option {
	return func(c *HTTPClient) { c.retryUnsafe = enabled }
}

// WithTracerProvider sets the provider for client spans. The global one is
// used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *HTTPClient) { c.tracerProvider = tp }
}

// New builds an HTTPClient for the API rooted at baseURL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, creds Credentials, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: absolute http(s) URL required", baseURL)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		creds:      creds,
		log:        logging.Nop(),
		transport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}

	prefix := strings.TrimRight(u.Path, "/")
	topts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + strings.TrimPrefix(r.URL.Path, prefix)
		}),
	}
	if c.tracerProvider != nil {
		topts = append(topts, otelhttp.WithTracerProvider(c.tracerProvider))
	}
	c.httpClient.Transport = otelhttp.NewTransport(c.transport, topts...)
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	return call[models.LoginResponse](ctx, c, http.MethodPost, "/auth/login", nil, req)
}

func (c *HTTPClient) ListTodos(ctx context.Context, page, pageSize int) (*models.Page[models.Todo], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return call[models.Page[models.Todo]](ctx, c, http.MethodGet, "/todos", q, nil)
}

func (c *HTTPClient) CreateTodo(ctx context.Context, title, description string) (*models.Todo, error) {
	req := models.CreateTodoRequest{Title: title, Description: description}
	return call[models.Todo](ctx, c, http.MethodPost, "/todos", nil, req)
}

func (c *HTTPClient) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	return call[models.Todo](ctx, c, http.MethodPut, "/todos/"+url.PathEscape(id), nil, patch)
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, ErrNoData) {
		return nil
	}
	return err
}

// call performs one API call and decodes the enveloped payload into T.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, query url.Values, in any) (*T, error) {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	resp, token, err := c.send(ctx, method, path, query, body, false)
	if err != nil {
		if !c.retryable(ctx, method) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.log.Warn(ctx, "no response from server, retrying once", "method", method, "path", path, "error", err)
		resp, token, err = c.send(ctx, method, path, query, body, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := decodeError(resp.StatusCode, raw)
		c.unauthorized(ctx, token)
		return nil, apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrNoData
	}

	var env models.Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, envelopeError(resp.StatusCode, env.Error)
	}
	if env.Data == nil {
		return nil, ErrNoData
	}
	return env.Data, nil
}

// send performs a single attempt. The returned token is the one attached to
// the request.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, body []byte, retry bool) (*http.Response, string, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if retry {
		req.Header.Set(RetryHeader, "1")
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "cannot read session token, sending anonymously", "error", err)
		token = ""
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, token, err
	}
	return resp, token, nil
}

func (c *HTTPClient) retryable(ctx context.Context, method string) bool {
	if ctx.Err() != nil {
		return false
	}
	if c.retryUnsafe {
		return true
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (c *HTTPClient) unauthorized(ctx context.Context, token string) {
	if token == "" {
		return
	}
	revoked, err := c.creds.Revoke(ctx, token)
	if err != nil {
		c.log.Error(ctx, "failed to clear rejected credentials", "error", err)
		return
	}
	if !revoked {
		return
	}
	c.log.Warn(ctx, "session rejected by server, credentials cleared")
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func decodeError(status int, raw []byte) *APIError {
	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: status}
	}
	return envelopeError(status, env.Error)
}

func envelopeError(status int, detail *models.ErrorDetail) *APIError {
	if detail == nil {
		return &APIError{Status: status}
	}
	return &APIError{Status: status, Code: detail.Code, Message: detail.Message}
}

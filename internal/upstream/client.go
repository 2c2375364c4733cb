package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jwtly10/kid-relay/internal/metrics"
)

const defaultUserAgent = "kid-relay/0.1"

type ctxKey struct{}

// WithRequestID stores the inbound request ID so it is forwarded upstream
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string
	Logger     *slog.Logger
}

// Client issues calls to the upstream API with the credential attached.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Call describes one outbound request
type Call struct {
	// Operation names the call for logs and metrics
	Operation string
	Method    string
	Path      string
	Query     url.Values
	// Body is sent as is with a JSON content type. Nil sends no body.
	Body []byte
}

func NewClient(cfg Config) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("upstream: api key required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		userAgent:  ua,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized upstream base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues the call exactly once. It never returns a nil Result.
func (c *Client) Do(ctx context.Context, call Call) Result {
	start := time.Now()
	res := c.do(ctx, call)

	switch r := res.(type) {
	case Response:
		metrics.ObserveUpstream(call.Operation, fmt.Sprintf("%d", r.StatusCode), time.Since(start))
		c.logger.Debug("upstream responded",
			"operation", call.Operation,
			"status", r.StatusCode,
			"duration", time.Since(start),
			"request_id", RequestID(ctx))
	case TransportFailure:
		metrics.ObserveUpstream(call.Operation, metrics.OutcomeTransportFailure, time.Since(start))
	}

	return res
}

func (c *Client) do(ctx context.Context, call Call) Result {
	req, err := c.newRequest(ctx, call)
	if err != nil {
		return TransportFailure{Err: fmt.Errorf("failed to build request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportFailure{Err: fmt.Errorf("failed to call %s: %w", call.Path, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportFailure{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Response{StatusCode: resp.StatusCode, Body: body}
}

func (c *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, c.buildURL(call.Path, call.Query), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if id := RequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	return req, nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("upstream: base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("upstream: invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("upstream: base URL scheme must be http or https")
	}
	if u.Host == "" {
		return "", errors.New("upstream: base URL missing host")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
)

const (
	// DefaultBaseURL is the Todoist REST API v1 root.
	DefaultBaseURL = "https://api.todoist.com/api/v1"

	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	// Token is the personal API token used as a bearer token.
	Token string

	// BaseURL overrides DefaultBaseURL (used by tests).
	BaseURL string

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is the base client whose transport is wrapped with
	// tracing and authentication. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Metrics records per-operation API metrics. May be nil.
	Metrics *instrumentation.Metrics
}

// Client talks to the Todoist REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
}

// NewClient creates a client authenticated with cfg.Token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("todoist API token is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	traced := &http.Client{Transport: otelhttp.NewTransport(transport)}

	// oauth2.NewClient picks the base transport up from the context.
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, traced)
	httpClient := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}, nil
}

// do performs one API call. body is JSON-encoded when non-nil; out is
// decoded from the response when non-nil. Mutating requests carry a fresh
// X-Request-Id so the API can deduplicate retries.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) (err error) {
	ctx, span := instrumentation.StartTodoistAPISpan(ctx, operation, method, path)
	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		instrumentation.FinishSpan(span, err)
		if c.metrics != nil {
			c.metrics.RecordTodoistAPIOperation(ctx, operation, status, time.Since(start))
		}
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseAPIError(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

// PageArgs are the cursor arguments shared by every list endpoint.
type PageArgs struct {
	Cursor string
	Limit  int
}

func (p PageArgs) apply(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}

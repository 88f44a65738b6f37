// Package api is the HTTP client of the poll REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

const DefaultBaseURL = "http://localhost:8000/api"

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenSource
	logger     *zap.Logger
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient returns a client rooted at baseURL. tokens may be nil, in which
// case requests are sent anonymously.
func NewClient(baseURL string, tokens ports.TokenSource, logger *zap.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		tokens:     tokens,
		logger:     logger,
		userAgent:  "pollctl",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource swaps the source of bearer tokens. It must be called before
// the client is shared between goroutines.
func (c *Client) SetTokenSource(tokens ports.TokenSource) {
	c.tokens = tokens
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the token source when set.
	token string
	// anonymous suppresses the Authorization header.
	anonymous bool
}

// do sends the call and decodes a success body into out. Non-2xx responses
// become *domain.RequestError. There is no retry and no client-side timeout.
func (c *Client) do(ctx context.Context, in call, out any) error {
	var body io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token := c.token(in); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", in.method, in.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		zap.String("method", in.method),
		zap.String("path", in.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) token(in call) string {
	switch {
	case in.anonymous:
		return ""
	case in.token != "":
		return in.token
	case c.tokens != nil:
		return c.tokens.Token()
	default:
		return ""
	}
}

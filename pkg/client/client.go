// Package client talks to a running mess-o-midi service
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
	"strings"
	"time"

	"github.com/caseymeehan/mess-o-midi/pkg/api"
	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"go.uber.org/zap"
)

// DefaultBaseURL is where a locally started service listens
const DefaultBaseURL = "http://localhost:5001"

// ErrRequestFailed wraps every non-success answer from the service
var ErrRequestFailed = errors.New("request failed")

// Health is the body of GET /health
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Client calls the generation service over HTTP
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the service at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health fetches the service health status
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: health returned %d", ErrRequestFailed, resp.StatusCode)
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: decode health: %w", ErrRequestFailed, err)
	}
	return &h, nil
}

// IsServiceAvailable reports whether the service answers its health check
func (c *Client) IsServiceAvailable(ctx context.Context) bool {
	h, err := c.Health(ctx)
	if err != nil {
		c.log.Debug("service unavailable", zap.String("base_url", c.baseURL), zap.Error(err))
		return false
	}
	return h.Status == "healthy"
}

// Generate asks the service to write a file of the given kind
func (c *Client) Generate(ctx context.Context, kind generator.Kind, req api.GenerateRequest) (*api.GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate/"+string(kind), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out api.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response (%d): %w", ErrRequestFailed, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return &out, fmt.Errorf("%w: %d: %s", ErrRequestFailed, resp.StatusCode, out.Error)
	}

	c.log.Info("generated remotely",
		zap.String("kind", string(kind)),
		zap.String("filename", out.Filename),
	)
	return &out, nil
}

// Download copies a generated file into w
func (c *Client) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var out api.GenerateResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return 0, fmt.Errorf("%w: download %s: %d: %s", ErrRequestFailed, filename, resp.StatusCode, out.Error)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	return resp, nil
}

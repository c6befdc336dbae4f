// Package scraper drives the external scraping backend.
//
// Client is a thin HTTP client for the backend's /api endpoints. Every
// failure, whether the backend answered with a non-2xx status or never
// answered at all, comes back as an *APIError. Worker runs one scrape
// end to end and persists what it gets back.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Khootz/hkustjob/internal/model"
)

// DevBaseURL is where the backend listens during local development.
const DevBaseURL = "http://localhost:5000"

// ResolveBaseURL picks the backend base URL: the local dev server when dev
// is set, otherwise the deployment origin that routes /api/* to the backend.
func ResolveBaseURL(dev bool, origin string) string {
	if dev {
		return DevBaseURL
	}
	return strings.TrimRight(origin, "/")
}

// ClientConfig holds the explicit configuration of a Client.
type ClientConfig struct {
	BaseURL string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client talks to the scraping backend. It holds no mutable state and is
// safe for concurrent use; concurrent calls are independent requests.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client.
func New(cfg ClientConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// ─── Operations ──────────────────────────────────────────────────────────────

// StartScraping posts req to /api/scrape once. A response with
// Success=false is returned as-is, not as an error.
func (c *Client) StartScraping(ctx context.Context, req model.ScrapingRequest) (*model.ScrapingResponse, error) {
	var resp model.ScrapingResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/scrape", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadResult fetches a generated result file by its backend path.
func (c *Client) DownloadResult(ctx context.Context, filePath string) ([]byte, error) {
	_, body, err := c.do(ctx, http.MethodGet, "/api/download/"+url.PathEscape(filePath), nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// HealthCheck fetches /api/health.
func (c *Client) HealthCheck(ctx context.Context) (*model.HealthStatus, error) {
	var hs model.HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

// Debug asks the backend to fetch a single listing page and report what it saw.
func (c *Client) Debug(ctx context.Context, req model.DebugRequest) (*model.DebugInfo, error) {
	var info model.DebugInfo
	if err := c.doJSON(ctx, http.MethodPost, "/api/debug", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ─── Transport ───────────────────────────────────────────────────────────────

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	status, body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Status: status, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return nil
}

// do issues one request and returns the status and raw body of a 2xx
// response. Everything else becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, &APIError{Status: 0, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("scraper request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("read body: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if strings.TrimSpace(msg) == "" {
			msg = msgRequestFailed
		}
		return resp.StatusCode, nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return resp.StatusCode, body, nil
}

func networkError(err error) *APIError {
	msg := err.Error()
	if msg == "" {
		msg = msgNetworkError
	}
	return &APIError{Status: 0, Message: msg, Err: err}
}

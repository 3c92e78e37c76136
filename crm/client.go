package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Response is the status and raw body of a CRM call. The client never turns a
// received non-2xx status into an error; callers branch on Status themselves.
type Response struct {
	Status int
	Body   string
}

// Failed reports whether the CRM rejected the request
func (r *Response) Failed() bool {
	return r.Status >= 400
}

// ResourceClient is the contract over the CRM's per-tenant REST surface.
// Transport-level failures (DNS, connection refused, timeout) are returned as
// an error, distinct from a received non-2xx Response.
type ResourceClient interface {
	Index(ctx context.Context, resource string) (*Response, error)
	Create(ctx context.Context, resource string, payload any) (*Response, error)
	Update(ctx context.Context, resource string, id int64, payload any) (*Response, error)
	Delete(ctx context.Context, resource string, id int64) (*Response, error)
	Match(ctx context.Context, resource string, params url.Values) (*Response, error)
}

// Config holds the CRM endpoint settings shared by all tenants
type Config struct {
	Protocol string
	Domain   string
	Timeout  time.Duration
}

// Factory produces a ResourceClient bound to one tenant's credentials
type Factory interface {
	ForTenant(slug, accessToken string) ResourceClient
}

// HTTPFactory is the production Factory. All tenant clients share one
// http.Client with the configured overall timeout.
type HTTPFactory struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPFactory creates a factory for per-tenant CRM clients
func NewHTTPFactory(cfg Config, logger *zap.Logger) *HTTPFactory {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPFactory{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// ForTenant binds a client to a tenant's slug and access token
func (f *HTTPFactory) ForTenant(slug, accessToken string) ResourceClient {
	return &Client{
		httpClient: f.httpClient,
		paths:      NewTenantPaths(f.cfg.Protocol, f.cfg.Domain, slug, accessToken),
		logger:     f.logger,
	}
}

// Client implements ResourceClient over net/http
type Client struct {
	httpClient *http.Client
	paths      PathBuilder
	logger     *zap.Logger
}

// NewClient creates a client with an explicit path builder, mainly for tests
func NewClient(httpClient *http.Client, paths PathBuilder, logger *zap.Logger) *Client {
	return &Client{httpClient: httpClient, paths: paths, logger: logger}
}

// Index lists a resource collection
func (c *Client) Index(ctx context.Context, resource string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.paths.Index(resource), nil)
}

// Create posts a new resource. A nil payload sends no request body.
func (c *Client) Create(ctx context.Context, resource string, payload any) (*Response, error) {
	return c.do(ctx, http.MethodPost, c.paths.Create(resource), payload)
}

// Update puts changes to an existing resource
func (c *Client) Update(ctx context.Context, resource string, id int64, payload any) (*Response, error) {
	return c.do(ctx, http.MethodPut, c.paths.Update(resource, id), payload)
}

// Delete removes a resource
func (c *Client) Delete(ctx context.Context, resource string, id int64) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.paths.Delete(resource, id), nil)
}

// Match queries a resource with parameters encoded in the query string
func (c *Client) Match(ctx context.Context, resource string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.paths.Match(resource, params), nil)
}

func (c *Client) do(ctx context.Context, method, requestURL string, payload any) (*Response, error) {
	var body io.Reader
	hasBody := payload != nil
	if hasBody {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read crm response: %w", err)
	}

	c.logger.Debug("crm response",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode))

	return &Response{Status: resp.StatusCode, Body: string(raw)}, nil
}

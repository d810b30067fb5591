package unisphere

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultVersion is the Unisphere REST API version requested when the
	// config does not pin one.
	DefaultVersion = "90"

	// DefaultTimeout bounds every individual API call.
	DefaultTimeout = 30 * time.Second

	basePath = "/univmax/restapi"

	// maxBodyBytes caps how much of a response is read. Full array
	// inventories are large but nowhere near this.
	maxBodyBytes = 16 << 20

	maxErrorBodyBytes = 512
)

// Config carries everything needed to reach a Unisphere instance.
type Config struct {
	// Endpoint is the scheme and host of the Unisphere server,
	// e.g. "https://unisphere.example.com:8443".
	Endpoint string
	Username string
	Password string
	// Version selects the REST API version segment and is also sent as the
	// "version" request header.
	Version string
	// InsecureSkipVerify disables TLS certificate verification. Unisphere
	// installs routinely run on self-signed certificates.
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Mostly useful in tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// Client is an immutable Unisphere REST API client. It is safe for
// concurrent use.
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

func New(config Config, opts ...Option) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("unisphere: endpoint is required")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("unisphere: username is required")
	}
	if config.Version == "" {
		config.Version = DefaultVersion
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	config.Endpoint = strings.TrimRight(config.Endpoint, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		config: config,
		http: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Version reports the REST API version the client is pinned to.
func (c *Client) Version() string {
	return c.config.Version
}

// Endpoint reports the Unisphere server this client talks to.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// path builds the versioned resource path, e.g.
// path("system", "symmetrix") -> "/univmax/restapi/90/system/symmetrix".
func (c *Client) path(parts ...string) string {
	return strings.Join(append([]string{basePath, c.config.Version}, parts...), "/")
}

// get performs a single GET against path and returns the raw body.
// Non-2xx statuses become an *APIError, everything below HTTP becomes a
// *TransportError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.config.Endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unisphere: build request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("version", c.config.Version)

	c.logger.Debug("unisphere request",
		zap.String("path", path),
		zap.String("query", query.Encode()),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Body:       truncate(string(body), maxErrorBodyBytes),
		}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unisphere: decode %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

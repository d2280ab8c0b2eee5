package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/interfaces"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout bounds a single round trip including the body read.
const DefaultTimeout = 30 * time.Second

// Client implements the Runner interface over net/http.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout        time.Duration
	FollowRedirect bool
	UserAgent      string
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new HTTP client with the given options. Cookies set by
// responses are kept for the lifetime of the client.
func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		config: Config{
			Timeout:        DefaultTimeout,
			FollowRedirect: true,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = transport
	}
}

// WithCookieJar replaces the default in-memory cookie jar. A nil jar
// disables cookie handling.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.config.FollowRedirect = false
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.config.UserAgent = ua
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Run executes an HTTP request and returns the status code as text and the
// response body.
func (c *Client) Run(ctx context.Context, method, url, body string) (core.Result, error) {
	canonical, err := core.ParseMethod(method)
	if err != nil {
		return core.Result{}, err
	}

	httpReq, err := c.newRequest(ctx, canonical, url, body)
	if err != nil {
		return core.Result{}, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.Result{}, err
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return core.Result{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return core.Result{
		Status: strconv.Itoa(httpResp.StatusCode),
		Body:   string(bodyBytes),
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, url, body string) (*http.Request, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	return httpReq, nil
}

var _ interfaces.Runner = (*Client)(nil)

package atmos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	baseURL      string
	timeout      time.Duration
	transport    http.RoundTripper
	contentTypes []string
	logger       *zap.Logger
	now          func() time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout bounds every individual portal request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the clock used for billing period labels and download
// cache busters.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithContentTypes overrides the media types accepted from the download
// endpoint.
func WithContentTypes(types ...string) Option {
	return func(c *Client) {
		if len(types) > 0 {
			c.contentTypes = types
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		timeout:      30 * time.Second,
		transport:    http.DefaultTransport,
		contentTypes: defaultContentTypes,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// Timeout is the bound applied to each portal request.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// httpClient builds a client bound to a session's cookie jar. Downloads do
// not follow redirects so that a bounce to the login page is seen as such
// and costs exactly one request.
func (c *Client) httpClient(jar http.CookieJar, followRedirects bool) *http.Client {
	hc := &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   c.timeout,
	}
	if !followRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return hc
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/vnd.ms-excel,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", userAgent)
}

func (c *Client) logResponse(resp *http.Response, body []byte) {
	kind := "text"
	if c.acceptsContentType(resp.Header.Get("Content-Type")) {
		kind = "binary"
	}
	c.logger.Debug("portal response",
		zap.String("url", resp.Request.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.String("kind", kind),
		zap.Int("bytes", len(body)),
	)
}

// do sends a single request and reads the whole body. Statuses of 400 and
// above are transport failures; redirects are returned to the caller.
func (c *Client) do(ctx context.Context, hc *http.Client, method, urlStr string, form url.Values) (*http.Response, []byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, nil, err
	}
	c.setHeaders(req)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.logger.Debug("portal request", zap.String("method", method), zap.String("url", req.URL.Redacted()))

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Error("portal request failed", zap.String("method", method), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}
	c.logResponse(resp, respBody)

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Error("portal request failed",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", http.StatusText(resp.StatusCode)),
		)
		return nil, nil, fmt.Errorf("%w: %w", ErrTransport, &HTTPStatusError{
			Method:     method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	return resp, respBody, nil
}

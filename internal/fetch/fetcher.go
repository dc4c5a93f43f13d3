package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/harukit/sitegrep/internal/model"
)

// Fetch errors. The traversal engine treats all of them as skips; callers
// that need to distinguish can use errors.Is.
var (
	// ErrBadStatus is returned for non-2xx responses.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrNotHTML is returned when the response is not a page the crawler
	// can traverse (wrong content type).
	ErrNotHTML = errors.New("response is not an HTML page")
)

// Options configures an HTTPFetcher.
type Options struct {
	// Timeout is the per-request timeout. Must be positive.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps how many body bytes are read per response.
	MaxBodySize int64

	// ProxyAddress, when set, routes all connections through a SOCKS5
	// proxy at "host:port".
	ProxyAddress string

	// Headers are extra headers sent with every request, typically from
	// the per-site configuration file.
	Headers map[string]string

	// Cookie is an optional Cookie header value ("name=value; ...").
	Cookie string

	// Logger receives per-request debug events. Defaults to slog.Default.
	Logger *slog.Logger
}

// HTTPFetcher fetches pages over HTTP(S). It implements crawler.Fetcher.
//
// One fetcher is created per traversal target so that per-site headers and
// cookies from the configuration file never leak across sites.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string
	logger      *slog.Logger
}

// New creates an HTTPFetcher from the given options.
func New(opts Options) (*HTTPFetcher, error) {
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("invalid fetch timeout %v: must be positive", opts.Timeout)
	}
	if opts.MaxBodySize <= 0 {
		return nil, fmt.Errorf("invalid max body size %d: must be positive", opts.MaxBodySize)
	}

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not an *http.Transport")
	}
	transport = transport.Clone()

	if opts.ProxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("configure SOCKS5 proxy %s: %w", opts.ProxyAddress, err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", opts.ProxyAddress)
		}
		transport.DialContext = contextDialer.DialContext
		// The transport-level proxy must not also apply.
		transport.Proxy = nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
		headers:     opts.Headers,
		cookie:      opts.Cookie,
		logger:      logger,
	}, nil
}

// Client returns the underlying HTTP client so that other collaborators
// (the image download sink) reuse the same proxy and timeout settings.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// Fetch performs a GET request and returns the page. Network failures,
// non-2xx statuses, and non-HTML content types are all fetch errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	f.setHeaders(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing useful to do with a close error here

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, pageURL, resp.StatusCode)
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     resp.Header,
		FetchedAt:   time.Now(),
	}
	if !page.IsHTML() {
		return nil, fmt.Errorf("%w: %s has content type %q", ErrNotHTML, pageURL, page.ContentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", pageURL, err)
	}
	page.Body = body

	f.logger.Debug("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return page, nil
}

// setHeaders applies the standard and per-site headers to a request.
func (f *HTTPFetcher) setHeaders(req *http.Request) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
}

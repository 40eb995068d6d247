
package crawler

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNonHTML is returned for a 2xx response whose Content-Type is not HTML.
// It is wrapped with the URL and media type.
var ErrNonHTML = errors.New("non-html content")

// FetchError reports a page request that came back with a non-success status.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: http status %d", e.URL, e.Status)
}

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64, userAgent string) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: userAgent,
	}
}

// Fetch GETs rawURL and returns the (size capped) body, the final URL after
// redirects, the Content-Type header and the elapsed time.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", "", 0, fmt.Errorf("invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", "", 0, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", "", 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", "", 0, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") && mediaType != "" {
		// still allow if empty (some servers omit), otherwise reject non-html
		resp.Body.Close()
		return nil, "", "", 0, fmt.Errorf("%s: %w (%s)", rawURL, ErrNonHTML, mediaType)
	}

	var body io.ReadCloser = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, "", "", 0, err
		}
		body = &gzipBody{Reader: gz, raw: resp.Body}
	}

	finalURL := resp.Request.URL.String()
	elapsed := time.Since(start)
	return &limitedBody{Reader: io.LimitReader(body, h.sizeCap), c: body}, finalURL, contentType, elapsed, nil
}

// limitedBody enforces the size cap while still closing the underlying body.
type limitedBody struct {
	io.Reader
	c io.Closer
}

func (l *limitedBody) Close() error { return l.c.Close() }

type gzipBody struct {
	*gzip.Reader
	raw io.Closer
}

func (g *gzipBody) Close() error {
	g.Reader.Close()
	return g.raw.Close()
}

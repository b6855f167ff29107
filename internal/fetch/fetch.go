// Package fetch retrieves pages to scan from the network, either as served
// or rendered by a headless browser for pages that build their forms with
// JavaScript.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every plain request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; formclip/1.0)"

// Result holds a fetched page.
type Result struct {
	URL         string
	HTML        []byte
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a fetch.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Render loads the page in headless Chrome instead of a plain GET.
	Render bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Page retrieves rawURL. Rendered pages are always UTF-8; plain responses
// keep the server's content type so the charset can be decoded later.
func Page(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validate(rawURL); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if opts.Render {
		html, err := Render(ctx, rawURL, timeout)
		if err != nil {
			return nil, err
		}
		return &Result{
			URL:         rawURL,
			HTML:        []byte(html),
			ContentType: "text/html; charset=utf-8",
			StatusCode:  200,
		}, nil
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	resp, err := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeaders(opts.Headers).
		R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	if resp.IsError() {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP %d", resp.StatusCode())}
	}

	return &Result{
		URL:         rawURL,
		HTML:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
		StatusCode:  resp.StatusCode(),
	}, nil
}

func validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	return nil
}

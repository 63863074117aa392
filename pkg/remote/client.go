// Package remote wraps HTTP access to the archive mirror. A Client carries
// the shared timeout and User-Agent; a Resource represents one remote URL
// with lazily fetched, memoized headers.
package remote

import (
	"net/http"
	"time"
)

// DefaultTimeout is applied to every header probe and download unless the
// caller configures a different value.
const DefaultTimeout = 10 * time.Second

// Client handles HTTP operations against the archive.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a new HTTP client for archive operations.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Resource returns a Resource for the given URL backed by this client.
func (c *Client) Resource(url string) *Resource {
	return &Resource{
		url:    url,
		client: c,
	}
}

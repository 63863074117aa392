package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
)

// Resource is a single remote URL. Header metadata is fetched at most once
// per instance; both the result and a failure are memoized, so callers must
// construct a new Resource to retry a failed probe.
type Resource struct {
	url    string
	client *Client

	probed     bool
	headers    http.Header
	headersErr error
}

// URL returns the resource URL.
func (r *Resource) URL() string {
	return r.url
}

// Headers performs a HEAD request against the resource URL and returns the
// response headers. The result is memoized: at most one network round trip
// happens per Resource, including when the probe fails.
func (r *Resource) Headers(ctx context.Context) (http.Header, error) {
	if r.probed {
		return r.headers, r.headersErr
	}
	r.probed = true
	r.headers, r.headersErr = r.fetchHeaders(ctx)
	return r.headers, r.headersErr
}

func (r *Resource) fetchHeaders(ctx context.Context) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRemoteMetadata, err.Error())
	}
	req.Header.Set("User-Agent", r.client.userAgent)

	resp, err := r.client.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRemoteMetadata, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrRemoteMetadata, "HEAD %s: HTTP %d", r.url, resp.StatusCode)
	}
	return resp.Header, nil
}

// Exists reports whether the header probe succeeds. It never returns an
// error; any failure counts as "does not exist".
func (r *Resource) Exists(ctx context.Context) bool {
	_, err := r.Headers(ctx)
	return err == nil
}

// Size returns the Content-Length of the resource in bytes.
func (r *Resource) Size(ctx context.Context) (int64, error) {
	headers, err := r.Headers(ctx)
	if err != nil {
		return 0, err
	}
	value := headers.Get("Content-Length")
	if value == "" {
		return 0, errors.Wrapf(errors.ErrRemoteMetadata, "%s: no Content-Length header", r.url)
	}
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrRemoteMetadata, "%s: bad Content-Length %q", r.url, value)
	}
	return size, nil
}

// LastModified returns the Last-Modified time of the resource.
func (r *Resource) LastModified(ctx context.Context) (time.Time, error) {
	headers, err := r.Headers(ctx)
	if err != nil {
		return time.Time{}, err
	}
	value := headers.Get("Last-Modified")
	if value == "" {
		return time.Time{}, errors.Wrapf(errors.ErrRemoteMetadata, "%s: no Last-Modified header", r.url)
	}
	modified, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrRemoteMetadata, "%s: bad Last-Modified %q", r.url, value)
	}
	return modified, nil
}

// Download fetches the full resource body and writes it to dest. When
// overwrite is false and dest already exists the download is refused with
// ErrDestinationExists. Writes are not atomic: a partial file may remain on
// failure (known limitation, the tool performs no retries).
func (r *Resource) Download(ctx context.Context, dest string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return errors.Wrapf(errors.ErrDestinationExists, "%s", dest)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, http.NoBody)
	if err != nil {
		return errors.Wrap(errors.ErrTransfer, err.Error())
	}
	req.Header.Set("User-Agent", r.client.userAgent)

	resp, err := r.client.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrTransfer, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrTransfer, "GET %s: HTTP %d", r.url, resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(errors.ErrTransfer, err.Error())
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return errors.Wrap(errors.ErrTransfer, fmt.Sprintf("writing %s: %v", dest, err))
	}
	return nil
}

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_HeadersMemoized(t *testing.T) {
	var heads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads++
		}
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/file")
	for range 3 {
		_, err := res.Headers(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, heads, "headers must be fetched at most once per instance")
}

func TestResource_FailureMemoized(t *testing.T) {
	var heads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		heads++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/missing")
	assert.False(t, res.Exists(context.Background()))
	assert.False(t, res.Exists(context.Background()))
	assert.Equal(t, 1, heads, "failed probes must not be retried")

	_, err := res.Size(context.Background())
	assert.ErrorIs(t, err, errors.ErrRemoteMetadata)
}

func TestResource_SizeAndLastModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte("12345"))
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/file")

	size, err := res.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	modified, err := res.LastModified(context.Background())
	require.NoError(t, err)
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.True(t, modified.Equal(want), "got %v", modified)
}

func TestResource_LastModifiedMissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/file")
	_, err := res.LastModified(context.Background())
	assert.ErrorIs(t, err, errors.ErrRemoteMetadata)
}

func TestResource_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("package bytes"))
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/pkg")
	dest := filepath.Join(t.TempDir(), "pkg.tar.zst")

	require.NoError(t, res.Download(context.Background(), dest, false))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "package bytes", string(data))

	// Second download without overwrite must be refused.
	err = res.Download(context.Background(), dest, false)
	assert.ErrorIs(t, err, errors.ErrDestinationExists)

	// With overwrite it succeeds.
	require.NoError(t, res.Download(context.Background(), dest, true))
}

func TestResource_DownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg-test").Resource(srv.URL + "/pkg")
	err := res.Download(context.Background(), filepath.Join(t.TempDir(), "out"), false)
	assert.ErrorIs(t, err, errors.ErrTransfer)
}

func TestClient_UserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	res := NewClient(time.Second, "waypkg/0.1.0").Resource(srv.URL + "/file")
	res.Exists(context.Background())
	assert.Equal(t, "waypkg/0.1.0", agent)
}

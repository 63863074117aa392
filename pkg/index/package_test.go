package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *remote.Client {
	return remote.NewClient(time.Second, "waypkg-test")
}

func TestNewPackage_Grammar(t *testing.T) {
	tests := []struct {
		basename string
		name     string
		epoch    int
		version  string
		release  string
		arch     string
	}{
		{"zsh-5.8-1-x86_64", "zsh", 0, "5.8", "1", "x86_64"},
		{"gtk-doc-1.33-1-any", "gtk-doc", 0, "1.33", "1", "any"},
		{"dvd+rw-tools-7.1-9-x86_64", "dvd+rw-tools", 0, "7.1", "9", "x86_64"},
		{"vi-1:070224-4-x86_64", "vi", 1, "070224", "4", "x86_64"},
		{"libreoffice-still-7.5.9-2-x86_64", "libreoffice-still", 0, "7.5.9", "2", "x86_64"},
		{"java8-openjdk-3:8.u402-1-x86_64", "java8-openjdk", 3, "8.u402", "1", "x86_64"},
	}
	for _, tt := range tests {
		t.Run(tt.basename, func(t *testing.T) {
			pkg, err := NewPackage("https://example.org/", tt.basename, testClient())
			require.NoError(t, err)
			assert.Equal(t, tt.name, pkg.Name)
			assert.Equal(t, tt.epoch, pkg.Epoch)
			assert.Equal(t, tt.version, pkg.Version)
			assert.Equal(t, tt.release, pkg.Release)
			assert.Equal(t, tt.arch, pkg.Arch)
			assert.Equal(t, tt.basename, pkg.Basename())
		})
	}
}

func TestNewPackage_ParseFailure(t *testing.T) {
	for _, basename := range []string{"", "zsh", "zsh-5.8", "zsh-5.8-1", "zsh 5.8 1 x86_64"} {
		t.Run(basename, func(t *testing.T) {
			_, err := NewPackage("https://example.org/", basename, testClient())
			assert.ErrorIs(t, err, errors.ErrMetadataParse)
		})
	}
}

func TestPackage_FullVersion(t *testing.T) {
	pkg, err := NewPackage("https://example.org/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)
	assert.Equal(t, "5.8-1", pkg.FullVersion())

	pkg, err = NewPackage("https://example.org/", "vi-1:070224-4-x86_64", testClient())
	require.NoError(t, err)
	assert.Equal(t, "1:070224-4", pkg.FullVersion())
}

func TestPackage_ResolveExtensionPriority(t *testing.T) {
	// Only the second-priority extension exists; resolution must fall
	// through to it.
	var probes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
		if r.URL.Path == "/zsh-5.8-1-x86_64.pkg.tar.xz" {
			w.Write([]byte("artifact"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pkg, err := NewPackage(srv.URL+"/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)

	res, err := pkg.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/zsh-5.8-1-x86_64.pkg.tar.xz", res.URL())
	assert.Equal(t, 2, probes)

	// Memoized: a second call does not probe again.
	_, err = pkg.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, probes)

	filename, err := pkg.Filename(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zsh-5.8-1-x86_64.pkg.tar.xz", filename)
}

func TestPackage_ResolvePrefersFirstExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("artifact"))
	}))
	defer srv.Close()

	pkg, err := NewPackage(srv.URL+"/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)

	res, err := pkg.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/zsh-5.8-1-x86_64.pkg.tar.zst", res.URL())
}

func TestPackage_ResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pkg, err := NewPackage(srv.URL+"/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)

	_, err = pkg.Resolve(context.Background())
	assert.ErrorIs(t, err, errors.ErrArtifactNotFound)
	assert.Contains(t, err.Error(), ".pkg.tar.zst")
	assert.Contains(t, err.Error(), ".pkg.tar.xz")
}

func TestPackage_FetchWithSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/zsh-5.8-1-x86_64.pkg.tar.zst":
			w.Write([]byte("artifact"))
		case "/zsh-5.8-1-x86_64.pkg.tar.zst.sig":
			w.Write([]byte("signature"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Chdir(t.TempDir())

	pkg, err := NewPackage(srv.URL+"/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)
	require.NoError(t, pkg.Fetch(context.Background(), false))

	data, err := os.ReadFile("zsh-5.8-1-x86_64.pkg.tar.zst")
	require.NoError(t, err)
	assert.Equal(t, "artifact", string(data))

	sig, err := os.ReadFile("zsh-5.8-1-x86_64.pkg.tar.zst.sig")
	require.NoError(t, err)
	assert.Equal(t, "signature", string(sig))
}

func TestPackage_FetchSignatureAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/zsh-5.8-1-x86_64.pkg.tar.zst" {
			w.Write([]byte("artifact"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	t.Chdir(t.TempDir())

	pkg, err := NewPackage(srv.URL+"/", "zsh-5.8-1-x86_64", testClient())
	require.NoError(t, err)
	require.NoError(t, pkg.Fetch(context.Background(), false))

	_, err = os.Stat("zsh-5.8-1-x86_64.pkg.tar.zst.sig")
	assert.True(t, os.IsNotExist(err), "no signature file expected")
}

func TestPackage_Compare(t *testing.T) {
	mk := func(basename string) *Package {
		pkg, err := NewPackage("https://example.org/", basename, testClient())
		require.NoError(t, err)
		return pkg
	}

	tests := []struct {
		a, b string
		want int
	}{
		{"zsh-5.8-1-x86_64", "zsh-5.9-1-x86_64", -1},
		{"zsh-5.9-1-x86_64", "zsh-5.9-1-x86_64", 0},
		{"zsh-5.9-2-x86_64", "zsh-5.9-1-x86_64", 1},
		// Epoch trumps version.
		{"vi-1:070224-4-x86_64", "vi-2:060101-1-x86_64", -1},
		{"vi-1:070224-4-x86_64", "vi-070224-4-x86_64", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, mk(tt.a).Compare(mk(tt.b)))
		})
	}
}

// Package testutil provides helpers for building archive fixtures in tests:
// a flat-file HTTP server and writers for the compressed index and dummy
// package artifacts.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mholt/archives"
)

// NewArchiveServer serves dir as a flat archive mirror and returns its base
// URL, trailing slash included. The server is shut down with the test.
func NewArchiveServer(t *testing.T, dir string) string {
	t.Helper()
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	t.Cleanup(srv.Close)
	return srv.URL + "/"
}

// WriteIndex writes an xz-compressed index file at path listing one
// basename per line.
func WriteIndex(t *testing.T, path string, basenames []string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating index fixture: %v", err)
	}
	defer func() { _ = file.Close() }()

	writer, err := archives.Xz{}.OpenWriter(file)
	if err != nil {
		t.Fatalf("opening xz writer: %v", err)
	}
	if _, err := writer.Write([]byte(strings.Join(basenames, "\n") + "\n")); err != nil {
		t.Fatalf("writing index fixture: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing xz writer: %v", err)
	}
}

// WriteArtifact writes a dummy package artifact into dir.
func WriteArtifact(t *testing.T, dir, filename string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		t.Fatalf("writing artifact fixture: %v", err)
	}
}

// ReadXz decompresses an xz file, for asserting on fixture contents.
func ReadXz(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer func() { _ = file.Close() }()

	reader, err := archives.Xz{}.OpenReader(file)
	if err != nil {
		t.Fatalf("opening xz reader: %v", err)
	}
	defer func() { _ = reader.Close() }()

	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}

package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/fsutil"
	"github.com/glorpus-work/waypkg/pkg/remote"
	"github.com/mholt/archives"
)

// IndexBasename is the name of the compressed index file, both on the
// remote archive and in the local cache.
const IndexBasename = "index.0.xz"

// UpdatePolicy controls whether the cached index is refreshed from the
// remote archive.
type UpdatePolicy int

const (
	// PolicyConditional refreshes only when the remote index looks newer
	// than the local cache. This is the default.
	PolicyConditional UpdatePolicy = iota
	// PolicyNever skips the remote check entirely.
	PolicyNever
	// PolicyForce always re-downloads the index.
	PolicyForce
)

// Manager owns the cached index file and the parsed Index built from it.
type Manager struct {
	archiveURL string
	cacheDir   string
	client     *remote.Client
	log        *slog.Logger

	index *Index
}

// NewManager creates a Manager for the given archive. The archive URL must
// end with a slash so that basenames can be appended directly.
func NewManager(archiveURL, cacheDir string, client *remote.Client, log *slog.Logger) (*Manager, error) {
	if !strings.HasSuffix(archiveURL, "/") {
		return nil, errors.Wrapf(errors.ErrInvalidArchiveURL, "%q", archiveURL)
	}
	return &Manager{
		archiveURL: archiveURL,
		cacheDir:   cacheDir,
		client:     client,
		log:        log,
	}, nil
}

// ArchiveURL returns the archive base URL.
func (m *Manager) ArchiveURL() string {
	return m.archiveURL
}

// IndexPath returns the local cached index file path.
func (m *Manager) IndexPath() string {
	return filepath.Join(m.cacheDir, IndexBasename)
}

// IndexURL returns the remote index URL.
func (m *Manager) IndexURL() string {
	return m.archiveURL + IndexBasename
}

// Refresh brings the cached index file up to date according to policy.
//
// The conditional check compares remote size and last-modified time against
// the local file. It fails open toward freshness: when either remote value
// cannot be obtained, the index is downloaded unconditionally. This is a
// staleness heuristic, not an integrity check.
func (m *Manager) Refresh(ctx context.Context, policy UpdatePolicy) error {
	if policy == PolicyNever {
		m.log.Debug("index refresh skipped", "policy", "never")
		return nil
	}

	res := m.client.Resource(m.IndexURL())
	if policy == PolicyForce {
		m.log.Debug("index refresh forced")
		return m.download(ctx, res)
	}

	size, sizeErr := res.Size(ctx)
	modified, modErr := res.LastModified(ctx)
	if sizeErr != nil || modErr != nil {
		m.log.Debug("remote index metadata unavailable, downloading", "url", m.IndexURL())
		return m.download(ctx, res)
	}

	stat, err := os.Stat(m.IndexPath())
	if err != nil {
		m.log.Debug("no usable local index cache, downloading", "path", m.IndexPath())
		return m.download(ctx, res)
	}

	if size != stat.Size() {
		m.log.Debug("index size changed", "local", stat.Size(), "remote", size)
		return m.download(ctx, res)
	}
	if modified.After(stat.ModTime()) {
		m.log.Debug("remote index is newer", "local", stat.ModTime(), "remote", modified)
		return m.download(ctx, res)
	}

	m.log.Debug("index cache is current", "path", m.IndexPath())
	return nil
}

func (m *Manager) download(ctx context.Context, res *remote.Resource) error {
	if err := fsutil.EnsureDir(m.cacheDir); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}
	if err := res.Download(ctx, m.IndexPath(), true); err != nil {
		return err
	}
	m.index = nil

	// Pin the local mtime to the remote Last-Modified so the conditional
	// comparison stays stable across invocations.
	if modified, err := res.LastModified(ctx); err == nil {
		_ = os.Chtimes(m.IndexPath(), modified, modified)
	}
	m.log.Info("index downloaded", "url", res.URL())
	return nil
}

// Load decompresses the cached index file and parses it into an Index. The
// result is memoized for the lifetime of the Manager.
func (m *Manager) Load(ctx context.Context) (*Index, error) {
	if m.index != nil {
		return m.index, nil
	}

	file, err := os.Open(m.IndexPath())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open index cache %s", m.IndexPath())
	}
	defer func() { _ = file.Close() }()

	format, stream, err := archives.Identify(ctx, m.IndexPath(), file)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot identify index compression for %s", m.IndexPath())
	}
	decomp, ok := format.(archives.Compression)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMetadataParse, "index file %s is not a compressed stream", m.IndexPath())
	}
	reader, err := decomp.OpenReader(stream)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decompress index %s", m.IndexPath())
	}
	defer func() { _ = reader.Close() }()

	idx, err := ParseIndex(reader, m.archiveURL, m.client)
	if err != nil {
		return nil, err
	}
	m.log.Debug("index loaded", "entries", idx.Len())
	m.index = idx
	return idx, nil
}

// SearchCriteria filters index entries. Name, Version and Release are
// unanchored regular expressions; an empty Version or Release matches
// everything. Archs is an exact-membership filter; empty means unfiltered.
type SearchCriteria struct {
	Name    string
	Version string
	Release string
	Archs   []string
}

// Search returns the packages matching crit in index order. An empty result
// is a valid no-match outcome, not an error.
func (m *Manager) Search(ctx context.Context, crit SearchCriteria) ([]*Package, error) {
	idx, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	matcher, err := newMatcher(crit)
	if err != nil {
		return nil, err
	}

	var result []*Package
	for _, pkg := range idx.Packages() {
		if matcher.matches(pkg) {
			result = append(result, pkg)
		}
	}
	return result, nil
}

// CacheInfo describes the local index cache for display.
type CacheInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Age     time.Duration
}

// CacheInfo stats the cached index file.
func (m *Manager) CacheInfo() (*CacheInfo, error) {
	stat, err := os.Stat(m.IndexPath())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat index cache %s", m.IndexPath())
	}
	return &CacheInfo{
		Path:    m.IndexPath(),
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
		Age:     time.Since(stat.ModTime()),
	}, nil
}

// CleanCache removes the cached index file. A missing file is not an error.
func (m *Manager) CleanCache() error {
	if err := os.Remove(m.IndexPath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove index cache %s", m.IndexPath())
	}
	m.index = nil
	return nil
}

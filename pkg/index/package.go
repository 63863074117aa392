package index

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/remote"
	goversion "github.com/hashicorp/go-version"
)

// basenameRe is the package basename grammar: name-[epoch:]version-release-arch.
// The name may itself contain hyphens; version and release never do.
var basenameRe = regexp.MustCompile(`^([\w@._+-]+)-(?:(\d+):)?([^:-]+)-([^-]+)-(\w+)$`)

// artifactExtensions are the filename extensions probed when resolving a
// package's artifact URL, highest priority first.
var artifactExtensions = []string{".pkg.tar.zst", ".pkg.tar.xz"}

// SignatureSuffix is appended to an artifact URL to locate its detached
// signature.
const SignatureSuffix = ".sig"

// Package is one archive index entry, parsed into its package fields. The
// artifact URL is resolved lazily and memoized; a Package belongs to the
// Index that created it and is read-only for downstream consumers.
type Package struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string

	basename string
	baseURL  string
	client   *remote.Client

	resolved *remote.Resource
}

// NewPackage parses an index basename into a Package. The basename must
// match the package grammar; anything else is a hard parse failure.
func NewPackage(baseURL, basename string, client *remote.Client) (*Package, error) {
	m := basenameRe.FindStringSubmatch(basename)
	if m == nil {
		return nil, errors.Wrapf(errors.ErrMetadataParse, "%q", basename)
	}

	epoch := 0
	if m[2] != "" {
		var err error
		epoch, err = strconv.Atoi(m[2])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrMetadataParse, "%q: bad epoch %q", basename, m[2])
		}
	}

	return &Package{
		Name:     m[1],
		Epoch:    epoch,
		Version:  m[3],
		Release:  m[4],
		Arch:     m[5],
		basename: basename,
		baseURL:  baseURL,
		client:   client,
	}, nil
}

// Basename returns the raw index entry this package was parsed from.
func (p *Package) Basename() string {
	return p.basename
}

// FullVersion returns the display version string, epoch-prefixed when the
// epoch is non-zero.
func (p *Package) FullVersion() string {
	if p.Epoch > 0 {
		return fmt.Sprintf("%d:%s-%s", p.Epoch, p.Version, p.Release)
	}
	return fmt.Sprintf("%s-%s", p.Version, p.Release)
}

// Resolve probes the candidate artifact extensions in priority order and
// returns the first that exists. The successful resolution is memoized;
// failures are not, so a later call probes again.
func (p *Package) Resolve(ctx context.Context) (*remote.Resource, error) {
	if p.resolved != nil {
		return p.resolved, nil
	}

	base := p.baseURL + p.basename
	for _, ext := range artifactExtensions {
		res := p.client.Resource(base + ext)
		if res.Exists(ctx) {
			p.resolved = res
			return res, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrArtifactNotFound, "%s (tried %s)",
		base, strings.Join(artifactExtensions, ", "))
}

// Filename returns the final path segment of the resolved artifact URL.
func (p *Package) Filename(ctx context.Context) (string, error) {
	res, err := p.Resolve(ctx)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(res.URL())
	if err != nil {
		return "", errors.Wrap(err, "failed to parse artifact URL")
	}
	return path.Base(parsed.Path), nil
}

// Size returns the artifact size in bytes.
func (p *Package) Size(ctx context.Context) (int64, error) {
	res, err := p.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	return res.Size(ctx)
}

// LastModified returns the artifact modification time.
func (p *Package) LastModified(ctx context.Context) (time.Time, error) {
	res, err := p.Resolve(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return res.LastModified(ctx)
}

// Fetch downloads the artifact into the current working directory under
// Filename, then probes for a detached signature and downloads it alongside
// when present. Signature absence is not an error; a failed download of an
// existing signature is.
func (p *Package) Fetch(ctx context.Context, overwrite bool) error {
	res, err := p.Resolve(ctx)
	if err != nil {
		return err
	}
	filename, err := p.Filename(ctx)
	if err != nil {
		return err
	}
	if err := res.Download(ctx, filename, overwrite); err != nil {
		return err
	}

	sig := p.client.Resource(res.URL() + SignatureSuffix)
	if !sig.Exists(ctx) {
		return nil
	}
	return sig.Download(ctx, filename+SignatureSuffix, overwrite)
}

// Compare orders two packages of the same name: epoch first, then version,
// then release. Versions compare per go-version semantics, falling back to
// plain string comparison when a token does not parse.
func (p *Package) Compare(other *Package) int {
	if p.Epoch != other.Epoch {
		if p.Epoch < other.Epoch {
			return -1
		}
		return 1
	}
	if c := compareToken(p.Version, other.Version); c != 0 {
		return c
	}
	return compareToken(p.Release, other.Release)
}

func compareToken(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}

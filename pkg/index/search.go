package index

import (
	"regexp"
	"slices"

	"github.com/glorpus-work/waypkg/pkg/errors"
)

// matcher holds the compiled search patterns. All matching is unanchored
// regexp search, not full-match.
type matcher struct {
	name    *regexp.Regexp
	version *regexp.Regexp
	release *regexp.Regexp
	archs   []string
}

func newMatcher(crit SearchCriteria) (*matcher, error) {
	m := &matcher{archs: crit.Archs}

	var err error
	if m.name, err = compilePattern(crit.Name); err != nil {
		return nil, err
	}
	if crit.Version != "" {
		if m.version, err = compilePattern(crit.Version); err != nil {
			return nil, err
		}
	}
	if crit.Release != "" {
		if m.release, err = compilePattern(crit.Release); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidPattern, "%q: %v", pattern, err)
	}
	return re, nil
}

func (m *matcher) matches(pkg *Package) bool {
	if !m.name.MatchString(pkg.Name) {
		return false
	}
	if len(m.archs) > 0 && !slices.Contains(m.archs, pkg.Arch) {
		return false
	}
	if m.version != nil && !m.version.MatchString(pkg.Version) {
		return false
	}
	if m.release != nil && !m.release.MatchString(pkg.Release) {
		return false
	}
	return true
}

// Package index maintains the locally cached archive index: refreshing it
// from the remote mirror, parsing its entries into Packages and searching
// the result.
package index

import (
	"bufio"
	"io"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/remote"
)

// Index is the parsed archive index: one Package per index line, in file
// order. It is built fresh on every load and never mutated afterwards.
type Index struct {
	packages []*Package
}

// ParseIndex reads a decompressed index line by line and parses every line
// into a Package. Any line failing the package grammar aborts the whole
// parse; there is no partial index.
func ParseIndex(reader io.Reader, baseURL string, client *remote.Client) (*Index, error) {
	idx := &Index{}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		pkg, err := NewPackage(baseURL, line, client)
		if err != nil {
			return nil, err
		}
		idx.packages = append(idx.packages, pkg)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read index")
	}
	return idx, nil
}

// Packages returns all packages in index order.
func (idx *Index) Packages() []*Package {
	return idx.packages
}

// Len returns the number of index entries.
func (idx *Index) Len() int {
	return len(idx.packages)
}

// FilterNewest keeps only the highest-versioned package per name,
// preserving the original order of the survivors.
func FilterNewest(pkgs []*Package) []*Package {
	newest := make(map[string]*Package, len(pkgs))
	for _, pkg := range pkgs {
		if cur, ok := newest[pkg.Name]; !ok || pkg.Compare(cur) > 0 {
			newest[pkg.Name] = pkg
		}
	}

	result := make([]*Package, 0, len(newest))
	for _, pkg := range pkgs {
		if newest[pkg.Name] == pkg {
			result = append(result, pkg)
		}
	}
	return result
}

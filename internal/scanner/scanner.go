// Package scanner discovers the crate directories that make up a corpus.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FactsDirName is the subdirectory the compiler writes facts into.
const FactsDirName = "nll-facts"

// Crate is one crate root of the corpus.
type Crate struct {
	Name     string // base name of Root
	Root     string // directory given on the command line or found in the work dir
	FactsDir string // Root/nll-facts if present, else Root
}

// Options configures crate discovery.
type Options struct {
	WorkDir    string           // listed when no explicit roots are given
	SkipHidden bool             // skip dot-prefixed entries of WorkDir
	Exclude    []ExcludePattern // crate names never returned
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		WorkDir:    "work",
		SkipHidden: true,
	}
}

// Scanner resolves crate roots.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Crates returns the crates named by roots, or every directory in the work
// directory when roots is empty. Paths that are not directories are dropped,
// as are crates matching an exclude pattern.
func (s *Scanner) Crates(roots []string) ([]Crate, error) {
	if len(roots) == 0 {
		entries, err := os.ReadDir(s.opts.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("listing work directory: %w", err)
		}
		for _, e := range entries {
			if s.opts.SkipHidden && strings.HasPrefix(e.Name(), ".") {
				continue
			}
			roots = append(roots, filepath.Join(s.opts.WorkDir, e.Name()))
		}
	}

	var crates []Crate
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		c := Resolve(root)
		if excluded(c.Name, s.opts.Exclude) {
			continue
		}
		crates = append(crates, c)
	}
	return crates, nil
}

// Resolve picks the facts directory of a crate root.
func Resolve(root string) Crate {
	c := Crate{
		Name:     filepath.Base(filepath.Clean(root)),
		Root:     root,
		FactsDir: root,
	}
	nested := filepath.Join(root, FactsDirName)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		c.FactsDir = nested
	}
	return c
}

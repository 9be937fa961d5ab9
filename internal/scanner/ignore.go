package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExcludePattern is a glob over crate names. A leading ! re-includes
// crates excluded by an earlier pattern.
type ExcludePattern struct {
	pattern    string
	isNegation bool
}

// ParseExcludePattern parses one pattern line.
func ParseExcludePattern(pattern string) (ExcludePattern, error) {
	p := ExcludePattern{pattern: pattern}
	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		p.pattern = pattern[1:]
	}
	if _, err := filepath.Match(p.pattern, ""); err != nil {
		return ExcludePattern{}, fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
	}
	return p, nil
}

// Match reports whether the crate name matches the pattern, ignoring negation.
func (p ExcludePattern) Match(name string) bool {
	ok, _ := filepath.Match(p.pattern, name)
	return ok
}

// IsNegation returns true if this pattern re-includes matches.
func (p ExcludePattern) IsNegation() bool {
	return p.isNegation
}

// ParseExcludePatterns parses every pattern in order.
func ParseExcludePatterns(lines []string) ([]ExcludePattern, error) {
	patterns := make([]ExcludePattern, 0, len(lines))
	for _, line := range lines {
		p, err := ParseExcludePattern(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// LoadExcludeFile reads patterns from a file, one per line. Blank lines and
// lines starting with # are skipped.
func LoadExcludeFile(path string) ([]ExcludePattern, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseExcludePatterns(lines)
}

// excluded applies patterns in order; later matches override earlier ones.
func excluded(name string, patterns []ExcludePattern) bool {
	ignored := false
	for _, p := range patterns {
		if p.Match(name) {
			ignored = !p.IsNegation()
		}
	}
	return ignored
}

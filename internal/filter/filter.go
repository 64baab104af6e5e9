// Package filter removes entries from a listing using gitignore-style
// patterns. Excluding a container also excludes everything beneath it.
package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/holonoms/ghtree/internal/hierarchy"
)

// IgnoreFile is the per-project pattern file read by LoadFile.
const IgnoreFile = ".ghtreeignore"

// Filter matches entry paths against a set of patterns.
type Filter struct {
	patterns []string
	matcher  gitignore.Matcher
}

// New creates a Filter from gitignore-style pattern lines. Blank lines and
// comments are skipped.
func New(lines ...string) *Filter {
	f := &Filter{}
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.patterns = append(f.patterns, line)
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	f.matcher = gitignore.NewMatcher(patterns)
	return f
}

// Parse creates a Filter from the contents of an ignore file.
func Parse(text string) *Filter {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return New(lines...)
}

// LoadFile reads patterns from path. A missing file yields an empty filter.
func LoadFile(path string) (*Filter, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}
	return Parse(string(data)), nil
}

// Merge returns a filter holding the patterns of f followed by those of
// other. Later patterns win, so negations in other can re-include paths.
func (f *Filter) Merge(other *Filter) *Filter {
	if other == nil {
		return f
	}
	return New(append(append([]string{}, f.patterns...), other.patterns...)...)
}

// Patterns returns the active pattern lines.
func (f *Filter) Patterns() []string {
	return f.patterns
}

// Empty reports whether the filter excludes nothing.
func (f *Filter) Empty() bool {
	return len(f.patterns) == 0
}

// Excluded reports whether path, or any container above it, matches.
func (f *Filter) Excluded(path string, kind hierarchy.Kind) bool {
	if f.Empty() {
		return false
	}
	parts := strings.Split(path, hierarchy.Separator)
	for i := 1; i < len(parts); i++ {
		if f.matcher.Match(parts[:i], true) {
			return true
		}
	}
	return f.matcher.Match(parts, kind == hierarchy.Container)
}

// Apply returns the entries that are not excluded, in input order, and the
// number removed.
func (f *Filter) Apply(entries []hierarchy.Entry) ([]hierarchy.Entry, int) {
	if f.Empty() {
		return entries, 0
	}

	kept := make([]hierarchy.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Excluded(e.Path, e.Kind) {
			continue
		}
		kept = append(kept, e)
	}
	return kept, len(entries) - len(kept)
}

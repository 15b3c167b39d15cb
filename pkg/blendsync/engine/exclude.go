package engine

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher decides whether a relative path falls under an excluded name.
// A path is excluded when any of its components matches a name exactly
// or as a glob pattern.
type Matcher struct {
	literal  map[string]struct{}
	patterns []glob.Glob
}

// NewMatcher compiles the excluded names. Names without glob metacharacters
// are compared literally; patterns that fail to compile are also treated
// as literals.
func NewMatcher(names []string) *Matcher {
	m := &Matcher{literal: make(map[string]struct{})}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.ContainsAny(name, "*?[{") {
			m.literal[name] = struct{}{}
			continue
		}
		g, err := glob.Compile(name)
		if err != nil {
			m.literal[name] = struct{}{}
			continue
		}
		m.patterns = append(m.patterns, g)
	}
	return m
}

// Empty reports whether the matcher excludes nothing.
func (m *Matcher) Empty() bool {
	return m == nil || (len(m.literal) == 0 && len(m.patterns) == 0)
}

// MatchName reports whether a single path component is excluded.
func (m *Matcher) MatchName(name string) bool {
	if m.Empty() {
		return false
	}
	if _, ok := m.literal[name]; ok {
		return true
	}
	for _, g := range m.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Excluded reports whether any component of relPath is excluded.
func (m *Matcher) Excluded(relPath string) bool {
	if m.Empty() {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if part == "" || part == "." {
			continue
		}
		if m.MatchName(part) {
			return true
		}
	}
	return false
}

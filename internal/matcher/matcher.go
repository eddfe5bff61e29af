// Package matcher selects product numbers by exact number or shell-style
// glob pattern (*, ?, []).
package matcher

import (
	"path"
	"strings"

	"github.com/agentstation/catalogbridge/pkg/errors"
)

// Set is a compiled list of product selectors. The zero value and an empty
// Set match everything.
type Set struct {
	exact []string
	index map[string]bool
	globs []string
}

// New compiles selectors. Entries containing glob metacharacters are patterns,
// everything else must match a product number exactly. Blank entries are ignored.
func New(selectors []string) (*Set, error) {
	s := &Set{index: make(map[string]bool)}
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if !IsPattern(sel) {
			if !s.index[sel] {
				s.index[sel] = true
				s.exact = append(s.exact, sel)
			}
			continue
		}
		if _, err := path.Match(sel, ""); err != nil {
			return nil, errors.NewValidationError("product", sel, "invalid pattern: "+err.Error())
		}
		s.globs = append(s.globs, sel)
	}
	return s, nil
}

// IsPattern reports whether sel contains glob metacharacters.
func IsPattern(sel string) bool {
	return strings.ContainsAny(sel, "*?[")
}

// Empty reports whether the set has no selectors.
func (s *Set) Empty() bool {
	return s == nil || (len(s.exact) == 0 && len(s.globs) == 0)
}

// Match reports whether number is selected. Matching is case-sensitive.
func (s *Set) Match(number string) bool {
	if s.Empty() {
		return true
	}
	if s.index[number] {
		return true
	}
	for _, g := range s.globs {
		// patterns are validated in New
		if ok, _ := path.Match(g, number); ok {
			return true
		}
	}
	return false
}

// Exact returns the exact numbers in the order given.
func (s *Set) Exact() []string {
	if s == nil {
		return nil
	}
	return s.exact
}

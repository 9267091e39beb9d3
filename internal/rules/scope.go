package rules

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
)

// compiledScope is RuleScope with regex/glob fields pre-compiled once
// per rule instance.
type compiledScope struct {
	includeRoles    map[string]bool
	excludeRoles    map[string]bool
	includePackages []*regexp.Regexp
	excludePackages []*regexp.Regexp
	includeGlobs    []glob.Glob
	excludeGlobs    []glob.Glob
}

func compileScope(s RuleScope) (compiledScope, error) {
	var cs compiledScope

	if len(s.IncludeRoles) > 0 {
		cs.includeRoles = toSet(s.IncludeRoles)
	}
	if len(s.ExcludeRoles) > 0 {
		cs.excludeRoles = toSet(s.ExcludeRoles)
	}

	for _, pat := range s.IncludePackages {
		re, err := regexp.Compile(pat)
		if err != nil {
			return cs, fmt.Errorf("invalid includePackages regex %q: %w", pat, err)
		}
		cs.includePackages = append(cs.includePackages, re)
	}
	for _, pat := range s.ExcludePackages {
		re, err := regexp.Compile(pat)
		if err != nil {
			return cs, fmt.Errorf("invalid excludePackages regex %q: %w", pat, err)
		}
		cs.excludePackages = append(cs.excludePackages, re)
	}

	for _, pat := range s.IncludeGlobs {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return cs, fmt.Errorf("invalid includeGlobs pattern %q: %w", pat, err)
		}
		cs.includeGlobs = append(cs.includeGlobs, g)
	}
	for _, pat := range s.ExcludeGlobs {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return cs, fmt.Errorf("invalid excludeGlobs pattern %q: %w", pat, err)
		}
		cs.excludeGlobs = append(cs.excludeGlobs, g)
	}

	return cs, nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// InScope reports whether class (with its assigned role) is in scope
// checks in order: role assignment allowed, package regex in/exclude,
// and path glob in/exclude.
func (cs compiledScope) InScope(class facts.ClassFact, role string) bool {
	if cs.excludeRoles != nil && cs.excludeRoles[role] {
		return false
	}
	if cs.includeRoles != nil && !cs.includeRoles[role] {
		return false
	}

	if len(cs.includePackages) > 0 {
		matched := false
		for _, re := range cs.includePackages {
			if re.MatchString(class.PackageName) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range cs.excludePackages {
		if re.MatchString(class.PackageName) {
			return false
		}
	}

	path := class.Location.DisplayPath()
	if len(cs.includeGlobs) > 0 {
		matched := false
		for _, g := range cs.includeGlobs {
			if g.Match(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range cs.excludeGlobs {
		if g.Match(path) {
			return false
		}
	}

	return true
}

// inScopeClasses returns every project class in idx that compiledScope
// admits, given idx's role assignments.
func inScopeClasses(idx *factindex.Index, cs compiledScope) []facts.ClassFact {
	var out []facts.ClassFact
	for _, c := range idx.Classes() {
		if cs.InScope(c, idx.RoleOf(c.FQName)) {
			out = append(out, c)
		}
	}
	return out
}

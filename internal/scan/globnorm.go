package scan

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// NormalizePath converts a possibly-Windows path into the engine's
// canonical external form: forward slashes, no drive letter, no
// leading slash. Every path stored on a SourceLocation or matched
// against a glob goes through this first.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		p = p[2:]
	}
	return strings.TrimPrefix(p, "/")
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// normalizeGlobPattern normalizes a pattern before compilation the same
// way NormalizePath normalizes paths (forward slashes, no drive letter,
// no leading slash); a pattern not already anchored with a leading
// "**/" is treated as relative, matching anywhere in the path exactly
// as if "**/" had been prepended.
func normalizeGlobPattern(pattern string) string {
	pattern = NormalizePath(pattern)
	if strings.HasPrefix(pattern, "**/") {
		return pattern
	}
	return "**/" + pattern
}

// CompileGlob compiles one user-supplied glob pattern (`*` matches a
// run of non-separator characters, `?` exactly one, `**` any number of
// path segments) into a matcher over forward-slash normalized paths.
func CompileGlob(pattern string) (glob.Glob, error) {
	normalized := normalizeGlobPattern(pattern)
	nested, err := glob.Compile(normalized, '/')
	if err != nil {
		return nil, fmt.Errorf("scan: invalid glob %q: %w", pattern, err)
	}
	// gobwas/glob's "**/" needs at least one leading segment, so the
	// zero-segment case is matched by the pattern without that prefix.
	bare, err := glob.Compile(strings.TrimPrefix(normalized, "**/"), '/')
	if err != nil {
		return nil, fmt.Errorf("scan: invalid glob %q: %w", pattern, err)
	}
	return anyDepthGlob{bare: bare, nested: nested}, nil
}

// anyDepthGlob matches a path when either the bare or the "**/"-prefixed
// form of a pattern matches it.
type anyDepthGlob struct{ bare, nested glob.Glob }

func (g anyDepthGlob) Match(s string) bool { return g.bare.Match(s) || g.nested.Match(s) }

// GlobSet is a compiled include/exclude pair, used for both
// outputsGlobs and jarGlobs.
type GlobSet struct {
	Include []glob.Glob
	Exclude []glob.Glob
}

// CompileGlobSet compiles the raw include/exclude pattern lists from
// configuration into a GlobSet.
func CompileGlobSet(include, exclude []string) (GlobSet, error) {
	var set GlobSet
	for _, p := range include {
		g, err := CompileGlob(p)
		if err != nil {
			return GlobSet{}, err
		}
		set.Include = append(set.Include, g)
	}
	for _, p := range exclude {
		g, err := CompileGlob(p)
		if err != nil {
			return GlobSet{}, err
		}
		set.Exclude = append(set.Exclude, g)
	}
	return set, nil
}

// Match reports whether path (already normalized) is selected: true
// when no include patterns were given or at least one matches, and no
// exclude pattern matches. An empty GlobSet matches everything.
func (s GlobSet) Match(path string) bool {
	if len(s.Include) > 0 {
		matched := false
		for _, g := range s.Include {
			if g.Match(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range s.Exclude {
		if g.Match(path) {
			return false
		}
	}
	return true
}

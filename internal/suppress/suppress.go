// Package suppress implements the ExceptionSuppressor: it filters
// Findings against a list of user-declared ExceptionDefs, dropping any
// finding matched by at least one enabled exception. Matching follows
// the same compile-once idiom as internal/role's compiledMatcher:
// every populated field of an ExceptionMatch is
// pre-compiled once, then every populated field must match for that
// exception to apply: an AND across fields, OR across the exception
// list.
package suppress

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"

	"github.com/shamash-asm/shamash/internal/finding"
)

// ExceptionMatch is the uncompiled match criteria for one ExceptionDef.
// Every non-zero-value field here counts as populated;
// an exception with every field empty matches everything (suppresses
// all findings); neither the config loader nor the suppressor
// special-cases it.
type ExceptionMatch struct {
	RuleID            string
	RuleType          string
	RuleName          string
	Roles             []string
	ClassInternalName string
	ClassNameRegex    string
	PackageRegex      string
	OriginPathRegex   string
	Glob              string
}

// ExceptionDef is one user-declared suppression rule.
type ExceptionDef struct {
	ID      string
	Enabled bool
	Reason  string
	Match   ExceptionMatch
}

type compiledMatch struct {
	ruleID            string
	hasRuleID         bool
	ruleType          string
	hasRuleType       bool
	ruleName          string
	hasRuleName       bool
	roles             map[string]bool
	classInternalName string
	hasClassInternal  bool
	classNameRegex    *regexp.Regexp
	packageRegex      *regexp.Regexp
	originPathRegex   *regexp.Regexp
	glob              glob.Glob
}

type compiledException struct {
	id      string
	enabled bool
	match   compiledMatch
}

// Suppressor holds every compiled exception, each with its enabled flag;
// disabled ones never match.
type Suppressor struct {
	exceptions []compiledException
}

// Compile pre-compiles every regex/glob field across all ExceptionDefs
// once, so suppression itself is a pure-comparison hot loop.
func Compile(defs []ExceptionDef) (*Suppressor, error) {
	s := &Suppressor{}
	for _, def := range defs {
		cm, err := compileMatch(def.Match)
		if err != nil {
			return nil, fmt.Errorf("suppress: exception %q: %w", def.ID, err)
		}
		s.exceptions = append(s.exceptions, compiledException{id: def.ID, enabled: def.Enabled, match: cm})
	}
	return s, nil
}

func compileMatch(m ExceptionMatch) (compiledMatch, error) {
	var cm compiledMatch

	if m.RuleID != "" {
		cm.ruleID, cm.hasRuleID = m.RuleID, true
	}
	if m.RuleType != "" {
		cm.ruleType, cm.hasRuleType = m.RuleType, true
	}
	if m.RuleName != "" {
		cm.ruleName, cm.hasRuleName = m.RuleName, true
	}
	if len(m.Roles) > 0 {
		cm.roles = make(map[string]bool, len(m.Roles))
		for _, r := range m.Roles {
			cm.roles[r] = true
		}
	}
	if m.ClassInternalName != "" {
		cm.classInternalName, cm.hasClassInternal = m.ClassInternalName, true
	}
	if m.ClassNameRegex != "" {
		re, err := regexp.Compile(m.ClassNameRegex)
		if err != nil {
			return cm, fmt.Errorf("invalid classNameRegex %q: %w", m.ClassNameRegex, err)
		}
		cm.classNameRegex = re
	}
	if m.PackageRegex != "" {
		re, err := regexp.Compile(m.PackageRegex)
		if err != nil {
			return cm, fmt.Errorf("invalid packageRegex %q: %w", m.PackageRegex, err)
		}
		cm.packageRegex = re
	}
	if m.OriginPathRegex != "" {
		re, err := regexp.Compile(m.OriginPathRegex)
		if err != nil {
			return cm, fmt.Errorf("invalid originPathRegex %q: %w", m.OriginPathRegex, err)
		}
		cm.originPathRegex = re
	}
	if m.Glob != "" {
		g, err := glob.Compile(m.Glob, '/')
		if err != nil {
			return cm, fmt.Errorf("invalid glob %q: %w", m.Glob, err)
		}
		cm.glob = g
	}

	return cm, nil
}

// Context carries the per-finding facts the suppressor's class/package
// fields need but Finding itself doesn't carry (class internal name,
// package name), since Finding only records the fq-name/path forms.
type Context struct {
	ClassInternalName string
	PackageName       string
}

// matches reports whether every populated field of cm matches f (given
// ctx for the fields Finding alone can't answer).
func (cm compiledMatch) matches(f finding.Finding, ctx Context) bool {
	if cm.hasRuleID && cm.ruleID != f.RuleID {
		return false
	}
	if cm.hasRuleType && f.Type() != cm.ruleType {
		return false
	}
	if cm.hasRuleName && f.Name() != cm.ruleName {
		return false
	}
	if cm.roles != nil {
		role := f.Role()
		if role == "" || !cm.roles[role] {
			return false
		}
	}
	if cm.hasClassInternal && cm.classInternalName != ctx.ClassInternalName {
		return false
	}
	if cm.classNameRegex != nil && !cm.classNameRegex.MatchString(f.ClassFqn) {
		return false
	}
	if cm.packageRegex != nil && !cm.packageRegex.MatchString(ctx.PackageName) {
		return false
	}
	if cm.originPathRegex != nil && !cm.originPathRegex.MatchString(f.FilePath) {
		return false
	}
	if cm.glob != nil && !cm.glob.Match(f.FilePath) {
		return false
	}
	return true
}

// IsSuppressed reports whether at least one enabled exception matches
// f, given the extra per-finding context the matcher needs.
func (s *Suppressor) IsSuppressed(f finding.Finding, ctx Context) (bool, string) {
	for _, e := range s.exceptions {
		if !e.enabled {
			continue
		}
		if e.match.matches(f, ctx) {
			return true, e.id
		}
	}
	return false, ""
}

// Apply filters findings, dropping any that IsSuppressed reports true
// for, using ctxFor to derive per-finding Context.
func (s *Suppressor) Apply(findings []finding.Finding, ctxFor func(finding.Finding) Context) []finding.Finding {
	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if suppressed, _ := s.IsSuppressed(f, ctxFor(f)); suppressed {
			continue
		}
		out = append(out, f)
	}
	return out
}

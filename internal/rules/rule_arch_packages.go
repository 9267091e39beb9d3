package rules

import (
	"fmt"
	"regexp"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

func compileRegexList(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func anyMatches(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// AllowedPackagesRule implements arch.allowedPackages: each in-scope
// class's package must match at least one allowPackages regex.
type AllowedPackagesRule struct{}

func (r *AllowedPackagesRule) ID() string { return "arch.allowedPackages" }

func (r *AllowedPackagesRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	patterns, err := params.StringSlice("allowPackages", true)
	if err != nil {
		return nil, err
	}
	allow, err := compileRegexList(patterns)
	if err != nil {
		return nil, err
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		if anyMatches(allow, class.PackageName) {
			continue
		}
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("package %q is not in the allowed package list", class.PackageName),
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity,
			Data: finding.NewData([2]string{"package", class.PackageName}),
		})
	}
	return findings, nil
}

// ForbiddenPackagesRule implements arch.forbiddenPackages: the
// symmetric negation of AllowedPackagesRule.
type ForbiddenPackagesRule struct{}

func (r *ForbiddenPackagesRule) ID() string { return "arch.forbiddenPackages" }

func (r *ForbiddenPackagesRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	patterns, err := params.StringSlice("forbidPackages", true)
	if err != nil {
		return nil, err
	}
	forbid, err := compileRegexList(patterns)
	if err != nil {
		return nil, err
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		if !anyMatches(forbid, class.PackageName) {
			continue
		}
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("package %q matches a forbidden package pattern", class.PackageName),
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity,
			Data: finding.NewData([2]string{"package", class.PackageName}),
		})
	}
	return findings, nil
}

package rules

import (
	"fmt"
	"regexp"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// RolePlacementRule implements packages.rolePlacement: every classified
// class's package must match its role's configured packageRegex.
// Classes with no assigned role, or whose role has no entry in
// `expected`, are skipped.
type RolePlacementRule struct{}

func (r *RolePlacementRule) ID() string { return "packages.rolePlacement" }

func (r *RolePlacementRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	expected, err := params.StringMapOfStringMap("expected")
	if err != nil {
		return nil, err
	}

	compiled := make(map[string]*regexp.Regexp, len(expected))
	for role, cfg := range expected {
		pattern, ok := cfg["packageRegex"]
		if !ok {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ParamError{RuleID: def.BaseID(), Key: "expected", Reason: fmt.Sprintf("invalid packageRegex for role %q: %v", role, err)}
		}
		compiled[role] = re
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		role := idx.RoleOf(class.FQName)
		if role == "" {
			continue
		}
		re, ok := compiled[role]
		if !ok || re.MatchString(class.PackageName) {
			continue
		}
		data := finding.NewData([2]string{"role", role}, [2]string{"package", class.PackageName})
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("class classified as role %q is in package %q, which does not match the role's expected package pattern", role, class.PackageName),
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity, Data: data,
		})
	}
	return findings, nil
}

package rules

import (
	"fmt"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// AllowedRoleDependenciesRule implements arch.allowedRoleDependencies:
// every observed role->role edge not present in the allow list emits a
// finding. Same-role edges are always allowed.
type AllowedRoleDependenciesRule struct{}

func (r *AllowedRoleDependenciesRule) ID() string { return "arch.allowedRoleDependencies" }

func (r *AllowedRoleDependenciesRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	allowList, err := params.StringSlice("allow", true)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(allowList))
	for _, pair := range allowList {
		from, to, ok := splitArrow(pair)
		if ok {
			allowed[from+"->"+to] = true
		}
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	seen := make(map[string]bool)
	var findings []finding.Finding
	for _, e := range idx.Edges() {
		fromRole := idx.RoleOf(e.From.FQName)
		toRole := idx.RoleOf(e.To.FQName)
		if fromRole == "" || toRole == "" || fromRole == toRole {
			continue
		}
		key := fromRole + "->" + toRole
		if allowed[key] || seen[key] {
			continue
		}

		class, ok := idx.Class(e.From.FQName)
		if !ok || !cs.InScope(class, fromRole) {
			continue
		}
		seen[key] = true

		data := finding.NewData([2]string{"fromRole", fromRole}, [2]string{"toRole", toRole})
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("role %q depends on role %q, which is not in the allow list", fromRole, toRole),
			ClassFqn: e.From.FQName, Severity: def.Severity, Data: data,
		})
	}

	return findings, nil
}

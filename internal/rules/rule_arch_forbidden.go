package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/graph"
)

const maxRoleDependencyExamples = 10

// ForbiddenRoleDependenciesRule implements arch.forbiddenRoleDependencies.
type ForbiddenRoleDependenciesRule struct{}

func (r *ForbiddenRoleDependenciesRule) ID() string { return "arch.forbiddenRoleDependencies" }

func (r *ForbiddenRoleDependenciesRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	forbidPairs, err := params.StringSlice("forbid", true)
	if err != nil {
		return nil, err
	}
	mode := strings.ToLower(params.String("mode", "direct"))
	includeExternal := params.Bool("includeExternal", false)

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	roleGraph, examples := buildRoleGraph(idx, includeExternal)

	var findings []finding.Finding
	for _, pair := range forbidPairs {
		from, to, ok := splitArrow(pair)
		if !ok || from == to {
			continue // malformed or self-forbid; self-forbids are always ignored
		}

		anchor := firstInScopeClassForRole(idx, cs, from)
		if anchor == "" {
			continue
		}

		switch mode {
		case "transitive":
			path := graph.BFSShortestPath(roleGraph, from, to)
			if path == nil {
				continue
			}
			data := finding.NewData(
				[2]string{"fromRole", from}, [2]string{"toRole", to}, [2]string{"mode", "transitive"},
				[2]string{"path", strings.Join(path, " -> ")},
			)
			findings = append(findings, finding.Finding{
				Message: fmt.Sprintf("role %q transitively depends on forbidden role %q", from, to),
				ClassFqn: anchor, Severity: def.Severity, Data: data,
			})
		default: // direct
			key := from + "->" + to
			ex, hasEdge := examples[key]
			if !hasEdge {
				continue
			}
			sort.Strings(ex)
			if len(ex) > maxRoleDependencyExamples {
				ex = ex[:maxRoleDependencyExamples]
			}
			data := finding.NewData(
				[2]string{"fromRole", from}, [2]string{"toRole", to}, [2]string{"mode", "direct"},
				[2]string{"examples", strings.Join(ex, ",")},
			)
			findings = append(findings, finding.Finding{
				Message: fmt.Sprintf("role %q must not directly depend on forbidden role %q", from, to),
				ClassFqn: anchor, Severity: def.Severity, Data: data,
			})
		}
	}

	return findings, nil
}

func splitArrow(s string) (from, to string, ok bool) {
	parts := strings.SplitN(s, "->", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// buildRoleGraph collapses the FactIndex's project edges onto role
// granularity, and separately records up to maxRoleDependencyExamples
// concrete "From->To" class pairs per (fromRole,toRole) key for the
// DIRECT-mode finding's `examples` field.
func buildRoleGraph(idx *factindex.Index, includeExternal bool) (*graph.DirectedGraph, map[string][]string) {
	g := graph.NewDirectedGraph()
	examples := make(map[string][]string)

	for _, role := range idx.Roles() {
		g.AddNode(role)
	}

	for _, e := range idx.Edges() {
		fromRole := idx.RoleOf(e.From.FQName)
		if fromRole == "" {
			continue
		}
		toRole := idx.RoleOf(e.To.FQName)
		if toRole == "" {
			if !includeExternal {
				continue
			}
			toRole = "__external__"
		}
		if fromRole == toRole {
			continue
		}
		g.AddEdge(fromRole, toRole)

		key := fromRole + "->" + toRole
		example := e.From.FQName + "->" + e.To.FQName
		if len(examples[key]) < maxRoleDependencyExamples {
			examples[key] = append(examples[key], example)
		}
	}

	return g, examples
}

func firstInScopeClassForRole(idx *factindex.Index, cs compiledScope, role string) string {
	for _, fq := range idx.ClassesInRole(role) {
		class, ok := idx.Class(fq)
		if !ok {
			continue
		}
		if cs.InScope(class, role) {
			return fq
		}
	}
	return ""
}

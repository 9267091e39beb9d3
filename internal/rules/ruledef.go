// Package rules implements the RuleRegistry and RuleEngine: it
// resolves a configured RuleDef to its Rule implementation, expands
// role-scoped instances, runs each instance's Evaluate synchronously,
// normalizes and collects Findings, and recovers from a misbehaving
// rule without aborting the run.
package rules

import (
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// RuleDef is one configured rule instance, as parsed from config's
// `rules` list.
type RuleDef struct {
	Type     string
	Name     string
	Roles    []string // nil = wildcard (one instance, unscoped by role)
	Enabled  bool
	Severity finding.Severity
	Scope    RuleScope
	Params   map[string]any
}

// BaseID is the canonical "type.name" a Rule implementation publishes
// and the registry resolves by.
func (d RuleDef) BaseID() string { return d.Type + "." + d.Name }

// RuleScope is the shared include/exclude scoping every rule
// instance compiles once.
type RuleScope struct {
	IncludeRoles    []string
	ExcludeRoles    []string
	IncludePackages []string // regex patterns
	ExcludePackages []string // regex patterns
	IncludeGlobs    []string
	ExcludeGlobs    []string
}

// Rule is one concrete rule implementation. ID returns its canonical
// base id ("type.name"); Evaluate runs against the shared read-only
// FactIndex, the (possibly role-scoped) effective RuleDef, and a
// validating ParamReader over RuleDef.Params.
type Rule interface {
	ID() string
	Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error)
}

package rules

import (
	"fmt"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/scan"
)

// EngineErrorKind tags a non-fatal failure recorded while running one
// rule instance.
type EngineErrorKind int

const (
	RuleParamError EngineErrorKind = iota
	RuleExecutionFailed
	RuleNotFound
)

// EngineError is one recorded rule-instance failure. The engine keeps
// running every other instance after recording one.
type EngineError struct {
	Kind         EngineErrorKind
	CanonicalID  string
	Err          error
}

func (e EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.CanonicalID, e.Err)
}

// Engine resolves, expands, and runs every configured RuleDef against
// a shared FactIndex.
type Engine struct {
	registry *Registry
}

// NewEngine builds an Engine over registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Run executes every enabled RuleDef (role-instance expanded) against
// idx, returning the deduplicated, canonically sorted findings plus
// any per-instance EngineErrors collected along the way.
func (e *Engine) Run(idx *factindex.Index, defs []RuleDef) ([]finding.Finding, []EngineError) {
	var all []finding.Finding
	var errs []EngineError

	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		rule, ok := e.registry.Lookup(def.BaseID())
		if !ok {
			errs = append(errs, EngineError{
				Kind: RuleNotFound, CanonicalID: def.BaseID(),
				Err: fmt.Errorf("no rule implementation registered for %q", def.BaseID()),
			})
			continue
		}

		for _, instance := range expandInstances(def) {
			findings, err := runInstance(rule, idx, instance)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			all = append(all, findings...)
		}
	}

	return finding.Dedup(all), errs
}

// instance is one expanded (canonicalID, effective RuleDef) pair.
type instance struct {
	canonicalID string
	def         RuleDef
}

// expandInstances performs role-instance expansion: a nil Roles list
// yields one wildcard instance; otherwise one instance per role, each
// forcing includeRoles to {r} unless the user already set it, and
// skipping any role also present in excludeRoles.
func expandInstances(def RuleDef) []instance {
	if def.Roles == nil {
		return []instance{{canonicalID: def.BaseID(), def: def}}
	}

	excluded := toSet(def.Scope.ExcludeRoles)
	var out []instance
	for _, r := range def.Roles {
		if excluded[r] {
			continue
		}
		scoped := def
		scoped.Scope.IncludeRoles = def.Scope.IncludeRoles
		if len(scoped.Scope.IncludeRoles) == 0 {
			scoped.Scope.IncludeRoles = []string{r}
		}
		out = append(out, instance{canonicalID: def.BaseID() + "." + r, def: scoped})
	}
	return out
}

// runInstance invokes one rule instance and normalizes its findings.
// A panicking rule implementation is recorded as RuleExecutionFailed
// rather than aborting the run.
func runInstance(rule Rule, idx *factindex.Index, inst instance) (findings []finding.Finding, engineErr *EngineError) {
	defer func() {
		if r := recover(); r != nil {
			engineErr = &EngineError{
				Kind: RuleExecutionFailed, CanonicalID: inst.canonicalID,
				Err: fmt.Errorf("panic: %v", r),
			}
			findings = nil
		}
	}()

	params := NewParamReader(inst.canonicalID, inst.def.Params)
	raw, err := rule.Evaluate(idx, inst.def, params)
	if err != nil {
		if _, ok := err.(*ParamError); ok {
			return nil, &EngineError{Kind: RuleParamError, CanonicalID: inst.canonicalID, Err: err}
		}
		return nil, &EngineError{Kind: RuleExecutionFailed, CanonicalID: inst.canonicalID, Err: err}
	}

	for i := range raw {
		raw[i].RuleID = inst.canonicalID
		raw[i].FilePath = scan.NormalizePath(raw[i].FilePath)
		if raw[i].FilePath == "" {
			raw[i].FilePath = raw[i].ClassFqn
		}
	}
	return raw, nil
}

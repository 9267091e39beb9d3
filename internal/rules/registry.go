package rules

import "sort"

// Registry resolves a RuleDef's canonical base id to its Rule
// implementation. The shipped rule set is registered explicitly
// (no reflection/auto-discovery), keeping the rule set closed and
// independently-evaluable rule contracts.
type Registry struct {
	byID map[string]Rule
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Rule)}
}

// Register adds r under its own ID(), overwriting any prior rule
// registered under the same id.
func (r *Registry) Register(rule Rule) {
	r.byID[rule.ID()] = rule
}

// Lookup resolves a canonical base id to its Rule, if registered.
func (r *Registry) Lookup(baseID string) (Rule, bool) {
	rule, ok := r.byID[baseID]
	return rule, ok
}

// IDs returns every registered base id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewDefaultRegistry registers every shipped rule.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ForbiddenRoleDependenciesRule{})
	r.Register(&AllowedRoleDependenciesRule{})
	r.Register(&AllowedPackagesRule{})
	r.Register(&ForbiddenPackagesRule{})
	r.Register(&MaxEdgeCountRule{})
	r.Register(&MaxFanInRule{})
	r.Register(&MaxFanOutRule{})
	r.Register(&MaxMethodsRule{})
	r.Register(&MaxFieldsRule{})
	r.Register(&DeadcodeUnreachableRule{})
	r.Register(&BannedSuffixesRule{})
	r.Register(&RolePlacementRule{})
	return r
}

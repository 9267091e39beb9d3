package role

import (
	"fmt"
	"sort"

	"github.com/shamash-asm/shamash/internal/facts"
)

// RoleDef is one user-declared architectural role, as parsed from
// config's `roles` section.
type RoleDef struct {
	ID          string     `yaml:"id"`
	Priority    int        `yaml:"priority"`
	Description string     `yaml:"description,omitempty"`
	Match       MatcherDef `yaml:"match"`
}

type compiledRole struct {
	id      string
	matcher *compiledMatcher
}

// Classifier assigns at most one role to each class.
type Classifier struct {
	roles []compiledRole
}

// NewClassifier compiles every RoleDef's matcher tree once and sorts
// roles priority-descending, id-ascending, so priority ties resolve
// deterministically between runs.
func NewClassifier(defs []RoleDef) (*Classifier, error) {
	sorted := make([]RoleDef, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	roles := make([]compiledRole, 0, len(sorted))
	for _, def := range sorted {
		cm, err := compile(def.Match)
		if err != nil {
			return nil, fmt.Errorf("role: compiling role %q: %w", def.ID, err)
		}
		roles = append(roles, compiledRole{id: def.ID, matcher: cm})
	}

	return &Classifier{roles: roles}, nil
}

// Result is the classifier's two-map output, mutual inverses of each
// other.
type Result struct {
	ClassToRole   map[string]string
	RoleToClasses map[string]map[string]bool
}

// Classify iterates classes in lexicographic fq-name order (the order
// FactIndex.Classes already guarantees) and assigns the first matching
// role, per role priority, to each.
func (c *Classifier) Classify(classes []facts.ClassFact) Result {
	classToRole := make(map[string]string, len(classes))
	roleToClasses := make(map[string]map[string]bool)

	for _, class := range classes {
		for _, r := range c.roles {
			if r.matcher.matches(class) {
				classToRole[class.FQName] = r.id
				if roleToClasses[r.id] == nil {
					roleToClasses[r.id] = make(map[string]bool)
				}
				roleToClasses[r.id][class.FQName] = true
				break
			}
		}
	}

	return Result{ClassToRole: classToRole, RoleToClasses: roleToClasses}
}

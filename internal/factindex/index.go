package factindex

import (
	"sort"

	"github.com/shamash-asm/shamash/internal/facts"
)

// Index is the read-only FactIndex shared by every pipeline stage from
// the RoleClassifier onward. It is never mutated after AssignRoles is
// called once with the classifier's result; rules receive it by shared
// reference.
type Index struct {
	classes   []facts.ClassFact
	classByFQ map[string]facts.ClassFact
	methods   []facts.MethodRef
	fields    []facts.FieldRef
	edges     []facts.DependencyEdge

	classToRole  map[string]string
	roleToClasses map[string]map[string]bool
}

// Classes returns every ClassFact in lexicographic fq-name order.
func (idx *Index) Classes() []facts.ClassFact { return idx.classes }

// Class looks up a class by fq-name.
func (idx *Index) Class(fqName string) (facts.ClassFact, bool) {
	c, ok := idx.classByFQ[fqName]
	return c, ok
}

// IsProjectClass reports whether fqName was scanned as part of this run
// (as opposed to an external/third-party type only ever referenced).
func (idx *Index) IsProjectClass(fqName string) bool {
	_, ok := idx.classByFQ[fqName]
	return ok
}

// Methods returns every MethodRef across all classes.
func (idx *Index) Methods() []facts.MethodRef { return idx.methods }

// Fields returns every FieldRef across all classes.
func (idx *Index) Fields() []facts.FieldRef { return idx.fields }

// Edges returns every deduplicated, project-originating DependencyEdge.
func (idx *Index) Edges() []facts.DependencyEdge { return idx.edges }

// AssignRoles installs the classifier's output. The orchestrator calls
// it exactly once, with internal/role.Classifier's result, before any
// rule runs.
func (idx *Index) AssignRoles(classToRole map[string]string, roleToClasses map[string]map[string]bool) {
	idx.classToRole = classToRole
	idx.roleToClasses = roleToClasses
}

// RoleOf returns the role assigned to a class, or "" if unclassified.
func (idx *Index) RoleOf(classFQName string) string {
	return idx.classToRole[classFQName]
}

// ClassesInRole returns the sorted set of classes assigned to a role.
func (idx *Index) ClassesInRole(role string) []string {
	set := idx.roleToClasses[role]
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Roles returns every role id that has at least one class assigned.
func (idx *Index) Roles() []string {
	out := make([]string, 0, len(idx.roleToClasses))
	for r := range idx.roleToClasses {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

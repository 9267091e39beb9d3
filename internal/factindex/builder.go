// Package factindex assembles the FactIndex: the in-memory, denormalized
// store of every ClassFact, MethodRef, FieldRef, and DependencyEdge
// extracted from a scan, plus (once the classifier has run) the
// role<->class mappings. Builder accumulates facts concurrently from
// extractor workers; Build() produces the canonical, read-only Index
// that every later stage of the pipeline shares.
package factindex

import (
	"sort"
	"sync"

	"github.com/shamash-asm/shamash/internal/facts"
)

// Builder is safe for concurrent use by multiple extractor workers; each
// worker calls AddClass once per successfully decoded class.
type Builder struct {
	mu      sync.Mutex
	classes []facts.ClassFact
	methods []facts.MethodRef
	fields  []facts.FieldRef
	edges   []facts.DependencyEdge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddClass appends one class's contribution. Safe for concurrent calls.
func (b *Builder) AddClass(class facts.ClassFact, methods []facts.MethodRef, fields []facts.FieldRef, edges []facts.DependencyEdge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.classes = append(b.classes, class)
	b.methods = append(b.methods, methods...)
	b.fields = append(b.fields, fields...)
	b.edges = append(b.edges, edges...)
}

// Build finalizes the accumulated facts into an immutable Index:
//   - classes are sorted by fq-name; first occurrence wins on collision
//   - edges are deduplicated on (from,to,kind,detail) and sorted by
//     that same key; methods and fields are sorted by owner then name
//   - edges whose `from` type is not a project class are dropped before
//     any rule sees the index
//
// Insertion order from concurrent workers is never observable past
// this call.
func (b *Builder) Build() *Index {
	b.mu.Lock()
	defer b.mu.Unlock()

	classes, classByFQ := dedupClasses(b.classes)

	sort.Slice(classes, func(i, j int) bool { return classes[i].FQName < classes[j].FQName })
	// classByFQ values point into the pre-sort slice headers only via
	// FQName lookups, so rebuild the map against the sorted slice to
	// keep pointer-free value semantics simple and cache-friendly.
	classByFQ = make(map[string]facts.ClassFact, len(classes))
	for _, c := range classes {
		classByFQ[c.FQName] = c
	}

	edges := dedupEdges(b.edges, classByFQ)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Key() < edges[j].Key() })

	methods := append([]facts.MethodRef(nil), b.methods...)
	sort.Slice(methods, func(i, j int) bool {
		a, c := methods[i], methods[j]
		if a.OwnerFQName != c.OwnerFQName {
			return a.OwnerFQName < c.OwnerFQName
		}
		if a.Name != c.Name {
			return a.Name < c.Name
		}
		return a.Descriptor < c.Descriptor
	})
	fields := append([]facts.FieldRef(nil), b.fields...)
	sort.Slice(fields, func(i, j int) bool {
		a, c := fields[i], fields[j]
		if a.OwnerFQName != c.OwnerFQName {
			return a.OwnerFQName < c.OwnerFQName
		}
		return a.Name < c.Name
	})

	return &Index{
		classes:   classes,
		classByFQ: classByFQ,
		methods:   methods,
		fields:    fields,
		edges:     edges,
	}
}

// dedupClasses keeps the first occurrence of each fq-name, in input
// order, and returns both the deduplicated slice and a lookup map.
func dedupClasses(in []facts.ClassFact) ([]facts.ClassFact, map[string]facts.ClassFact) {
	seen := make(map[string]bool, len(in))
	out := make([]facts.ClassFact, 0, len(in))
	byFQ := make(map[string]facts.ClassFact, len(in))
	for _, c := range in {
		if seen[c.FQName] {
			continue
		}
		seen[c.FQName] = true
		out = append(out, c)
		byFQ[c.FQName] = c
	}
	return out, byFQ
}

func dedupEdges(in []facts.DependencyEdge, projectClasses map[string]facts.ClassFact) []facts.DependencyEdge {
	seen := make(map[string]bool, len(in))
	out := make([]facts.DependencyEdge, 0, len(in))
	for _, e := range in {
		if _, ok := projectClasses[e.From.FQName]; !ok {
			continue
		}
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

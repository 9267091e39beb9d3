package factindex

import (
	"testing"

	"github.com/shamash-asm/shamash/internal/facts"
)

func tref(fq string) facts.TypeRef {
	return facts.TypeRef{FQName: fq}
}

func TestBuildDedupsClassesFirstOccurrenceWins(t *testing.T) {
	b := NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Foo", MethodCount: 1}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.Foo", MethodCount: 99}, nil, nil, nil)

	idx := b.Build()
	if len(idx.Classes()) != 1 {
		t.Fatalf("len(Classes()) = %d, want 1", len(idx.Classes()))
	}
	c, _ := idx.Class("com.a.Foo")
	if c.MethodCount != 1 {
		t.Errorf("MethodCount = %d, want 1 (first occurrence should win)", c.MethodCount)
	}
}

func TestBuildSortsClassesByFQName(t *testing.T) {
	b := NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.b.Z"}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.A"}, nil, nil, nil)

	idx := b.Build()
	classes := idx.Classes()
	if classes[0].FQName != "com.a.A" || classes[1].FQName != "com.b.Z" {
		t.Errorf("classes not sorted: %v", classes)
	}
}

func TestBuildDropsEdgesFromNonProjectClasses(t *testing.T) {
	b := NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Foo"}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.Foo"), To: tref("java.lang.String"), Kind: facts.EdgeNew},
		{From: tref("java.lang.String"), To: tref("com.a.Foo"), Kind: facts.EdgeNew},
	})

	idx := b.Build()
	edges := idx.Edges()
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	if edges[0].From.FQName != "com.a.Foo" {
		t.Errorf("unexpected surviving edge: %+v", edges[0])
	}
}

func TestBuildDedupsEdgesByIdentityKey(t *testing.T) {
	b := NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Foo"}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.Foo"), To: tref("com.a.Bar"), Kind: facts.EdgeMethodCall, Detail: "doIt"},
		{From: tref("com.a.Foo"), To: tref("com.a.Bar"), Kind: facts.EdgeMethodCall, Detail: "doIt"},
		{From: tref("com.a.Foo"), To: tref("com.a.Bar"), Kind: facts.EdgeMethodCall, Detail: "other"},
	})

	idx := b.Build()
	if len(idx.Edges()) != 2 {
		t.Fatalf("len(Edges()) = %d, want 2", len(idx.Edges()))
	}
}

func TestAssignRolesRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Foo"}, nil, nil, nil)
	idx := b.Build()

	idx.AssignRoles(
		map[string]string{"com.a.Foo": "controller"},
		map[string]map[string]bool{"controller": {"com.a.Foo": true}},
	)

	if idx.RoleOf("com.a.Foo") != "controller" {
		t.Errorf("RoleOf = %q", idx.RoleOf("com.a.Foo"))
	}
	classes := idx.ClassesInRole("controller")
	if len(classes) != 1 || classes[0] != "com.a.Foo" {
		t.Errorf("ClassesInRole = %v", classes)
	}
}

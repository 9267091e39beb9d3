package analysis

import (
	"testing"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/graph"
)

func tref(fq, pkg string) facts.TypeRef { return facts.TypeRef{FQName: fq, PackageName: pkg} }

func buildFixtureIndex(t *testing.T) *factindex.Index {
	t.Helper()
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.web.Controller", PackageName: "com.a.web", MethodCount: 20, FieldCount: 2}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.web.Controller", "com.a.web"), To: tref("com.a.svc.Service", "com.a.svc"), Kind: facts.EdgeMethodCall},
		{From: tref("com.a.web.Controller", "com.a.web"), To: tref("java.lang.String", "java.lang"), Kind: facts.EdgeMethodCall},
	})
	b.AddClass(facts.ClassFact{FQName: "com.a.svc.Service", PackageName: "com.a.svc", MethodCount: 5, FieldCount: 1}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.svc.Service", "com.a.svc"), To: tref("com.a.db.Repo", "com.a.db"), Kind: facts.EdgeMethodCall},
	})
	b.AddClass(facts.ClassFact{FQName: "com.a.db.Repo", PackageName: "com.a.db", MethodCount: 3, FieldCount: 1}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.db.Repo", "com.a.db"), To: tref("com.a.web.Controller", "com.a.web"), Kind: facts.EdgeMethodCall},
	})
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})
	return idx
}

func TestRunProducesGraphSnapshotPerGranularity(t *testing.T) {
	idx := buildFixtureIndex(t)
	opts := DefaultOptions()
	result := Run(idx, opts)

	if len(result.Graphs) != 3 {
		t.Fatalf("len(Graphs) = %d, want 3", len(result.Graphs))
	}
	for _, g := range result.Graphs {
		if g.Granularity == "CLASS" {
			if len(g.Nodes) != 3 {
				t.Errorf("CLASS nodes = %v", g.Nodes)
			}
			if g.SCCCount != 1 {
				t.Errorf("CLASS SCCCount = %d, want 1 (all three classes form one cycle)", g.SCCCount)
			}
			if len(g.CyclicSCCs) != 1 || len(g.CyclicSCCs[0]) != 3 {
				t.Errorf("CyclicSCCs = %v", g.CyclicSCCs)
			}
		}
	}
}

func TestHotspotsRankByValueThenIDAscending(t *testing.T) {
	idx := buildFixtureIndex(t)
	h := buildHotspots(idx, DefaultOptions())

	entries := h.Class[MetricMethodCount]
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	if entries[0].ID != "com.a.web.Controller" || entries[0].Rank != 1 {
		t.Errorf("top entry = %+v, want Controller rank 1", entries[0])
	}
}

func TestClassScoresAreWithinUnitRange(t *testing.T) {
	idx := buildFixtureIndex(t)
	scores := buildClassScores(idx, DefaultOptions())
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d", len(scores))
	}
	for _, s := range scores {
		if s.GodScore < 0 || s.GodScore > 1 {
			t.Errorf("%s GodScore = %v out of [0,1]", s.FQName, s.GodScore)
		}
	}
}

func TestPackageScoresFlagCyclicPackages(t *testing.T) {
	idx := buildFixtureIndex(t)
	opts := DefaultOptions()
	classScores := buildClassScores(idx, opts)
	pkgScores := buildPackageScores(idx, classScores, opts)

	byPkg := make(map[string]PackageScore)
	for _, ps := range pkgScores {
		byPkg[ps.Package] = ps
	}
	if len(byPkg) != 3 {
		t.Fatalf("len(byPkg) = %d, want 3", len(byPkg))
	}
	// all three packages participate in the package-level cycle.
	for pkg, ps := range byPkg {
		if ps.OverallScore <= 0 {
			t.Errorf("package %s OverallScore = %v, want > 0 (cyclic component contributes)", pkg, ps.OverallScore)
		}
	}
}

func TestGranularityNameMapsAllThreeValues(t *testing.T) {
	cases := map[graph.Granularity]string{
		graph.GranularityClass:   "CLASS",
		graph.GranularityPackage: "PACKAGE",
		graph.GranularityModule:  "MODULE",
	}
	for g, want := range cases {
		if got := granularityName(g); got != want {
			t.Errorf("granularityName(%v) = %q, want %q", g, got, want)
		}
	}
}

package analysis

import (
	"sort"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/graph"
)

func classPackageSpread(idx *factindex.Index, class facts.ClassFact, includeExternal bool) int {
	seen := make(map[string]bool)
	for _, e := range idx.Edges() {
		if e.From.FQName != class.FQName {
			continue
		}
		pkg, ok := packageOf(idx, e.To, includeExternal)
		if !ok || pkg == class.PackageName {
			continue
		}
		seen[pkg] = true
	}
	return len(seen)
}

func packageOf(idx *factindex.Index, t facts.TypeRef, includeExternal bool) (string, bool) {
	if c, ok := idx.Class(t.FQName); ok {
		return c.PackageName, true
	}
	if !includeExternal {
		return "", false
	}
	return "__external__:" + t.PackageName, true
}

func classMetricValues(idx *factindex.Index, g *graph.DirectedGraph, includeExternal bool, metric Metric) map[string]float64 {
	out := make(map[string]float64, len(idx.Classes()))
	for _, c := range idx.Classes() {
		switch metric {
		case MetricFanIn:
			out[c.FQName] = float64(g.FanIn(c.FQName))
		case MetricFanOut:
			out[c.FQName] = float64(g.FanOut(c.FQName))
		case MetricPackageSpread:
			out[c.FQName] = float64(classPackageSpread(idx, c, includeExternal))
		case MetricMethodCount:
			out[c.FQName] = float64(c.MethodCount)
		}
	}
	return out
}

func packageMetricValues(idx *factindex.Index, pg *graph.DirectedGraph, metric Metric) map[string]float64 {
	packages := make(map[string]bool)
	methodCounts := make(map[string]int)
	for _, c := range idx.Classes() {
		packages[c.PackageName] = true
		methodCounts[c.PackageName] += c.MethodCount
	}

	out := make(map[string]float64, len(packages))
	for pkg := range packages {
		switch metric {
		case MetricFanIn:
			out[pkg] = float64(pg.FanIn(pkg))
		case MetricFanOut, MetricPackageSpread:
			out[pkg] = float64(pg.FanOut(pkg))
		case MetricMethodCount:
			out[pkg] = float64(methodCounts[pkg])
		}
	}
	return out
}

// rankTopN sorts ids by value descending, ties broken by id ascending,
// and returns up to topN entries with sequential 1-based ranks.
func rankTopN(values map[string]float64, topN int) []HotspotEntry {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if values[ids[i]] != values[ids[j]] {
			return values[ids[i]] > values[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if topN > 0 && len(ids) > topN {
		ids = ids[:topN]
	}
	out := make([]HotspotEntry, 0, len(ids))
	for i, id := range ids {
		out = append(out, HotspotEntry{ID: id, Value: values[id], Rank: i + 1})
	}
	return out
}

var allMetrics = []Metric{MetricFanIn, MetricFanOut, MetricPackageSpread, MetricMethodCount}

func buildHotspots(idx *factindex.Index, opts Options) Hotspots {
	classGraph := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityClass, opts.IncludeExternal)
	packageGraph := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityPackage, opts.IncludeExternal)

	h := Hotspots{Class: make(map[Metric][]HotspotEntry), Package: make(map[Metric][]HotspotEntry)}
	for _, m := range allMetrics {
		h.Class[m] = rankTopN(classMetricValues(idx, classGraph, opts.IncludeExternal, m), opts.TopN)
		h.Package[m] = rankTopN(packageMetricValues(idx, packageGraph, m), opts.TopN)
	}
	return h
}

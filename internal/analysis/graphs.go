package analysis

import (
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/graph"
)

func buildGraphSnapshot(idx *factindex.Index, gran graph.Granularity, opts Options) GraphSnapshot {
	g := graph.BuildGraph(idx.Classes(), idx.Edges(), gran, opts.IncludeExternal)

	adj := make(map[string][]string, len(g.Nodes()))
	for _, n := range g.Nodes() {
		adj[n] = g.Successors(n)
	}

	sccs := graph.TarjanSCC(g)
	cyclic := graph.CyclicComponents(g, sccs)
	cyclicMembers := make([][]string, 0, len(cyclic))
	for _, scc := range cyclic {
		cyclicMembers = append(cyclicMembers, scc.Members)
	}

	cycles := graph.SampleCycles(g, opts.MaxCycles, opts.MaxCycleNodes)
	repr := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		repr = append(repr, c.Nodes)
	}

	return GraphSnapshot{
		Granularity:          granularityName(gran),
		Nodes:                g.Nodes(),
		Adjacency:            adj,
		SCCCount:             len(sccs),
		CyclicSCCs:           cyclicMembers,
		RepresentativeCycles: repr,
	}
}

package analysis

import "github.com/shamash-asm/shamash/internal/factindex"

// Run executes the AnalysisPipeline over idx: graph snapshots for every
// configured granularity, hotspot rankings, and god/package scoring.
// Deterministic given an identical idx and opts.
func Run(idx *factindex.Index, opts Options) Result {
	graphs := make([]GraphSnapshot, 0, len(opts.Granularities))
	for _, gran := range opts.Granularities {
		graphs = append(graphs, buildGraphSnapshot(idx, gran, opts))
	}

	classScores := buildClassScores(idx, opts)
	packageScores := buildPackageScores(idx, classScores, opts)

	return Result{
		Graphs:        graphs,
		Hotspots:      buildHotspots(idx, opts),
		ClassScores:   classScores,
		PackageScores: packageScores,
	}
}

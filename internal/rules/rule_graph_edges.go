package rules

import (
	"fmt"
	"strings"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/graph"
)

func granularityFromParam(s string) graph.Granularity {
	switch strings.ToLower(s) {
	case "package":
		return graph.GranularityPackage
	case "module":
		return graph.GranularityModule
	default:
		return graph.GranularityClass
	}
}

// MaxEdgeCountRule implements graph.maxEdgeCount: builds a graph at the
// requested granularity and emits one finding, anchored at the first
// in-scope class, if its edge count exceeds max.
type MaxEdgeCountRule struct{}

func (r *MaxEdgeCountRule) ID() string { return "graph.maxEdgeCount" }

func (r *MaxEdgeCountRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	max, err := params.IntMin("max", 0, 0)
	if err != nil {
		return nil, err
	}
	gran := granularityFromParam(params.String("granularity", "class"))
	includeExternal := params.Bool("includeExternal", false)

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}
	inScope := inScopeClasses(idx, cs)
	if len(inScope) == 0 {
		return nil, nil
	}

	g := graph.BuildGraph(idx.Classes(), idx.Edges(), gran, includeExternal)
	count := g.EdgeCount()
	if count <= max {
		return nil, nil
	}

	anchor := inScope[0]
	data := finding.NewData(
		[2]string{"edgeCount", fmt.Sprintf("%d", count)},
		[2]string{"max", fmt.Sprintf("%d", max)},
		[2]string{"granularity", params.String("granularity", "class")},
	)
	return []finding.Finding{{
		Message:  fmt.Sprintf("graph has %d edges, exceeding max of %d", count, max),
		ClassFqn: anchor.FQName, FilePath: anchor.Location.DisplayPath(), Severity: def.Severity, Data: data,
	}}, nil
}

package rules

import (
	"fmt"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/graph"
)

// MaxFanInRule implements metrics.maxFanIn: one finding per in-scope
// class whose fan-in exceeds max.
type MaxFanInRule struct{}

func (r *MaxFanInRule) ID() string { return "metrics.maxFanIn" }

func (r *MaxFanInRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	return evaluateFanMetric(idx, def, params, "fanIn", func(g *graph.DirectedGraph, node string) int {
		return g.FanIn(node)
	})
}

// MaxFanOutRule implements metrics.maxFanOut: one finding per in-scope
// class whose fan-out exceeds max.
type MaxFanOutRule struct{}

func (r *MaxFanOutRule) ID() string { return "metrics.maxFanOut" }

func (r *MaxFanOutRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	return evaluateFanMetric(idx, def, params, "fanOut", func(g *graph.DirectedGraph, node string) int {
		return g.FanOut(node)
	})
}

func evaluateFanMetric(idx *factindex.Index, def RuleDef, params ParamReader, metricName string, metric func(*graph.DirectedGraph, string) int) ([]finding.Finding, error) {
	max, err := params.IntMin("max", 0, 0)
	if err != nil {
		return nil, err
	}
	includeExternal := params.Bool("includeExternal", false)

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	g := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityClass, includeExternal)

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		v := metric(g, class.FQName)
		if v <= max {
			continue
		}
		data := finding.NewData(
			[2]string{metricName, fmt.Sprintf("%d", v)},
			[2]string{"max", fmt.Sprintf("%d", max)},
		)
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("%s is %d, exceeding max of %d", metricName, v, max),
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity, Data: data,
		})
	}
	return findings, nil
}

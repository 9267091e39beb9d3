package rules

import (
	"strings"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/graph"
)

// DeadcodeUnreachableRule implements deadcode.unreachable: any class
// with fan-in 0, that isn't a main-method entry point, and isn't
// annotated as an entry point, is unreachable from the rest of the
// scanned project.
type DeadcodeUnreachableRule struct{}

func (r *DeadcodeUnreachableRule) ID() string { return "deadcode.unreachable" }

func (r *DeadcodeUnreachableRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	includeExternal := params.Bool("includeExternal", false)

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, err
	}

	g := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityClass, includeExternal)

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		if class.HasMainMethod || isEntryPointAnnotated(class) {
			continue
		}
		if g.FanIn(class.FQName) != 0 {
			continue
		}
		findings = append(findings, finding.Finding{
			Message:  "class has no incoming dependencies and is not a recognized entry point",
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity,
			Data: finding.NewData([2]string{"fanIn", "0"}),
		})
	}
	return findings, nil
}

func isEntryPointAnnotated(class facts.ClassFact) bool {
	for _, fq := range class.Annotations {
		simple := fq
		if idx := strings.LastIndexByte(fq, '.'); idx >= 0 {
			simple = fq[idx+1:]
		}
		simple = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(simple, "-", ""), "_", ""))
		if simple == "entrypoint" {
			return true
		}
	}
	return false
}

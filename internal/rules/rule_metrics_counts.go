package rules

import (
	"fmt"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// MaxMethodsRule implements metrics.maxMethods: a per-class threshold
// on MethodCount.
type MaxMethodsRule struct{}

func (r *MaxMethodsRule) ID() string { return "metrics.maxMethods" }

func (r *MaxMethodsRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	return evaluateCountMetric(idx, def, params, "methodCount", func(c facts.ClassFact) int { return c.MethodCount })
}

// MaxFieldsRule implements metrics.maxFields: a per-class threshold on
// FieldCount.
type MaxFieldsRule struct{}

func (r *MaxFieldsRule) ID() string { return "metrics.maxFields" }

func (r *MaxFieldsRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	return evaluateCountMetric(idx, def, params, "fieldCount", func(c facts.ClassFact) int { return c.FieldCount })
}

func evaluateCountMetric(idx *factindex.Index, def RuleDef, params ParamReader, metricName string, metric func(facts.ClassFact) int) ([]finding.Finding, error) {
	max, err := params.IntMin("max", 0, 0)
	if err != nil {
		return nil, err
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		v := metric(class)
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

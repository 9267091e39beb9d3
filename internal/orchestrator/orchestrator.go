// Package orchestrator wires every pipeline stage together: scanner,
// extractor, fact index, role classifier, rule engine, exception
// suppressor, baseline coordinator, analysis pipeline, and exporter.
// It sizes the extraction worker pool (the scanner runs in its own
// single goroutine) and is the single place that concatenates per-stage diagnostics
// into a stable, deduplicated list.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shamash-asm/shamash/internal/analysis"
	"github.com/shamash-asm/shamash/internal/baseline"
	"github.com/shamash-asm/shamash/internal/config"
	"github.com/shamash-asm/shamash/internal/export"
	"github.com/shamash-asm/shamash/internal/extract"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/role"
	"github.com/shamash-asm/shamash/internal/rules"
	"github.com/shamash-asm/shamash/internal/scan"
	"github.com/shamash-asm/shamash/internal/suppress"
)

// Options configures one orchestrator run. Workers <= 0 means
// unbounded, matching extract.RunPool's convention.
type Options struct {
	ScanOptions      scan.Options
	RoleDefs         []role.RoleDef
	RuleDefs         []rules.RuleDef
	ExceptionDefs    []suppress.ExceptionDef
	Baseline         *baseline.Coordinator
	Analysis         *analysis.Options // nil disables the analysis pipeline
	Export           *export.Options   // nil disables export
	Workers          int
	UnknownRulePolicy config.UnknownRulePolicy
}

// Errors collects every non-fatal diagnostic a run produced, grouped
// by kind. Each list is sorted before Run returns so identical inputs
// report identical diagnostics.
type Errors struct {
	ScanWarnings     []scan.Warning
	ExtractWarnings  []extract.Warning
	RuleErrors       []rules.EngineError
	UnknownRuleWarn  []string // base ids with project.validation.unknownRule == WARN
	BaselineError    error
	ExportError      error
}

// HasAny reports whether any non-fatal diagnostic was recorded.
func (e Errors) HasAny() bool {
	return len(e.ScanWarnings) > 0 || len(e.ExtractWarnings) > 0 || len(e.RuleErrors) > 0 ||
		len(e.UnknownRuleWarn) > 0 || e.BaselineError != nil || e.ExportError != nil
}

// Result is one complete engine run's output. BaselineSuppressed
// counts findings dropped by a VERIFY-mode baseline, for history
// bookkeeping.
type Result struct {
	Index              *factindex.Index
	Findings           []finding.Finding
	Analysis           *analysis.Result
	BaselineSuppressed int
	Errors             Errors
}

// Run executes the full pipeline: scan, extract, classify, evaluate
// rules, suppress, baseline, analyze, export. The scanner and the
// extraction pool check ctx between units of work; if ctx is cancelled
// by the time extraction ends, Run returns a Result holding only the
// diagnostics gathered so far, together with ctx.Err(). The stages
// after extraction do not check ctx.
func Run(ctx context.Context, opts Options) (Result, error) {
	var errs Errors

	candidates, scanWarnings := scan.Scan(ctx, opts.ScanOptions)

	// Drain warnings alongside the extraction pool; the scanner blocks
	// on its warning channel once the buffer fills, which would stall
	// candidate production if warnings were collected only afterward.
	warningsDone := make(chan struct{})
	go func() {
		defer close(warningsDone)
		for w := range scanWarnings {
			errs.ScanWarnings = append(errs.ScanWarnings, w)
		}
	}()

	builder := factindex.NewBuilder()
	errs.ExtractWarnings = extract.RunPool(ctx, candidates, builder, opts.Workers)
	<-warningsDone

	if err := ctx.Err(); err != nil {
		return Result{Errors: errs}, err
	}

	idx := builder.Build()

	classifier, err := role.NewClassifier(opts.RoleDefs)
	if err != nil {
		return Result{Index: idx, Errors: errs}, fmt.Errorf("role classification failed: %w", err)
	}
	classified := classifier.Classify(idx.Classes())
	idx.AssignRoles(classified.ClassToRole, classified.RoleToClasses)

	registry := rules.NewDefaultRegistry()
	resolvedDefs, unknown := resolveRuleDefs(registry, opts.RuleDefs, opts.UnknownRulePolicy)
	errs.UnknownRuleWarn = unknown

	engine := rules.NewEngine(registry)
	findings, ruleErrs := engine.Run(idx, resolvedDefs)
	errs.RuleErrors = ruleErrs

	suppressor, err := suppress.Compile(opts.ExceptionDefs)
	if err != nil {
		return Result{Index: idx, Errors: errs}, fmt.Errorf("compiling exceptions: %w", err)
	}
	findings = suppressor.Apply(findings, func(f finding.Finding) suppress.Context {
		return contextFor(idx, f)
	})

	baselineSuppressed := 0
	if opts.Baseline != nil {
		survived, err := opts.Baseline.Apply(findings)
		if err != nil {
			errs.BaselineError = err
		} else {
			baselineSuppressed = len(findings) - len(survived)
			findings = survived
		}
	}

	finding.Sort(findings)

	var analysisResult *analysis.Result
	if opts.Analysis != nil {
		r := analysis.Run(idx, *opts.Analysis)
		analysisResult = &r
	}

	if opts.Export != nil {
		if err := export.Export(findings, idx, *opts.Export); err != nil {
			errs.ExportError = err
		}
	}

	sortErrors(&errs)

	return Result{
		Index: idx, Findings: findings, Analysis: analysisResult,
		BaselineSuppressed: baselineSuppressed, Errors: errs,
	}, nil
}

// resolveRuleDefs filters out RuleDefs whose base id has no registered
// implementation, applying project.validation.unknownRule. ERROR lets
// the def through so the engine records its own failure; WARN collects
// the base id for the caller to surface and drops the def; IGNORE
// drops it silently.
func resolveRuleDefs(registry *rules.Registry, defs []rules.RuleDef, policy config.UnknownRulePolicy) ([]rules.RuleDef, []string) {
	var out []rules.RuleDef
	var warnings []string
	seen := make(map[string]bool)

	for _, d := range defs {
		if _, ok := registry.Lookup(d.BaseID()); ok {
			out = append(out, d)
			continue
		}
		switch policy {
		case config.UnknownRuleIgnore:
			continue
		case config.UnknownRuleWarn:
			if !seen[d.BaseID()] {
				warnings = append(warnings, d.BaseID())
				seen[d.BaseID()] = true
			}
			continue
		default: // UnknownRuleError: let the engine record a RuleNotFound
			out = append(out, d)
		}
	}
	sort.Strings(warnings)
	return out, warnings
}

// contextFor derives the suppressor's per-finding Context from the
// FactIndex, since Finding itself only carries fq-name/path forms.
func contextFor(idx *factindex.Index, f finding.Finding) suppress.Context {
	if f.ClassFqn == "" {
		return suppress.Context{}
	}
	class, ok := idx.Class(f.ClassFqn)
	if !ok {
		return suppress.Context{ClassInternalName: strings.ReplaceAll(f.ClassFqn, ".", "/")}
	}
	return suppress.Context{
		ClassInternalName: strings.ReplaceAll(class.FQName, ".", "/"),
		PackageName:       class.PackageName,
	}
}

// sortErrors orders every diagnostic list by kind then message, so two
// runs over identical inputs produce byte-identical error output
// regardless of goroutine scheduling.
func sortErrors(e *Errors) {
	sort.Slice(e.ScanWarnings, func(i, j int) bool {
		return scanWarningKey(e.ScanWarnings[i]) < scanWarningKey(e.ScanWarnings[j])
	})
	sort.Slice(e.ExtractWarnings, func(i, j int) bool {
		return extractWarningKey(e.ExtractWarnings[i]) < extractWarningKey(e.ExtractWarnings[j])
	})
	sort.Slice(e.RuleErrors, func(i, j int) bool {
		a, b := e.RuleErrors[i], e.RuleErrors[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Error() < b.Error()
	})
}

func scanWarningKey(w scan.Warning) string {
	return fmt.Sprintf("%d|%s", w.Kind, w.Path)
}

func extractWarningKey(w extract.Warning) string {
	return fmt.Sprintf("%s|%v", w.Location.DisplayPath(), w.Err)
}

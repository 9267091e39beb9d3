package config

import (
	"sort"

	"github.com/shamash-asm/shamash/internal/analysis"
	"github.com/shamash-asm/shamash/internal/baseline"
	"github.com/shamash-asm/shamash/internal/export"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/graph"
	"github.com/shamash-asm/shamash/internal/role"
	"github.com/shamash-asm/shamash/internal/rules"
	"github.com/shamash-asm/shamash/internal/scan"
	"github.com/shamash-asm/shamash/internal/suppress"
)

// RoleDefs converts the `roles` map into role.RoleDef values, sorted
// by id for reproducible construction (role.NewClassifier re-sorts by
// priority internally regardless, but a stable input order keeps this
// conversion itself deterministic).
func (c *Config) RoleDefs() []role.RoleDef {
	ids := make([]string, 0, len(c.Roles))
	for id := range c.Roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]role.RoleDef, 0, len(ids))
	for _, id := range ids {
		ry := c.Roles[id]
		out = append(out, role.RoleDef{ID: id, Priority: ry.Priority, Description: ry.Description, Match: ry.Match})
	}
	return out
}

// RuleDefs converts the `rules` list into rules.RuleDef values,
// defaulting enabled to true and severity to WARNING for an omitted
// field.
func (c *Config) RuleDefs() []rules.RuleDef {
	out := make([]rules.RuleDef, 0, len(c.Rules))
	for _, ry := range c.Rules {
		enabled := true
		if ry.Enabled != nil {
			enabled = *ry.Enabled
		}
		sev := finding.SeverityWarning
		if ry.Severity != "" {
			sev = finding.ParseSeverity(ry.Severity)
		}
		out = append(out, rules.RuleDef{
			Type:     ry.Type,
			Name:     ry.Name,
			Roles:    []string(ry.Roles),
			Enabled:  enabled,
			Severity: sev,
			Scope: rules.RuleScope{
				IncludeRoles:    []string(ry.Scope.IncludeRoles),
				ExcludeRoles:    []string(ry.Scope.ExcludeRoles),
				IncludePackages: []string(ry.Scope.IncludePackages),
				ExcludePackages: []string(ry.Scope.ExcludePackages),
				IncludeGlobs:    []string(ry.Scope.IncludeGlobs),
				ExcludeGlobs:    []string(ry.Scope.ExcludeGlobs),
			},
			Params: ry.Params,
		})
	}
	return out
}

// ExceptionDefs converts the `exceptions` list into
// suppress.ExceptionDef values, defaulting Enabled to true when unset.
func (c *Config) ExceptionDefs() []suppress.ExceptionDef {
	out := make([]suppress.ExceptionDef, 0, len(c.Exceptions))
	for _, ey := range c.Exceptions {
		enabled := true
		if ey.Enabled != nil {
			enabled = *ey.Enabled
		}
		out = append(out, suppress.ExceptionDef{
			ID: ey.ID, Enabled: enabled, Reason: ey.Reason,
			Match: suppress.ExceptionMatch{
				RuleID:            ey.Match.RuleID,
				RuleType:          ey.Match.RuleType,
				RuleName:          ey.Match.RuleName,
				Roles:             []string(ey.Match.Roles),
				ClassInternalName: ey.Match.ClassInternalName,
				ClassNameRegex:    ey.Match.ClassNameRegex,
				PackageRegex:      ey.Match.PackageRegex,
				OriginPathRegex:   ey.Match.OriginPathRegex,
				Glob:              ey.Match.Glob,
			},
		})
	}
	return out
}

// BaselineCoordinator builds the BaselineCoordinator configured by the
// `baseline` section.
func (c *Config) BaselineCoordinator() *baseline.Coordinator {
	mode := baseline.ModeNone
	switch c.Baseline.Mode {
	case "GENERATE":
		mode = baseline.ModeGenerate
	case "VERIFY":
		mode = baseline.ModeVerify
	}
	path := c.Baseline.Path
	if path == "" {
		path = "baseline.json"
	}
	return &baseline.Coordinator{Mode: mode, Path: path, Merge: c.Baseline.Merge}
}

// ExportOptions builds the Exporter's Options from the `export`
// section plus the run-specific values the config document cannot
// know in advance (project name, tool version, generation timestamp,
// run id).
func (c *Config) ExportOptions(projectName, toolVersion string, generatedAtMs int64, runID string) export.Options {
	formats := make([]export.Format, 0, len(c.Export.Formats))
	for _, f := range c.Export.Formats {
		formats = append(formats, export.Format(f))
	}
	enc := export.FactsEncodingJSON
	if c.Export.FactsEncoding == string(export.FactsEncodingJSONLGZ) {
		enc = export.FactsEncodingJSONLGZ
	}
	outDir := c.Export.OutputDir
	if outDir == "" {
		outDir = ".shamash"
	}
	return export.Options{
		OutputDir: outDir, Formats: formats, Overwrite: c.Export.Overwrite, FactsEncoding: enc,
		ProjectName: projectName, ToolVersion: toolVersion, GeneratedAtMs: generatedAtMs, RunID: runID,
	}
}

func granularityFromName(s string) graph.Granularity {
	switch s {
	case "PACKAGE":
		return graph.GranularityPackage
	case "MODULE":
		return graph.GranularityModule
	default:
		return graph.GranularityClass
	}
}

// AnalysisOptions builds the AnalysisPipeline's Options from the
// `analysis` section, falling back to analysis.DefaultOptions() for
// any field left unset.
func (c *Config) AnalysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()

	if len(c.Analysis.Graphs.Granularities) > 0 {
		grans := make([]graph.Granularity, 0, len(c.Analysis.Graphs.Granularities))
		for _, g := range c.Analysis.Graphs.Granularities {
			grans = append(grans, granularityFromName(g))
		}
		opts.Granularities = grans
	}
	opts.IncludeExternal = c.Analysis.Graphs.IncludeExternal
	if c.Analysis.Graphs.MaxCycles > 0 {
		opts.MaxCycles = c.Analysis.Graphs.MaxCycles
	}
	if c.Analysis.Graphs.MaxCycleNodes > 0 {
		opts.MaxCycleNodes = c.Analysis.Graphs.MaxCycleNodes
	}
	if c.Analysis.Hotspots.TopN > 0 {
		opts.TopN = c.Analysis.Hotspots.TopN
	}
	if len(c.Analysis.Scoring.GodScoreWeights) == 5 {
		copy(opts.GodScoreWeights[:], c.Analysis.Scoring.GodScoreWeights)
	}
	if len(c.Analysis.Scoring.PackageScoreWeights) == 5 {
		copy(opts.PackageScoreWeights[:], c.Analysis.Scoring.PackageScoreWeights)
	}
	if c.Analysis.Scoring.WarningThreshold > 0 {
		opts.WarningThreshold = c.Analysis.Scoring.WarningThreshold
	}
	if c.Analysis.Scoring.ErrorThreshold > 0 {
		opts.ErrorThreshold = c.Analysis.Scoring.ErrorThreshold
	}
	return opts
}

// AnalysisEnabled reports whether any of graphs/hotspots/scoring is
// turned on, gating whether the orchestrator runs AnalysisPipeline at
// all.
func (c *Config) AnalysisEnabled() bool {
	return c.Analysis.Graphs.Enabled || c.Analysis.Hotspots.Enabled || c.Analysis.Scoring.Enabled
}

func scopeFromName(s string) scan.ScopeKind {
	switch s {
	case "ALL_SOURCES":
		return scan.ScopeAllSources
	case "PROJECT_WITH_EXTERNAL_BUCKETS":
		return scan.ScopeProjectWithExternalBuckets
	default:
		return scan.ScopeProjectOnly
	}
}

// ScanOptions builds the Scanner's Options from the `project.bytecode`
// and `project.scan` sections, compiling every glob pattern up front
// so a bad pattern fails fast at config-load time rather than mid-scan.
func (c *Config) ScanOptions(basePath string) (scan.Options, error) {
	outGlobs, err := scan.CompileGlobSet(c.Project.Bytecode.OutputsGlobs.Include, c.Project.Bytecode.OutputsGlobs.Exclude)
	if err != nil {
		return scan.Options{}, err
	}
	jarGlobs, err := scan.CompileGlobSet(c.Project.Bytecode.JarGlobs.Include, c.Project.Bytecode.JarGlobs.Exclude)
	if err != nil {
		return scan.Options{}, err
	}
	return scan.Options{
		BasePath:       basePath,
		Roots:          []string(c.Project.Bytecode.Roots),
		OutputsGlobs:   outGlobs,
		JarGlobs:       jarGlobs,
		FollowSymlinks: c.Project.Scan.FollowSymlinks,
		MaxClasses:     c.Project.Scan.MaxClasses,
		MaxJarBytes:    c.Project.Scan.MaxJarBytes,
		MaxClassBytes:  c.Project.Scan.MaxClassBytes,
		Scope:          scopeFromName(c.Project.Scan.Scope),
	}, nil
}

// UnknownRulePolicy is project.validation.unknownRule.
type UnknownRulePolicy int

const (
	UnknownRuleError UnknownRulePolicy = iota
	UnknownRuleWarn
	UnknownRuleIgnore
)

// UnknownRulePolicy parses the configured policy, defaulting to WARN.
func (c *Config) UnknownRulePolicy() UnknownRulePolicy {
	switch c.Project.Validation.UnknownRule {
	case "ERROR":
		return UnknownRuleError
	case "IGNORE":
		return UnknownRuleIgnore
	default:
		return UnknownRuleWarn
	}
}

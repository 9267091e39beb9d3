package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shamash-asm/shamash/internal/role"
)

// stringOrList handles YAML fields that can be either a single string
// or a list of strings (e.g. `roles: controller` vs
// `roles: [controller, service]`).
type stringOrList []string

// UnmarshalYAML handles both "formats: JSON" and "formats: [JSON, XML]".
func (s *stringOrList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", value.Kind)
	}
}

// GlobSetYAML is one include/exclude glob pair, as configured for
// outputsGlobs or jarGlobs.
type GlobSetYAML struct {
	Include stringOrList `yaml:"include,omitempty"`
	Exclude stringOrList `yaml:"exclude,omitempty"`
}

// BytecodeConfig names the scanned roots and their glob filters.
type BytecodeConfig struct {
	Roots        stringOrList `yaml:"roots"`
	OutputsGlobs GlobSetYAML  `yaml:"outputsGlobs"`
	JarGlobs     GlobSetYAML  `yaml:"jarGlobs"`
}

// ScanConfig mirrors scan.Options.
type ScanConfig struct {
	FollowSymlinks bool   `yaml:"followSymlinks"`
	MaxClasses     int    `yaml:"maxClasses"`
	MaxJarBytes    int64  `yaml:"maxJarBytes"`
	MaxClassBytes  int64  `yaml:"maxClassBytes"`
	Scope          string `yaml:"scope"` // PROJECT_ONLY | ALL_SOURCES | PROJECT_WITH_EXTERNAL_BUCKETS
}

// ValidationConfig controls how an unresolved rule base id is surfaced
// (ERROR, WARN, or IGNORE).
type ValidationConfig struct {
	UnknownRule string `yaml:"unknownRule"` // ERROR | WARN | IGNORE
}

// ProjectConfig is the `project` document section.
type ProjectConfig struct {
	Bytecode   BytecodeConfig   `yaml:"bytecode"`
	Scan       ScanConfig       `yaml:"scan"`
	Validation ValidationConfig `yaml:"validation"`
}

// RoleYAML is one entry of the `roles` map:
// `id -> { priority, description?, match }`.
type RoleYAML struct {
	Priority    int             `yaml:"priority"`
	Description string          `yaml:"description,omitempty"`
	Match       role.MatcherDef `yaml:"match"`
}

// RuleScopeYAML is the YAML shape of rules.RuleScope.
type RuleScopeYAML struct {
	IncludeRoles    stringOrList `yaml:"includeRoles,omitempty"`
	ExcludeRoles    stringOrList `yaml:"excludeRoles,omitempty"`
	IncludePackages stringOrList `yaml:"includePackages,omitempty"`
	ExcludePackages stringOrList `yaml:"excludePackages,omitempty"`
	IncludeGlobs    stringOrList `yaml:"includeGlobs,omitempty"`
	ExcludeGlobs    stringOrList `yaml:"excludeGlobs,omitempty"`
}

// RuleDefYAML is one entry of the `rules` list.
// Enabled defaults to true, Severity defaults to WARNING, when omitted.
type RuleDefYAML struct {
	Type     string         `yaml:"type"`
	Name     string         `yaml:"name"`
	Roles    stringOrList   `yaml:"roles,omitempty"`
	Enabled  *bool          `yaml:"enabled,omitempty"`
	Severity string         `yaml:"severity,omitempty"`
	Scope    RuleScopeYAML  `yaml:"scope,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// ExceptionMatchYAML is the YAML shape of suppress.ExceptionMatch.
type ExceptionMatchYAML struct {
	RuleID            string       `yaml:"ruleId,omitempty"`
	RuleType          string       `yaml:"ruleType,omitempty"`
	RuleName          string       `yaml:"ruleName,omitempty"`
	Roles             stringOrList `yaml:"roles,omitempty"`
	ClassInternalName string       `yaml:"classInternalName,omitempty"`
	ClassNameRegex    string       `yaml:"classNameRegex,omitempty"`
	PackageRegex      string       `yaml:"packageRegex,omitempty"`
	OriginPathRegex   string       `yaml:"originPathRegex,omitempty"`
	Glob              string       `yaml:"glob,omitempty"`
}

// ExceptionYAML is one entry of the `exceptions` list.
// Enabled defaults to true when omitted.
type ExceptionYAML struct {
	ID      string              `yaml:"id"`
	Enabled *bool               `yaml:"enabled,omitempty"`
	Reason  string              `yaml:"reason,omitempty"`
	Match   ExceptionMatchYAML  `yaml:"match"`
}

// BaselineConfig is the `baseline` document section.
type BaselineConfig struct {
	Mode  string `yaml:"mode"` // NONE | GENERATE | VERIFY
	Path  string `yaml:"path,omitempty"`
	Merge bool   `yaml:"merge,omitempty"`
}

// ExportConfig is the `export` document section.
type ExportConfig struct {
	Enabled       bool         `yaml:"enabled"`
	OutputDir     string       `yaml:"outputDir,omitempty"`
	Formats       stringOrList `yaml:"formats,omitempty"`
	Overwrite     bool         `yaml:"overwrite,omitempty"`
	FactsEncoding string       `yaml:"factsEncoding,omitempty"` // JSON | JSONL_GZ
}

// GraphsConfig configures the analysis pipeline's graph snapshots.
type GraphsConfig struct {
	Enabled         bool         `yaml:"enabled"`
	Granularities   stringOrList `yaml:"granularities,omitempty"` // CLASS | PACKAGE | MODULE
	IncludeExternal bool         `yaml:"includeExternal,omitempty"`
	MaxCycles       int          `yaml:"maxCycles,omitempty"`
	MaxCycleNodes   int          `yaml:"maxCycleNodes,omitempty"`
}

// HotspotsConfig configures AnalysisPipeline's top-N metric ranking.
type HotspotsConfig struct {
	Enabled bool `yaml:"enabled"`
	TopN    int  `yaml:"topN,omitempty"`
}

// ScoringConfig configures AnalysisPipeline's god-score/overall-score
// weights and severity bands.
type ScoringConfig struct {
	Enabled             bool      `yaml:"enabled"`
	GodScoreWeights     []float64 `yaml:"godScoreWeights,omitempty"`
	PackageScoreWeights []float64 `yaml:"packageScoreWeights,omitempty"`
	WarningThreshold    float64   `yaml:"warningThreshold,omitempty"`
	ErrorThreshold      float64   `yaml:"errorThreshold,omitempty"`
}

// AnalysisConfig is the `analysis` document section.
type AnalysisConfig struct {
	Graphs   GraphsConfig   `yaml:"graphs"`
	Hotspots HotspotsConfig `yaml:"hotspots"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

// Package config handles loading, validating, and writing the
// Shamash-ASM project configuration from a single YAML document
// (project/roles/rules/exceptions/baseline/export/analysis sections).
//
// The engine treats the document as already validated by the time it
// runs; this package is the concrete loader that produces it, so its
// own validation is intentionally light: struct-level field checks
// only. A bad regex or glob is caught later, at matcher/scope compile
// time, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Shamash-ASM configuration document.
type Config struct {
	Project    ProjectConfig   `yaml:"project"`
	Roles      map[string]RoleYAML `yaml:"roles"`
	Rules      []RuleDefYAML   `yaml:"rules"`
	Exceptions []ExceptionYAML `yaml:"exceptions"`
	Baseline   BaselineConfig  `yaml:"baseline"`
	Export     ExportConfig    `yaml:"export"`
	Analysis   AnalysisConfig  `yaml:"analysis"`
}

// Load reads and parses the configuration document at path.
// If the file doesn't exist, returns defaults (not an error), matching
// `shamash scan` running against a project that hasn't called `init`.
// Invalid YAML or validation failures return an error.
func Load(path string) (*Config, error) {
	cfg := applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// WriteDefault writes a default configuration document with every
// section populated and a comment header, for `shamash init`.
func WriteDefault(path string) error {
	cfg := applyDefaults()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	header := `# Shamash-ASM Configuration
#
# project.bytecode.roots: directories to scan for .class files and archives
# project.bytecode.outputsGlobs / jarGlobs: include/exclude glob filters
# project.scan: followSymlinks, maxClasses, maxJarBytes, maxClassBytes, scope
# project.validation.unknownRule: ERROR | WARN | IGNORE
#
# roles: id -> { priority, description?, match }
# rules: [ { type, name, roles?, enabled?, severity?, scope?, params } ]
# exceptions: [ { id, enabled?, reason?, match } ]
# baseline: { mode: NONE|GENERATE|VERIFY, path, merge? }
# export: { enabled, outputDir, formats, overwrite, factsEncoding? }
# analysis: { graphs, hotspots, scoring }

`
	return os.WriteFile(path, []byte(header+string(data)), 0o644)
}

// applyDefaults returns a Config with every field set to its default.
func applyDefaults() *Config {
	return &Config{
		Project: ProjectConfig{
			Bytecode: BytecodeConfig{
				Roots: stringOrList{"build/classes", "target/classes"},
			},
			Scan: ScanConfig{
				FollowSymlinks: false,
				MaxClasses:     200000,
				MaxJarBytes:    200 * 1024 * 1024,
				MaxClassBytes:  5 * 1024 * 1024,
				Scope:          "PROJECT_ONLY",
			},
			Validation: ValidationConfig{
				UnknownRule: "WARN",
			},
		},
		Roles: map[string]RoleYAML{},
		Baseline: BaselineConfig{
			Mode: "NONE",
			Path: "baseline.json",
		},
		Export: ExportConfig{
			Enabled:       true,
			OutputDir:     ".shamash",
			Formats:       stringOrList{"JSON"},
			Overwrite:     false,
			FactsEncoding: "JSON",
		},
		Analysis: AnalysisConfig{
			Graphs: GraphsConfig{
				Enabled:       false,
				Granularities: stringOrList{"CLASS", "PACKAGE", "MODULE"},
				MaxCycles:     50,
				MaxCycleNodes: 120,
			},
			Hotspots: HotspotsConfig{
				Enabled: false,
				TopN:    10,
			},
			Scoring: ScoringConfig{
				Enabled:             false,
				GodScoreWeights:     []float64{0.35, 0.10, 0.30, 0.15, 0.10},
				PackageScoreWeights: []float64{0.30, 0.20, 0.25, 0.15, 0.10},
				WarningThreshold:    0.70,
				ErrorThreshold:      0.85,
			},
		},
	}
}

var validScanScopes = map[string]bool{
	"PROJECT_ONLY": true, "ALL_SOURCES": true, "PROJECT_WITH_EXTERNAL_BUCKETS": true,
}
var validUnknownRulePolicies = map[string]bool{"ERROR": true, "WARN": true, "IGNORE": true}
var validBaselineModes = map[string]bool{"NONE": true, "GENERATE": true, "VERIFY": true}
var validExportFormats = map[string]bool{"JSON": true, "SARIF": true, "XML": true, "HTML": true, "FACTS": true}
var validFactsEncodings = map[string]bool{"JSON": true, "JSONL_GZ": true}

// validate checks cfg for logical errors after parsing. This is
// intentionally shallow: regex and glob compilation failures surface
// later, at matcher/scope-compile time, not here.
func validate(cfg *Config) error {
	if cfg.Project.Scan.MaxClasses < 0 {
		return fmt.Errorf("project.scan.maxClasses must be non-negative")
	}
	if cfg.Project.Scan.MaxJarBytes < 0 {
		return fmt.Errorf("project.scan.maxJarBytes must be non-negative")
	}
	if cfg.Project.Scan.MaxClassBytes < 0 {
		return fmt.Errorf("project.scan.maxClassBytes must be non-negative")
	}
	if cfg.Project.Scan.Scope != "" && !validScanScopes[cfg.Project.Scan.Scope] {
		return fmt.Errorf("project.scan.scope %q is not one of PROJECT_ONLY, ALL_SOURCES, PROJECT_WITH_EXTERNAL_BUCKETS", cfg.Project.Scan.Scope)
	}
	if cfg.Project.Validation.UnknownRule != "" && !validUnknownRulePolicies[cfg.Project.Validation.UnknownRule] {
		return fmt.Errorf("project.validation.unknownRule %q is not one of ERROR, WARN, IGNORE", cfg.Project.Validation.UnknownRule)
	}

	for id, r := range cfg.Roles {
		if id == "" {
			return fmt.Errorf("roles: role id must not be empty")
		}
		_ = r
	}

	for i, rd := range cfg.Rules {
		if rd.Type == "" || rd.Name == "" {
			return fmt.Errorf("rules[%d]: type and name are required", i)
		}
	}

	for i, ed := range cfg.Exceptions {
		if ed.ID == "" {
			return fmt.Errorf("exceptions[%d]: id is required", i)
		}
	}

	if cfg.Baseline.Mode != "" && !validBaselineModes[cfg.Baseline.Mode] {
		return fmt.Errorf("baseline.mode %q is not one of NONE, GENERATE, VERIFY", cfg.Baseline.Mode)
	}

	for _, f := range cfg.Export.Formats {
		if !validExportFormats[f] {
			return fmt.Errorf("export.formats: %q is not one of JSON, SARIF, XML, HTML, FACTS", f)
		}
	}
	if cfg.Export.FactsEncoding != "" && !validFactsEncodings[cfg.Export.FactsEncoding] {
		return fmt.Errorf("export.factsEncoding %q is not one of JSON, JSONL_GZ", cfg.Export.FactsEncoding)
	}

	if cfg.Analysis.Scoring.WarningThreshold < 0 || cfg.Analysis.Scoring.WarningThreshold > 1 {
		return fmt.Errorf("analysis.scoring.warningThreshold must be within [0,1]")
	}
	if cfg.Analysis.Scoring.ErrorThreshold < 0 || cfg.Analysis.Scoring.ErrorThreshold > 1 {
		return fmt.Errorf("analysis.scoring.errorThreshold must be within [0,1]")
	}
	if cfg.Analysis.Scoring.ErrorThreshold > 0 && cfg.Analysis.Scoring.WarningThreshold > cfg.Analysis.Scoring.ErrorThreshold {
		return fmt.Errorf("analysis.scoring.warningThreshold must not exceed errorThreshold")
	}
	for _, weights := range [][]float64{cfg.Analysis.Scoring.GodScoreWeights, cfg.Analysis.Scoring.PackageScoreWeights} {
		if len(weights) != 0 && len(weights) != 5 {
			return fmt.Errorf("analysis.scoring weight vectors must have exactly 5 entries")
		}
	}

	return nil
}

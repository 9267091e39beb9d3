// Package main is the CLI entry point for Shamash-ASM, an
// architecture-enforcement engine for compiled JVM bytecode.
//
// Shamash scans .class files and archives, extracts dependency facts,
// classifies classes into user-declared architectural roles, evaluates
// rules against the fact index, suppresses excepted and baselined
// findings, optionally runs graph/hotspot/scoring analyses, and exports
// reports in several formats.
//
// Pipeline overview:
//
//	config ──► Scanner ──► FactExtractor ──► FactIndex ──► RoleClassifier
//	                                                       │
//	                                                       ▼
//	                                             RuleRegistry + RuleEngine
//	                                                       │
//	                            ExceptionSuppressor ◄──────┼──────► AnalysisPipeline
//	                                                       │
//	                                                       ▼
//	                                BaselineCoordinator ─► Findings ─► Exporter
//
// CLI commands (cobra):
//
//	shamash init              - Materialize a reference configuration
//	shamash validate          - Schema + semantic configuration checks
//	shamash scan              - Run the engine (optionally --watch/--live)
//	shamash facts <file>      - Read an exported facts file, print summaries
//	shamash registry list     - List the shipped rule implementations
//	shamash baseline history  - Show recent baseline run records
//
// Exit codes: 0 success, 2 configuration error, 3 runtime error,
// 4 findings exceeded the --fail-on threshold.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shamash-asm/shamash/internal/baseline"
	"github.com/shamash-asm/shamash/internal/config"
	"github.com/shamash-asm/shamash/internal/export"
	"github.com/shamash-asm/shamash/internal/finding"
	"github.com/shamash-asm/shamash/internal/liveexport"
	"github.com/shamash-asm/shamash/internal/orchestrator"
	"github.com/shamash-asm/shamash/internal/role"
	"github.com/shamash-asm/shamash/internal/rules"
	"github.com/shamash-asm/shamash/internal/suppress"
)

// Build-time variables injected via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-08-01"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	exitConfigError  = 2
	exitRuntimeError = 3
	exitFailOn       = 4
)

// exitError carries a process exit code alongside the error cobra
// prints. main unwraps it to pick the final os.Exit value.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func codeErr(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitConfigError)
	}
}

// ============================================================================
// Root command
// ============================================================================

// projectDir is the project base path every relative config path
// (bytecode roots, baseline file, export output dir) resolves against.
var projectDir string

// configPath overrides the default <project>/shamash.yaml location.
var configPath string

// verbose switches the default slog handler to debug level.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shamash",
	Short: "Shamash — architecture enforcement for JVM bytecode",
	Long: `Shamash scans compiled JVM bytecode, classifies classes into
architectural roles, and enforces dependency, packaging, metric, and
naming rules declared in a single YAML configuration document.

Run 'shamash init' to materialize a reference configuration, then
'shamash scan' to run the engine.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "Project base directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default <project>/shamash.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(baselineCmd)
}

// resolvedConfigPath applies the --config default: shamash.yaml under
// the project directory.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(projectDir, "shamash.yaml")
}

// loadProjectConfig loads the configuration document and resolves every
// relative path in it against the project directory, so the engine only
// ever sees paths that are stable no matter where shamash was invoked.
func loadProjectConfig() (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, codeErr(exitConfigError, "%v", err)
	}

	for i, root := range cfg.Project.Bytecode.Roots {
		if !filepath.IsAbs(root) {
			cfg.Project.Bytecode.Roots[i] = filepath.Join(projectDir, root)
		}
	}
	if cfg.Baseline.Path != "" && !filepath.IsAbs(cfg.Baseline.Path) {
		cfg.Baseline.Path = filepath.Join(projectDir, cfg.Baseline.Path)
	}
	if cfg.Export.OutputDir != "" && !filepath.IsAbs(cfg.Export.OutputDir) {
		cfg.Export.OutputDir = filepath.Join(projectDir, cfg.Export.OutputDir)
	}
	return cfg, nil
}

// semanticChecks compiles everything the YAML parser cannot verify:
// role matcher trees, exception matchers, scan globs, and rule base ids
// against the shipped registry. Returns the unknown base ids that the
// WARN policy lets through, and a hard error for anything fatal.
func semanticChecks(cfg *config.Config) ([]string, error) {
	if _, err := role.NewClassifier(cfg.RoleDefs()); err != nil {
		return nil, err
	}
	if _, err := suppress.Compile(cfg.ExceptionDefs()); err != nil {
		return nil, err
	}
	if _, err := cfg.ScanOptions(projectDir); err != nil {
		return nil, err
	}

	registry := rules.NewDefaultRegistry()
	var unknown []string
	seen := make(map[string]bool)
	for _, def := range cfg.RuleDefs() {
		if _, ok := registry.Lookup(def.BaseID()); ok || seen[def.BaseID()] {
			continue
		}
		seen[def.BaseID()] = true
		unknown = append(unknown, def.BaseID())
	}
	sort.Strings(unknown)

	if len(unknown) > 0 && cfg.UnknownRulePolicy() == config.UnknownRuleError {
		return nil, fmt.Errorf("unknown rule(s): %s", strings.Join(unknown, ", "))
	}
	if cfg.UnknownRulePolicy() == config.UnknownRuleIgnore {
		unknown = nil
	}
	return unknown, nil
}

// ============================================================================
// shamash init — Materialize a reference configuration
// ============================================================================

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a reference shamash.yaml into the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		if _, err := os.Stat(path); err == nil && !initForce {
			return codeErr(exitConfigError, "%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return codeErr(exitRuntimeError, "writing %s: %v", path, err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

// ============================================================================
// shamash validate — Schema + semantic configuration checks
// ============================================================================

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration document",
	Long: `Validate loads the configuration, compiles every role matcher,
exception matcher, and scan glob, and resolves every rule against the
shipped registry. Unknown rules are reported according to
project.validation.unknownRule (ERROR, WARN, or IGNORE).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProjectConfig()
		if err != nil {
			return err
		}
		unknown, err := semanticChecks(cfg)
		if err != nil {
			return codeErr(exitConfigError, "%v", err)
		}
		for _, id := range unknown {
			fmt.Printf("warning: no rule implementation registered for %q\n", id)
		}
		fmt.Printf("configuration OK: %d roles, %d rules, %d exceptions\n",
			len(cfg.Roles), len(cfg.Rules), len(cfg.Exceptions))
		return nil
	},
}

// ============================================================================
// shamash scan — Run the engine
// ============================================================================

var (
	scanFailOn        string
	scanPrintFindings bool
	scanExportFacts   bool
	scanFactsFormat   string
	scanScope         string
	scanFollowLinks   bool
	scanMaxClasses    int
	scanMaxJarBytes   int64
	scanMaxClassBytes int64
	scanWorkers       int
	scanWatch         bool
	scanLive          bool
	scanLiveAddr      string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan bytecode and evaluate every configured rule",
	Long: `Scan runs the full pipeline: enumerate class files and archives,
extract dependency facts, classify roles, evaluate rules, apply
exceptions and the baseline, run any enabled analyses, and export
reports.

With --watch the pipeline re-runs whenever a bytecode root, the
configuration file, or the baseline file changes. With --live a
WebSocket endpoint additionally broadcasts each re-run's findings to
connected clients.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "ERROR", "Fail (exit 4) when a finding at or above this severity exists: NONE, INFO, WARNING, ERROR")
	scanCmd.Flags().BoolVar(&scanPrintFindings, "print-findings", false, "Print each finding to stdout")
	scanCmd.Flags().BoolVar(&scanExportFacts, "export-facts", false, "Export the facts file even if FACTS is not in export.formats")
	scanCmd.Flags().StringVar(&scanFactsFormat, "facts-format", "", "Facts encoding override: JSON or JSONL_GZ")
	scanCmd.Flags().StringVar(&scanScope, "scope", "", "Scan scope override: PROJECT_ONLY, ALL_SOURCES, PROJECT_WITH_EXTERNAL_BUCKETS")
	scanCmd.Flags().BoolVar(&scanFollowLinks, "follow-symlinks", false, "Follow symbolic links while scanning")
	scanCmd.Flags().IntVar(&scanMaxClasses, "max-classes", 0, "Override project.scan.maxClasses")
	scanCmd.Flags().Int64Var(&scanMaxJarBytes, "max-jar-bytes", 0, "Override project.scan.maxJarBytes")
	scanCmd.Flags().Int64Var(&scanMaxClassBytes, "max-class-bytes", 0, "Override project.scan.maxClassBytes")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Extraction worker count (default: number of CPUs)")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "Re-run the pipeline when watched paths change")
	scanCmd.Flags().BoolVar(&scanLive, "live", false, "Broadcast findings over WebSocket after each --watch re-run")
	scanCmd.Flags().StringVar(&scanLiveAddr, "live-addr", "127.0.0.1:7399", "Listen address for the --live WebSocket endpoint")
}

// applyScanOverrides copies any explicitly-set scan flag over its
// config counterpart before options are built.
func applyScanOverrides(cmd *cobra.Command, cfg *config.Config) {
	if scanScope != "" {
		cfg.Project.Scan.Scope = scanScope
	}
	if cmd.Flags().Changed("follow-symlinks") {
		cfg.Project.Scan.FollowSymlinks = scanFollowLinks
	}
	if scanMaxClasses > 0 {
		cfg.Project.Scan.MaxClasses = scanMaxClasses
	}
	if scanMaxJarBytes > 0 {
		cfg.Project.Scan.MaxJarBytes = scanMaxJarBytes
	}
	if scanMaxClassBytes > 0 {
		cfg.Project.Scan.MaxClassBytes = scanMaxClassBytes
	}
	if scanFactsFormat != "" {
		cfg.Export.FactsEncoding = scanFactsFormat
	}
	if scanExportFacts {
		cfg.Export.Enabled = true
		hasFacts := false
		for _, f := range cfg.Export.Formats {
			if f == string(export.FormatFACTS) {
				hasFacts = true
			}
		}
		if !hasFacts {
			cfg.Export.Formats = append(cfg.Export.Formats, string(export.FormatFACTS))
		}
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	applyScanOverrides(cmd, cfg)

	if _, err := semanticChecks(cfg); err != nil {
		return codeErr(exitConfigError, "%v", err)
	}

	scanOpts, err := cfg.ScanOptions(projectDir)
	if err != nil {
		return codeErr(exitConfigError, "%v", err)
	}

	workers := scanWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		absProject = projectDir
	}
	projectName := filepath.Base(absProject)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// runOnce executes one full deterministic pass. Watch mode calls it
	// repeatedly; each pass gets a fresh run id and timestamp.
	runOnce := func(forceOverwrite bool) (orchestrator.Result, error) {
		runID := uuid.NewString()
		startedAt := time.Now()

		opts := orchestrator.Options{
			ScanOptions:       scanOpts,
			RoleDefs:          cfg.RoleDefs(),
			RuleDefs:          cfg.RuleDefs(),
			ExceptionDefs:     cfg.ExceptionDefs(),
			Baseline:          cfg.BaselineCoordinator(),
			Workers:           workers,
			UnknownRulePolicy: cfg.UnknownRulePolicy(),
		}
		if cfg.AnalysisEnabled() {
			analysisOpts := cfg.AnalysisOptions()
			opts.Analysis = &analysisOpts
		}
		if cfg.Export.Enabled {
			exportOpts := cfg.ExportOptions(projectName, version, startedAt.UnixMilli(), runID)
			if forceOverwrite {
				exportOpts.Overwrite = true
			}
			opts.Export = &exportOpts
		}

		result, err := orchestrator.Run(ctx, opts)
		if err != nil {
			return result, err
		}
		recordBaselineRun(cfg, runID, startedAt, result)
		return result, nil
	}

	if !scanWatch {
		result, err := runOnce(false)
		if err != nil {
			return codeErr(exitRuntimeError, "%v", err)
		}
		reportRun(result)
		return scanExitStatus(result)
	}
	return runWatchLoop(ctx, runOnce)
}

// recordBaselineRun appends one row to the baseline history database.
// History is bookkeeping only: a failure here is logged and never
// affects the run's outcome.
func recordBaselineRun(cfg *config.Config, runID string, startedAt time.Time, result orchestrator.Result) {
	if cfg.Baseline.Mode == "" || cfg.Baseline.Mode == "NONE" {
		return
	}
	historyPath := filepath.Join(filepath.Dir(cfg.Baseline.Path), "history.db")
	h, err := baseline.OpenHistory(historyPath)
	if err != nil {
		slog.Warn("baseline history unavailable", "path", historyPath, "error", err)
		return
	}
	defer h.Close()

	_ = h.Record(baseline.RunRecord{
		RunID:           runID,
		StartedAt:       startedAt.UTC().Format(time.RFC3339),
		Mode:            cfg.Baseline.Mode,
		FindingCount:    len(result.Findings) + result.BaselineSuppressed,
		NewCount:        len(result.Findings),
		SuppressedCount: result.BaselineSuppressed,
	})
}

// reportRun prints the per-run summary, the findings themselves when
// --print-findings is set, and every collected diagnostic.
func reportRun(result orchestrator.Result) {
	if scanPrintFindings {
		for _, f := range result.Findings {
			fmt.Printf("%-7s %s %s: %s\n", f.Severity, f.RuleID, f.FilePath, f.Message)
		}
	}

	var errorCount, warningCount, infoCount int
	for _, f := range result.Findings {
		switch f.Severity {
		case finding.SeverityError:
			errorCount++
		case finding.SeverityWarning:
			warningCount++
		default:
			infoCount++
		}
	}
	classCount := 0
	if result.Index != nil {
		classCount = len(result.Index.Classes())
	}
	fmt.Printf("scan complete: %d findings (%d error, %d warning, %d info) across %d classes\n",
		len(result.Findings), errorCount, warningCount, infoCount, classCount)

	errs := result.Errors
	for _, w := range errs.ScanWarnings {
		slog.Warn("scanner warning", "path", w.Path, "error", w.Err)
	}
	for _, w := range errs.ExtractWarnings {
		slog.Warn("extractor warning", "path", w.Location.DisplayPath(), "error", w.Err)
	}
	for _, e := range errs.RuleErrors {
		slog.Warn("rule error", "rule", e.CanonicalID, "error", e.Err)
	}
	if errs.BaselineError != nil {
		slog.Error("baseline error", "error", errs.BaselineError)
	}
	if errs.ExportError != nil {
		slog.Error("export error", "error", errs.ExportError)
	}
}

// scanExitStatus derives the exit code: 4 when findings reach the
// --fail-on threshold, 3 when the baseline or export stage failed or a
// rule errored, 0 otherwise.
func scanExitStatus(result orchestrator.Result) error {
	threshold := strings.ToUpper(scanFailOn)
	if threshold != "NONE" {
		min := finding.ParseSeverity(threshold)
		for _, f := range result.Findings {
			if f.Severity >= min {
				return codeErr(exitFailOn, "findings at or above %s severity", threshold)
			}
		}
	}
	errs := result.Errors
	if errs.BaselineError != nil || errs.ExportError != nil || len(errs.RuleErrors) > 0 {
		return codeErr(exitRuntimeError, "engine reported errors")
	}
	return nil
}

// runWatchLoop re-runs the pipeline whenever a bytecode root, the
// configuration file, or the baseline file changes. Re-runs force
// export overwrite, since each pass replaces the previous artifacts.
func runWatchLoop(ctx context.Context, runOnce func(bool) (orchestrator.Result, error)) error {
	var hub *liveexport.Hub
	if scanLive {
		hub = liveexport.NewHub()
		done := make(chan struct{})
		defer close(done)
		go hub.Run(done)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		server := &http.Server{Addr: scanLiveAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("live endpoint failed", "addr", scanLiveAddr, "error", err)
			}
		}()
		defer server.Close()
		slog.Info("live findings feed listening", "addr", "ws://"+scanLiveAddr+"/ws")
	}

	first := true
	rerun := func() {
		result, err := runOnce(!first)
		first = false
		if err != nil {
			slog.Error("scan failed", "error", err)
			return
		}
		reportRun(result)
		if hub != nil {
			hub.Publish(liveexport.Delta{
				GeneratedAtMs: time.Now().UnixMilli(),
				Findings:      result.Findings,
			})
		}
	}

	rerun()

	trigger := make(chan string, 8)
	cfgForWatch, err := loadProjectConfig()
	if err != nil {
		return err
	}
	watcher, err := config.NewWatcher(
		cfgForWatch.Project.Bytecode.Roots,
		[]string{resolvedConfigPath(), cfgForWatch.Baseline.Path},
		config.WatchTargets{OnChange: func(path string) {
			select {
			case trigger <- path:
			default:
			}
		}},
	)
	if err != nil {
		return codeErr(exitRuntimeError, "%v", err)
	}
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch mode stopped")
			return nil
		case <-trigger:
			// Let a burst of file events (a rebuild touching many class
			// files) settle before re-running.
			time.Sleep(250 * time.Millisecond)
			for len(trigger) > 0 {
				<-trigger
			}
			rerun()
		}
	}
}

// ============================================================================
// shamash facts — Read an exported facts file, print summaries
// ============================================================================

var factsFormat string

var factsCmd = &cobra.Command{
	Use:   "facts <file>",
	Short: "Summarize an exported facts file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		encoding := export.FactsEncodingJSON
		if strings.HasSuffix(path, ".gz") {
			encoding = export.FactsEncodingJSONLGZ
		}
		if factsFormat != "" {
			encoding = export.FactsEncoding(strings.ToUpper(factsFormat))
		}

		classes, edges, err := export.ReadFacts(path, encoding)
		if err != nil {
			return codeErr(exitRuntimeError, "reading %s: %v", path, err)
		}

		rolesAssigned := 0
		packageCounts := make(map[string]int)
		for _, c := range classes {
			if c.Role != "" {
				rolesAssigned++
			}
			packageCounts[c.PackageName]++
		}
		edgeKindCounts := make(map[string]int)
		for _, e := range edges {
			edgeKindCounts[e.Edge]++
		}

		fmt.Printf("classes: %d (%d with a role)\n", len(classes), rolesAssigned)
		fmt.Printf("edges:   %d\n", len(edges))

		fmt.Println("edges by kind:")
		for _, kind := range sortedKeys(edgeKindCounts) {
			fmt.Printf("  %-16s %d\n", kind, edgeKindCounts[kind])
		}

		fmt.Println("largest packages:")
		for i, pkg := range topKeys(packageCounts, 10) {
			fmt.Printf("  %2d. %-48s %d\n", i+1, displayPackage(pkg), packageCounts[pkg])
		}
		return nil
	},
}

func init() {
	factsCmd.Flags().StringVar(&factsFormat, "format", "", "Facts encoding: JSON or JSONL_GZ (default: by file extension)")
}

func displayPackage(pkg string) string {
	if pkg == "" {
		return "(default package)"
	}
	return pkg
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topKeys returns up to n keys ordered by descending count, ties broken
// by key ascending.
func topKeys(m map[string]int, n int) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return m[keys[i]] > m[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// ============================================================================
// shamash registry — List the shipped rule implementations
// ============================================================================

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the rule registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every shipped rule base id",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range rules.NewDefaultRegistry().IDs() {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryListCmd)
}

// ============================================================================
// shamash baseline — Baseline bookkeeping
// ============================================================================

var baselineHistoryLimit int

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Baseline bookkeeping",
}

var baselineHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent baseline GENERATE/VERIFY runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProjectConfig()
		if err != nil {
			return err
		}
		path := cfg.Baseline.Path
		if path == "" {
			path = filepath.Join(projectDir, "baseline.json")
		}
		historyPath := filepath.Join(filepath.Dir(path), "history.db")
		h, err := baseline.OpenHistory(historyPath)
		if err != nil {
			return codeErr(exitRuntimeError, "%v", err)
		}
		defer h.Close()

		runs, err := h.Tail(baselineHistoryLimit)
		if err != nil {
			return codeErr(exitRuntimeError, "%v", err)
		}
		if len(runs) == 0 {
			fmt.Println("no baseline runs recorded")
			return nil
		}
		fmt.Printf("%-22s %-10s %9s %9s %11s\n", "STARTED", "MODE", "FINDINGS", "NEW", "SUPPRESSED")
		for _, r := range runs {
			fmt.Printf("%-22s %-10s %9d %9d %11d\n", r.StartedAt, r.Mode, r.FindingCount, r.NewCount, r.SuppressedCount)
		}
		return nil
	},
}

func init() {
	baselineHistoryCmd.Flags().IntVar(&baselineHistoryLimit, "limit", 20, "Number of runs to show")
	baselineCmd.AddCommand(baselineHistoryCmd)
}

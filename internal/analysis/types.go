// Package analysis implements the AnalysisPipeline: graph snapshots,
// hotspot ranking, and god/package scoring, run only when enabled by
// configuration. Every output here is deterministic given an identical
// FactIndex, since it is built entirely on internal/graph's sorted
// traversal primitives.
package analysis

// GraphSnapshot is one granularity's worth of structural summary.
type GraphSnapshot struct {
	Granularity          string
	Nodes                []string
	Adjacency            map[string][]string
	SCCCount             int
	CyclicSCCs           [][]string
	RepresentativeCycles [][]string
}

// Metric names one hotspot ranking dimension.
type Metric string

const (
	MetricFanIn        Metric = "FAN_IN"
	MetricFanOut       Metric = "FAN_OUT"
	MetricPackageSpread Metric = "PACKAGE_SPREAD"
	MetricMethodCount  Metric = "METHOD_COUNT"
)

// HotspotEntry is one node's ranked position for one metric.
type HotspotEntry struct {
	ID    string
	Value float64
	Rank  int // 1-based and sequential; equal values are ordered by id ascending
}

// Hotspots groups top-N rankings by metric, at class and package
// granularity separately.
type Hotspots struct {
	Class   map[Metric][]HotspotEntry
	Package map[Metric][]HotspotEntry
}

// Band is the threshold-mapped severity band a score falls into.
type Band string

const (
	BandOK    Band = "OK"
	BandWarn  Band = "WARN"
	BandError Band = "ERROR"
)

// ClassScore is one class's god-score.
type ClassScore struct {
	FQName   string
	GodScore float64
	Band     Band
}

// PackageScore is one package's overall architectural health score.
type PackageScore struct {
	Package      string
	OverallScore float64
	Band         Band
}

// Result is the AnalysisPipeline's full output.
type Result struct {
	Graphs        []GraphSnapshot
	Hotspots      Hotspots
	ClassScores   []ClassScore
	PackageScores []PackageScore
}

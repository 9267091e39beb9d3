package analysis

import "github.com/shamash-asm/shamash/internal/graph"

// ScoreWeights weights the five normalized inputs to a score. V1
// defaults: class god-score 0.35/0.10/0.30/0.15/0.10 (method count,
// field count, fan-out, fan-in, package spread); package overall-score
// 0.30/0.20/0.25/0.15/0.10 (cycles, density, layering violations,
// god-class prevalence, external coupling).
type ScoreWeights [5]float64

var DefaultGodScoreWeights = ScoreWeights{0.35, 0.10, 0.30, 0.15, 0.10}
var DefaultPackageScoreWeights = ScoreWeights{0.30, 0.20, 0.25, 0.15, 0.10}

// Options configures one AnalysisPipeline run.
type Options struct {
	Granularities       []graph.Granularity
	IncludeExternal     bool
	TopN                int
	MaxCycles           int
	MaxCycleNodes       int
	GodScoreWeights     ScoreWeights
	PackageScoreWeights ScoreWeights
	WarningThreshold    float64
	ErrorThreshold      float64
}

// DefaultOptions returns the V1 model defaults.
func DefaultOptions() Options {
	return Options{
		Granularities:       []graph.Granularity{graph.GranularityClass, graph.GranularityPackage, graph.GranularityModule},
		IncludeExternal:     false,
		TopN:                10,
		MaxCycles:           50,
		MaxCycleNodes:       120,
		GodScoreWeights:     DefaultGodScoreWeights,
		PackageScoreWeights: DefaultPackageScoreWeights,
		WarningThreshold:    0.70,
		ErrorThreshold:      0.85,
	}
}

func bandFor(score, warn, err float64) Band {
	switch {
	case score >= err:
		return BandError
	case score >= warn:
		return BandWarn
	default:
		return BandOK
	}
}

func granularityName(g graph.Granularity) string {
	switch g {
	case graph.GranularityPackage:
		return "PACKAGE"
	case graph.GranularityModule:
		return "MODULE"
	default:
		return "CLASS"
	}
}

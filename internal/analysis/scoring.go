package analysis

import (
	"sort"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/graph"
)

func minMaxNormalize(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return values
	}
	min, max := values[firstKey(values)], values[firstKey(values)]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make(map[string]float64, len(values))
	if max == min {
		for k := range values {
			out[k] = 0
		}
		return out
	}
	for k, v := range values {
		out[k] = (v - min) / (max - min)
	}
	return out
}

func firstKey(m map[string]float64) string {
	for k := range m {
		return k
	}
	return ""
}

func weightedSum(w ScoreWeights, components [5]float64) float64 {
	var sum float64
	for i, c := range components {
		sum += w[i] * c
	}
	return sum
}

// buildClassScores computes the per-class god-score: a weighted average
// of min-max normalized method count, field count, fan-out, fan-in, and
// package spread.
func buildClassScores(idx *factindex.Index, opts Options) []ClassScore {
	classGraph := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityClass, opts.IncludeExternal)

	methodCount := classMetricValues(idx, classGraph, opts.IncludeExternal, MetricMethodCount)
	fieldCount := make(map[string]float64, len(idx.Classes()))
	for _, c := range idx.Classes() {
		fieldCount[c.FQName] = float64(c.FieldCount)
	}
	fanOut := classMetricValues(idx, classGraph, opts.IncludeExternal, MetricFanOut)
	fanIn := classMetricValues(idx, classGraph, opts.IncludeExternal, MetricFanIn)
	spread := classMetricValues(idx, classGraph, opts.IncludeExternal, MetricPackageSpread)

	nMethodCount := minMaxNormalize(methodCount)
	nFieldCount := minMaxNormalize(fieldCount)
	nFanOut := minMaxNormalize(fanOut)
	nFanIn := minMaxNormalize(fanIn)
	nSpread := minMaxNormalize(spread)

	out := make([]ClassScore, 0, len(idx.Classes()))
	for _, c := range idx.Classes() {
		score := weightedSum(opts.GodScoreWeights, [5]float64{
			nMethodCount[c.FQName], nFieldCount[c.FQName], nFanOut[c.FQName], nFanIn[c.FQName], nSpread[c.FQName],
		})
		out = append(out, ClassScore{FQName: c.FQName, GodScore: score, Band: bandFor(score, opts.WarningThreshold, opts.ErrorThreshold)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQName < out[j].FQName })
	return out
}

// buildPackageScores computes the per-package overall architectural
// health score from cycle membership, localized dependency density,
// reserved layering violations (always 0 in V1), mean god-score of
// member classes, and the fraction of out-edges leaving the project.
func buildPackageScores(idx *factindex.Index, classScores []ClassScore, opts Options) []PackageScore {
	packageGraph := graph.BuildGraph(idx.Classes(), idx.Edges(), graph.GranularityPackage, opts.IncludeExternal)
	sccs := graph.TarjanSCC(packageGraph)
	cyclic := graph.CyclicComponents(packageGraph, sccs)
	inCycle := make(map[string]bool)
	for _, scc := range cyclic {
		for _, m := range scc.Members {
			inCycle[m] = true
		}
	}

	godScoreByClass := make(map[string]float64, len(classScores))
	for _, cs := range classScores {
		godScoreByClass[cs.FQName] = cs.GodScore
	}

	packages := make(map[string]bool)
	godSum := make(map[string]float64)
	godN := make(map[string]int)
	edgeTotal := make(map[string]int)
	edgeExternal := make(map[string]int)
	for _, c := range idx.Classes() {
		packages[c.PackageName] = true
		godSum[c.PackageName] += godScoreByClass[c.FQName]
		godN[c.PackageName]++
	}
	for _, e := range idx.Edges() {
		from, ok := idx.Class(e.From.FQName)
		if !ok {
			continue
		}
		edgeTotal[from.PackageName]++
		if !idx.IsProjectClass(e.To.FQName) {
			edgeExternal[from.PackageName]++
		}
	}

	numPackages := len(packages)

	out := make([]PackageScore, 0, numPackages)
	for pkg := range packages {
		cycles := 0.0
		if inCycle[pkg] {
			cycles = 1.0
		}

		density := 0.0
		if numPackages > 1 {
			possible := float64(2 * (numPackages - 1))
			density = float64(packageGraph.FanIn(pkg)+packageGraph.FanOut(pkg)) / possible
			if density > 1 {
				density = 1
			}
		}

		const layeringViolations = 0.0 // reserved for a future version

		godPrevalence := 0.0
		if godN[pkg] > 0 {
			godPrevalence = godSum[pkg] / float64(godN[pkg])
		}

		externalCoupling := 0.0
		if edgeTotal[pkg] > 0 {
			externalCoupling = float64(edgeExternal[pkg]) / float64(edgeTotal[pkg])
		}

		score := weightedSum(opts.PackageScoreWeights, [5]float64{cycles, density, layeringViolations, godPrevalence, externalCoupling})
		out = append(out, PackageScore{Package: pkg, OverallScore: score, Band: bandFor(score, opts.WarningThreshold, opts.ErrorThreshold)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

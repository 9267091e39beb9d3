// Package graph implements GraphUtil: a shared, dependency-free graph
// builder and the traversal algorithms multiple rules and the
// analysis pipeline need (Tarjan SCC, bounded cycle sampling, BFS
// shortest path, fan-in/out/density). Every algorithm here is written
// to be deterministic given the same input graph (sorted traversal
// order throughout), so findings and analysis snapshots never flap
// between runs of the same codebase.
package graph

import (
	"sort"

	"github.com/shamash-asm/shamash/internal/facts"
)

// Granularity controls how an edge's endpoints collapse into graph
// nodes.
type Granularity int

const (
	GranularityClass Granularity = iota
	GranularityPackage
	GranularityModule // first dot-segment of the package name
)

// externalBucketName is the synthetic node an out-of-project edge
// target is rewritten to when includeExternal is true.
func externalBucketName(pkg string) string {
	if pkg == "" {
		return "__external__"
	}
	return "__external__:" + pkg
}

// DirectedGraph is an adjacency-list graph over string node ids,
// always built project-anchored: no edge originates from a node this
// package did not derive from a project ClassFact.
type DirectedGraph struct {
	nodes map[string]bool
	adj   map[string]map[string]bool // from -> set of to
}

// NewDirectedGraph returns an empty graph.
func NewDirectedGraph() *DirectedGraph {
	return &DirectedGraph{nodes: map[string]bool{}, adj: map[string]map[string]bool{}}
}

func (g *DirectedGraph) addNode(n string) {
	g.nodes[n] = true
	if g.adj[n] == nil {
		g.adj[n] = map[string]bool{}
	}
}

// AddNode adds a node with no outgoing edges, for callers building a
// graph at a granularity other than BuildGraph's (e.g. role graphs).
func (g *DirectedGraph) AddNode(n string) { g.addNode(n) }

// AddEdge adds a directed edge, creating either endpoint if absent.
func (g *DirectedGraph) AddEdge(from, to string) { g.addEdge(from, to) }

func (g *DirectedGraph) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	g.adj[from][to] = true
}

// Nodes returns every node id, sorted.
func (g *DirectedGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Successors returns node's out-neighbors, sorted.
func (g *DirectedGraph) Successors(node string) []string {
	set := g.adj[node]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the total number of distinct (from,to) pairs.
func (g *DirectedGraph) EdgeCount() int {
	n := 0
	for _, succs := range g.adj {
		n += len(succs)
	}
	return n
}

func nodeForGranularity(t facts.TypeRef, gran Granularity) string {
	switch gran {
	case GranularityPackage:
		return t.PackageName
	case GranularityModule:
		if idx := firstDotIndex(t.PackageName); idx >= 0 {
			return t.PackageName[:idx]
		}
		return t.PackageName
	default:
		return t.FQName
	}
}

func firstDotIndex(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// BuildGraph builds a DirectedGraph at the requested granularity from
// the index's project-originating edges. When includeExternal is
// true, edges whose target is not a project class are rewritten to the
// synthetic external bucket for the target's raw package instead of
// being dropped.
func BuildGraph(classes []facts.ClassFact, edges []facts.DependencyEdge, gran Granularity, includeExternal bool) *DirectedGraph {
	projectClasses := make(map[string]bool, len(classes))
	for _, c := range classes {
		projectClasses[c.FQName] = true
	}

	g := NewDirectedGraph()
	for _, c := range classes {
		g.addNode(nodeForGranularity(facts.TypeRef{FQName: c.FQName, PackageName: c.PackageName}, gran))
	}

	for _, e := range edges {
		from := nodeForGranularity(e.From, gran)
		if !projectClasses[e.From.FQName] {
			continue // graph is project-anchored; never add edges from non-project nodes
		}

		if !projectClasses[e.To.FQName] {
			if !includeExternal {
				continue
			}
			g.addEdge(from, externalBucketName(e.To.PackageName))
			continue
		}

		to := nodeForGranularity(e.To, gran)
		g.addEdge(from, to)
	}

	return g
}

// FanIn returns the number of distinct predecessors of node.
func (g *DirectedGraph) FanIn(node string) int {
	n := 0
	for from, succs := range g.adj {
		if from == node {
			continue
		}
		if succs[node] {
			n++
		}
	}
	return n
}

// FanOut returns the number of distinct successors of node.
func (g *DirectedGraph) FanOut(node string) int {
	return len(g.adj[node])
}

// Density computes E / (N*(N-1)) for N >= 2, else 0.
func (g *DirectedGraph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return float64(g.EdgeCount()) / float64(n*(n-1))
}

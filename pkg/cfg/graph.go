package cfg

import (
	"sort"
	"strconv"
)

// Graph is a simple directed graph over basic block ids: no self loops and
// at most one edge per ordered pair.
type Graph struct {
	succ  map[string]map[string]struct{}
	edges int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{succ: make(map[string]map[string]struct{})}
}

// AddNode adds a block with no edges. Adding an existing block is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.succ[id]; !ok {
		g.succ[id] = make(map[string]struct{})
	}
}

// AddEdge adds from -> to, creating both blocks. Self loops and repeated
// edges are ignored. It reports whether a new edge was added.
func (g *Graph) AddEdge(from, to string) bool {
	g.AddNode(from)
	g.AddNode(to)
	if from == to {
		return false
	}
	if _, ok := g.succ[from][to]; ok {
		return false
	}
	g.succ[from][to] = struct{}{}
	g.edges++
	return true
}

// HasEdge reports whether from -> to is in the graph.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.succ[from][to]
	return ok
}

// NodeCount returns |V|.
func (g *Graph) NodeCount() int {
	return len(g.succ)
}

// EdgeCount returns |E|.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns the block ids in ascending numeric order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.succ))
	for id := range g.succ {
		nodes = append(nodes, id)
	}
	sortBlocks(nodes)
	return nodes
}

// Successors returns the direct successors of id in ascending order.
func (g *Graph) Successors(id string) []string {
	out := make([]string, 0, len(g.succ[id]))
	for to := range g.succ[id] {
		out = append(out, to)
	}
	sortBlocks(out)
	return out
}

// Edges returns all edges ordered by source then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			edges = append(edges, Edge{SourceID: from, TargetID: to})
		}
	}
	return edges
}

// sortBlocks orders numeric ids numerically and anything else after them,
// lexically.
func sortBlocks(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseUint(ids[i], 10, 64)
		b, errB := strconv.ParseUint(ids[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return ids[i] < ids[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
}

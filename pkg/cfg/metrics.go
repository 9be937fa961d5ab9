package cfg

// Density returns |E| / (|V|·(|V|-1)), or 0 when the graph has at most one node.
func (g *Graph) Density() float64 {
	n := g.NodeCount()
	if n <= 1 {
		return 0
	}
	return float64(g.edges) / float64(n*(n-1))
}

// Transitivity returns the fraction of connected triples that close into a
// triangle, computed on the undirected projection of the graph. A graph
// without triangles has transitivity 0.
func (g *Graph) Transitivity() float64 {
	nbrs := g.undirected()

	var closed, triads int
	for v, vs := range nbrs {
		d := len(vs)
		triads += d * (d - 1)
		for u := range vs {
			for w := range nbrs[u] {
				if w == v {
					continue
				}
				if _, ok := vs[w]; ok {
					closed++
				}
			}
		}
	}
	if closed == 0 {
		return 0
	}
	return float64(closed) / float64(triads)
}

func (g *Graph) undirected() map[string]map[string]struct{} {
	nbrs := make(map[string]map[string]struct{}, len(g.succ))
	for v := range g.succ {
		nbrs[v] = make(map[string]struct{})
	}
	for from, tos := range g.succ {
		for to := range tos {
			nbrs[from][to] = struct{}{}
			nbrs[to][from] = struct{}{}
		}
	}
	return nbrs
}

// AttractingComponents counts the strongly connected components that no
// edge leaves. An empty graph has none.
func (g *Graph) AttractingComponents() int {
	comp := g.components()
	leaves := make(map[int]bool)
	for v, c := range comp {
		if _, seen := leaves[c]; !seen {
			leaves[c] = true
		}
		for to := range g.succ[v] {
			if comp[to] != c {
				leaves[c] = false
			}
		}
	}

	n := 0
	for _, attracting := range leaves {
		if attracting {
			n++
		}
	}
	return n
}

// StronglyConnectedComponents returns the components of g, each listed in
// ascending block order.
func (g *Graph) StronglyConnectedComponents() [][]string {
	comp := g.components()
	byID := make(map[int][]string)
	for _, v := range g.Nodes() {
		byID[comp[v]] = append(byID[comp[v]], v)
	}
	out := make([][]string, 0, len(byID))
	for id := 0; id < len(byID); id++ {
		out = append(out, byID[id])
	}
	return out
}

// components maps every node to the index of its strongly connected
// component, using Tarjan's algorithm with an explicit stack so that long
// block chains cannot overflow the goroutine stack.
func (g *Graph) components() map[string]int {
	type frame struct {
		node string
		succ []string
		next int
	}

	index := 0
	nodeIndex := make(map[string]int, len(g.succ))
	lowLink := make(map[string]int, len(g.succ))
	onStack := make(map[string]bool, len(g.succ))
	var stack []string
	comp := make(map[string]int, len(g.succ))
	ncomp := 0

	for _, start := range g.Nodes() {
		if _, visited := nodeIndex[start]; visited {
			continue
		}

		var calls []frame
		push := func(v string) {
			nodeIndex[v] = index
			lowLink[v] = index
			index++
			stack = append(stack, v)
			onStack[v] = true
			calls = append(calls, frame{node: v, succ: g.Successors(v)})
		}
		push(start)

		for len(calls) > 0 {
			f := &calls[len(calls)-1]
			if f.next < len(f.succ) {
				w := f.succ[f.next]
				f.next++
				if _, visited := nodeIndex[w]; !visited {
					push(w)
				} else if onStack[w] && nodeIndex[w] < lowLink[f.node] {
					lowLink[f.node] = nodeIndex[w]
				}
				continue
			}

			v := f.node
			if lowLink[v] == nodeIndex[v] {
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp[w] = ncomp
					if w == v {
						break
					}
				}
				ncomp++
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].node
				if lowLink[v] < lowLink[parent] {
					lowLink[parent] = lowLink[v]
				}
			}
		}
	}
	return comp
}

package cfg

import (
	"fmt"

	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// Build derives the block graph of a function from its cfg_edge relation.
// Each edge between points in different blocks becomes a block edge;
// edges within a block are dropped. A malformed point aborts the build.
func Build(set *facts.FactSet) (*Graph, error) {
	g := NewGraph()
	for i, e := range set.CFGEdge {
		from, err := facts.ParsePoint(e.From)
		if err != nil {
			return nil, fmt.Errorf("cfg_edge tuple %d: %w", i+1, err)
		}
		to, err := facts.ParsePoint(e.To)
		if err != nil {
			return nil, fmt.Errorf("cfg_edge tuple %d: %w", i+1, err)
		}
		if from.Block != to.Block {
			g.AddEdge(from.Block, to.Block)
		}
	}
	return g, nil
}

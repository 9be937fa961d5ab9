// Package cfg reconstructs block-level control flow graphs from cfg_edge
// facts and computes structural metrics over them.
package cfg

// Edge is a directed edge between two basic blocks.
type Edge struct {
	SourceID string `json:"source_id"` // block the edge leaves
	TargetID string `json:"target_id"` // block the edge enters
}

// Info is a serializable view of one function's graph and its metrics.
type Info struct {
	FunctionName         string   `json:"function_name"`
	Blocks               []string `json:"blocks"`
	Edges                []Edge   `json:"edges"`
	Density              float64  `json:"density"`
	Transitivity         float64  `json:"transitivity"`
	AttractingComponents int      `json:"attracting_components"`
}

// Describe summarizes g for display.
func Describe(name string, g *Graph) *Info {
	return &Info{
		FunctionName:         name,
		Blocks:               g.Nodes(),
		Edges:                g.Edges(),
		Density:              g.Density(),
		Transitivity:         g.Transitivity(),
		AttractingComponents: g.AttractingComponents(),
	}
}

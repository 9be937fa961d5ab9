// Package metrics computes the per-function cardinality and graph metrics
// reported for each function of a crate.
package metrics

import (
	"github.com/l3aro/go-nll-facts/pkg/cfg"
	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// UniqueLoans counts the distinct loans of borrow_region, killed and invalidates.
func UniqueLoans(s *facts.FactSet) int {
	loans := make(map[string]struct{})
	for _, t := range s.BorrowRegion {
		loans[t.Loan] = struct{}{}
	}
	for _, t := range s.Killed {
		loans[t.Loan] = struct{}{}
	}
	for _, t := range s.Invalidates {
		loans[t.Loan] = struct{}{}
	}
	return len(loans)
}

// UniqueVariables counts the distinct variables of var_used, var_defined,
// var_drop_used, var_uses_region and var_drops_region.
func UniqueVariables(s *facts.FactSet) int {
	vars := make(map[string]struct{})
	for _, rel := range [][]facts.VarPointFact{s.VarUsed, s.VarDefined, s.VarDropUsed} {
		for _, t := range rel {
			vars[t.Var] = struct{}{}
		}
	}
	for _, rel := range [][]facts.VarRegionFact{s.VarUsesRegion, s.VarDropsRegion} {
		for _, t := range rel {
			vars[t.Var] = struct{}{}
		}
	}
	return len(vars)
}

// UniqueRegions counts the distinct regions of borrow_region,
// var_uses_region, var_drops_region and both sides of outlives.
func UniqueRegions(s *facts.FactSet) int {
	regions := make(map[string]struct{})
	for _, t := range s.BorrowRegion {
		regions[t.Region] = struct{}{}
	}
	for _, rel := range [][]facts.VarRegionFact{s.VarUsesRegion, s.VarDropsRegion} {
		for _, t := range rel {
			regions[t.Region] = struct{}{}
		}
	}
	for _, t := range s.Outlives {
		regions[t.Sup] = struct{}{}
		regions[t.Sub] = struct{}{}
	}
	return len(regions)
}

// Metrics are the six derived values of one function.
type Metrics struct {
	Loans                int     `json:"loans" msgpack:"loans"`
	Variables            int     `json:"variables" msgpack:"variables"`
	Regions              int     `json:"regions" msgpack:"regions"`
	CFGNodes             int     `json:"cfg_nodes" msgpack:"cfg_nodes"`
	CFGDensity           float64 `json:"cfg_density" msgpack:"cfg_density"`
	CFGTransitivity      float64 `json:"cfg_transitivity" msgpack:"cfg_transitivity"`
	AttractingComponents int     `json:"cfg_attracting_components" msgpack:"cfg_attracting_components"`
}

// Compute derives the metrics of a loaded function and its graph.
func Compute(s *facts.FactSet, g *cfg.Graph) Metrics {
	return Metrics{
		Loans:                UniqueLoans(s),
		Variables:            UniqueVariables(s),
		Regions:              UniqueRegions(s),
		CFGNodes:             g.NodeCount(),
		CFGDensity:           g.Density(),
		CFGTransitivity:      g.Transitivity(),
		AttractingComponents: g.AttractingComponents(),
	}
}

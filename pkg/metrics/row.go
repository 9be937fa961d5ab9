package metrics

import (
	"strconv"

	"github.com/l3aro/go-nll-facts/pkg/cfg"
	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// Row is one output record: a function's relation sizes and metrics.
type Row struct {
	Program  string `json:"program" msgpack:"program"`
	Function string `json:"function" msgpack:"function"`
	Lens     []int  `json:"relation_lens" msgpack:"relation_lens"`
	Metrics  `msgpack:",inline"`
}

// NewRow analyses one loaded function of program. It fails if the
// function's control flow graph cannot be built.
func NewRow(program string, s *facts.FactSet) (Row, error) {
	g, err := cfg.Build(s)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Program:  program,
		Function: s.Name,
		Lens:     s.Lens(),
		Metrics:  Compute(s, g),
	}, nil
}

// Header returns the column names in output order.
func Header() []string {
	h := []string{"program", "function"}
	for _, r := range facts.Relations() {
		h = append(h, r.String())
	}
	return append(h,
		"loans",
		"variables",
		"regions",
		"cfg nodes",
		"cfg density",
		"cfg transitivity",
		"cfg number of attracting components",
	)
}

// Record formats the row as CSV fields matching Header.
func (r Row) Record() []string {
	rec := make([]string, 0, len(r.Lens)+9)
	rec = append(rec, r.Program, r.Function)
	for _, n := range r.Lens {
		rec = append(rec, strconv.Itoa(n))
	}
	return append(rec,
		strconv.Itoa(r.Loans),
		strconv.Itoa(r.Variables),
		strconv.Itoa(r.Regions),
		strconv.Itoa(r.CFGNodes),
		formatFloat(r.CFGDensity),
		formatFloat(r.CFGTransitivity),
		strconv.Itoa(r.AttractingComponents),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

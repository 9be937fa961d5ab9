// Package facts reads the per-function relation dumps emitted by the borrow
// checker's -Znll-facts mode. It decodes program points, reads tab-separated
// relation files into typed tuples and checks that a crate's fact directory
// is complete.
package facts

// Relation identifies one of the required fact relations.
type Relation int

const (
	BorrowRegion Relation = iota
	CFGEdge
	Invalidates
	Killed
	Outlives
	UniversalRegion
	VarDefined
	VarDropUsed
	VarDropsRegion
	VarInitializedOnExit
	VarUsed
	VarUsesRegion

	numRelations
)

// FileExt is the extension of every relation file.
const FileExt = ".facts"

var relationNames = [numRelations]string{
	BorrowRegion:         "borrow_region",
	CFGEdge:              "cfg_edge",
	Invalidates:          "invalidates",
	Killed:               "killed",
	Outlives:             "outlives",
	UniversalRegion:      "universal_region",
	VarDefined:           "var_defined",
	VarDropUsed:          "var_drop_used",
	VarDropsRegion:       "var_drops_region",
	VarInitializedOnExit: "var_initialized_on_exit",
	VarUsed:              "var_used",
	VarUsesRegion:        "var_uses_region",
}

var relationArity = [numRelations]int{
	BorrowRegion:         3,
	CFGEdge:              2,
	Invalidates:          2,
	Killed:               2,
	Outlives:             3,
	UniversalRegion:      1,
	VarDefined:           2,
	VarDropUsed:          2,
	VarDropsRegion:       2,
	VarInitializedOnExit: 2,
	VarUsed:              2,
	VarUsesRegion:        2,
}

// Relations returns every required relation in output column order.
func Relations() []Relation {
	rs := make([]Relation, numRelations)
	for i := range rs {
		rs[i] = Relation(i)
	}
	return rs
}

// String returns the relation name as used in file names and CSV headers.
func (r Relation) String() string {
	if r < 0 || r >= numRelations {
		return "unknown"
	}
	return relationNames[r]
}

// Arity returns the number of fields in each tuple of the relation.
func (r Relation) Arity() int {
	if r < 0 || r >= numRelations {
		return 0
	}
	return relationArity[r]
}

// FileName returns the name of the file holding the relation, e.g. "cfg_edge.facts".
func (r Relation) FileName() string {
	return r.String() + FileExt
}

// ParseRelation maps a relation name back to its Relation.
func ParseRelation(name string) (Relation, bool) {
	for i, n := range relationNames {
		if n == name {
			return Relation(i), true
		}
	}
	return 0, false
}

package facts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Field values are opaque identifiers as written by the compiler.
// Points are kept raw; ParsePoint decodes them where structure matters.

type BorrowRegionFact struct{ Region, Loan, Point string }
type CFGEdgeFact struct{ From, To string }
type InvalidatesFact struct{ Point, Loan string }
type KilledFact struct{ Loan, Point string }
type OutlivesFact struct{ Sup, Sub, Point string }
type UniversalRegionFact struct{ Region string }

// VarPointFact is the shape shared by var_defined, var_drop_used,
// var_initialized_on_exit and var_used.
type VarPointFact struct{ Var, Point string }

// VarRegionFact is the shape shared by var_drops_region and var_uses_region.
type VarRegionFact struct{ Var, Region string }

// FactSet holds every required relation of one function.
type FactSet struct {
	Name string

	BorrowRegion         []BorrowRegionFact
	CFGEdge              []CFGEdgeFact
	Invalidates          []InvalidatesFact
	Killed               []KilledFact
	Outlives             []OutlivesFact
	UniversalRegion      []UniversalRegionFact
	VarDefined           []VarPointFact
	VarDropUsed          []VarPointFact
	VarDropsRegion       []VarRegionFact
	VarInitializedOnExit []VarPointFact
	VarUsed              []VarPointFact
	VarUsesRegion        []VarRegionFact
}

// Len returns the number of tuples in relation r.
func (s *FactSet) Len(r Relation) int {
	switch r {
	case BorrowRegion:
		return len(s.BorrowRegion)
	case CFGEdge:
		return len(s.CFGEdge)
	case Invalidates:
		return len(s.Invalidates)
	case Killed:
		return len(s.Killed)
	case Outlives:
		return len(s.Outlives)
	case UniversalRegion:
		return len(s.UniversalRegion)
	case VarDefined:
		return len(s.VarDefined)
	case VarDropUsed:
		return len(s.VarDropUsed)
	case VarDropsRegion:
		return len(s.VarDropsRegion)
	case VarInitializedOnExit:
		return len(s.VarInitializedOnExit)
	case VarUsed:
		return len(s.VarUsed)
	case VarUsesRegion:
		return len(s.VarUsesRegion)
	}
	return 0
}

// Lens returns the tuple count of every relation in Relations() order.
func (s *FactSet) Lens() []int {
	out := make([]int, numRelations)
	for _, r := range Relations() {
		out[r] = s.Len(r)
	}
	return out
}

// Load reads all required relations of the function stored in dir.
// An absent relation file is a *MissingRelationError; an empty one is a
// valid relation with no tuples.
func Load(dir string) (*FactSet, error) {
	s := &FactSet{Name: filepath.Base(dir)}
	l := loader{dir: dir, name: s.Name}

	var err error
	if s.BorrowRegion, err = load(l, BorrowRegion, func(f []string) BorrowRegionFact {
		return BorrowRegionFact{Region: f[0], Loan: f[1], Point: f[2]}
	}); err != nil {
		return nil, err
	}
	if s.CFGEdge, err = load(l, CFGEdge, func(f []string) CFGEdgeFact {
		return CFGEdgeFact{From: f[0], To: f[1]}
	}); err != nil {
		return nil, err
	}
	if s.Invalidates, err = load(l, Invalidates, func(f []string) InvalidatesFact {
		return InvalidatesFact{Point: f[0], Loan: f[1]}
	}); err != nil {
		return nil, err
	}
	if s.Killed, err = load(l, Killed, func(f []string) KilledFact {
		return KilledFact{Loan: f[0], Point: f[1]}
	}); err != nil {
		return nil, err
	}
	if s.Outlives, err = load(l, Outlives, func(f []string) OutlivesFact {
		return OutlivesFact{Sup: f[0], Sub: f[1], Point: f[2]}
	}); err != nil {
		return nil, err
	}
	if s.UniversalRegion, err = load(l, UniversalRegion, func(f []string) UniversalRegionFact {
		return UniversalRegionFact{Region: f[0]}
	}); err != nil {
		return nil, err
	}
	if s.VarDefined, err = load(l, VarDefined, varPoint); err != nil {
		return nil, err
	}
	if s.VarDropUsed, err = load(l, VarDropUsed, varPoint); err != nil {
		return nil, err
	}
	if s.VarDropsRegion, err = load(l, VarDropsRegion, varRegion); err != nil {
		return nil, err
	}
	if s.VarInitializedOnExit, err = load(l, VarInitializedOnExit, varPoint); err != nil {
		return nil, err
	}
	if s.VarUsed, err = load(l, VarUsed, varPoint); err != nil {
		return nil, err
	}
	if s.VarUsesRegion, err = load(l, VarUsesRegion, varRegion); err != nil {
		return nil, err
	}
	return s, nil
}

func varPoint(f []string) VarPointFact   { return VarPointFact{Var: f[0], Point: f[1]} }
func varRegion(f []string) VarRegionFact { return VarRegionFact{Var: f[0], Region: f[1]} }

type loader struct {
	dir  string
	name string
}

func load[T any](l loader, r Relation, conv func([]string) T) ([]T, error) {
	path := filepath.Join(l.dir, r.FileName())
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingRelationError{Function: l.name, Relation: r, Path: path}
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out := []T{}
	rd := NewReader(f)
	for rd.Next() {
		fields := rd.Fields()
		if len(fields) != r.Arity() {
			return nil, &MalformedTupleError{Relation: r, Line: rd.Line(), Fields: len(fields)}
		}
		out = append(out, conv(fields))
	}
	if err := rd.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

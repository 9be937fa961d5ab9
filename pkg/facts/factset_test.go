package facts_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-nll-facts/internal/factstest"
	"github.com/l3aro/go-nll-facts/pkg/facts"
)

func TestRelations(t *testing.T) {
	names := make([]string, 0, 12)
	for _, r := range facts.Relations() {
		names = append(names, r.String())
	}
	assert.Equal(t, []string{
		"borrow_region", "cfg_edge", "invalidates", "killed", "outlives", "universal_region",
		"var_defined", "var_drop_used", "var_drops_region", "var_initialized_on_exit",
		"var_used", "var_uses_region",
	}, names)

	r, ok := facts.ParseRelation("outlives")
	require.True(t, ok)
	assert.Equal(t, facts.Outlives, r)
	assert.Equal(t, 3, r.Arity())
	assert.Equal(t, "outlives.facts", r.FileName())

	_, ok = facts.ParseRelation("subset")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := factstest.WriteFunction(t, t.TempDir(), "main", factstest.Sample())

	set, err := facts.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "main", set.Name)
	assert.Equal(t, []int{2, 3, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1}, set.Lens())
	assert.Equal(t, facts.BorrowRegionFact{Region: `"'_#1r'"`, Loan: `"bw0"`, Point: `"Mid(bb0[0])"`}, set.BorrowRegion[0])
	assert.Equal(t, facts.OutlivesFact{Sup: `"'_#1r'"`, Sub: `"'_#3r'"`, Point: `"Mid(bb0[0])"`}, set.Outlives[0])
}

func TestLoad_EmptyRelationsAreValid(t *testing.T) {
	dir := factstest.WriteFunction(t, t.TempDir(), "empty", factstest.Function{})

	set, err := facts.Load(dir)
	require.NoError(t, err)
	for _, r := range facts.Relations() {
		assert.Zero(t, set.Len(r), r.String())
	}
	assert.NotNil(t, set.CFGEdge)
}

func TestLoad_MissingRelation(t *testing.T) {
	dir := factstest.WriteFunction(t, t.TempDir(), "broken", factstest.Function{
		Omit: []facts.Relation{facts.Outlives},
	})

	_, err := facts.Load(dir)
	require.Error(t, err)

	var mre *facts.MissingRelationError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, facts.Outlives, mre.Relation)
	assert.Equal(t, "broken", mre.Function)
	assert.Equal(t, filepath.Join(dir, "outlives.facts"), mre.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_WrongArity(t *testing.T) {
	fn := factstest.Sample()
	fn.Relations[facts.Killed] = "bw0\tMid(bb0[0])\nbw1\tMid(bb0[0])\textra\n"
	dir := factstest.WriteFunction(t, t.TempDir(), "f", fn)

	_, err := facts.Load(dir)
	var mte *facts.MalformedTupleError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, facts.Killed, mte.Relation)
	assert.Equal(t, 2, mte.Line)
	assert.Equal(t, 3, mte.Fields)
}

func TestLoad_TruncatedLineSkipped(t *testing.T) {
	fn := factstest.Sample()
	fn.Relations[facts.Killed] = "bw0\tMid(bb0[0])\nbw1\t\n"
	dir := factstest.WriteFunction(t, t.TempDir(), "f", fn)

	set, err := facts.Load(dir)
	require.NoError(t, err)
	require.Len(t, set.Killed, 1)
	assert.Equal(t, facts.KilledFact{Loan: "bw0", Point: "Mid(bb0[0])"}, set.Killed[0])
}

func TestFunctionDirs(t *testing.T) {
	root := t.TempDir()
	factstest.WriteFunction(t, root, "a", factstest.Function{})
	factstest.WriteFunction(t, root, "b", factstest.Function{})
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".DS_Store"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	dirs, err := facts.FunctionDirs(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, dirs)
}

func TestMissing(t *testing.T) {
	t.Run("missing outlives reported once", func(t *testing.T) {
		root := t.TempDir()
		factstest.WriteFunction(t, root, "ok", factstest.Sample())
		fnDir := factstest.WriteFunction(t, root, "bad", factstest.Function{
			Omit: []facts.Relation{facts.Outlives},
		})

		missing, err := facts.Missing(root)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(fnDir, "outlives.facts")}, missing)
	})

	t.Run("hidden sibling ignored", func(t *testing.T) {
		root := t.TempDir()
		factstest.WriteFunction(t, root, "ok", factstest.Sample())
		require.NoError(t, os.MkdirAll(filepath.Join(root, ".DS_Store"), 0755))

		missing, err := facts.Missing(root)
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("not a directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope")

		missing, err := facts.Missing(path)
		require.NoError(t, err)
		assert.Equal(t, []string{path}, missing)
	})

	t.Run("directory in place of a file", func(t *testing.T) {
		root := t.TempDir()
		fnDir := factstest.WriteFunction(t, root, "f", factstest.Function{Omit: []facts.Relation{facts.Killed}})
		require.NoError(t, os.MkdirAll(filepath.Join(fnDir, "killed.facts"), 0755))

		missing, err := facts.Missing(root)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(fnDir, "killed.facts")}, missing)
	})
}

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-nll-facts/internal/factstest"
	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

func sampleRows() []metrics.Row {
	return []metrics.Row{{
		Program:  "demo",
		Function: "sample",
		Lens:     []int{2, 3, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1},
		Metrics: metrics.Metrics{
			Loans:                2,
			Variables:            3,
			Regions:              3,
			CFGNodes:             2,
			CFGDensity:           0.5,
			CFGTransitivity:      0,
			AttractingComponents: 1,
		},
	}}
}

func TestRowCache_Miss(t *testing.T) {
	c, err := New(Options{Dir: t.TempDir()})
	require.NoError(t, err)

	_, err = c.Get("nothing")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRowCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{Dir: dir})
	require.NoError(t, err)

	require.NoError(t, c.Put("k1", Entry{Crate: "demo", Rows: sampleRows(), FunctionsSkipped: 2}))

	e, err := c.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), e.Rows)
	assert.Equal(t, 2, e.FunctionsSkipped)
	assert.Equal(t, "demo", e.Crate)

	_, err = os.Stat(filepath.Join(dir, "k1.msgpack"))
	assert.NoError(t, err)

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Writes)
}

func TestRowCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := New(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, first.Put("k1", Entry{Crate: "demo", Rows: sampleRows(), FunctionsSkipped: 1}))

	second, err := New(Options{Dir: dir, MemoryEntries: 1})
	require.NoError(t, err)
	e, err := second.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), e.Rows)
	assert.Equal(t, 1, e.FunctionsSkipped)
}

func TestRowCache_EmptyRows(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Put("empty", Entry{Crate: "demo"}))

	fresh, err := New(Options{Dir: dir})
	require.NoError(t, err)
	e, err := fresh.Get("empty")
	require.NoError(t, err)
	assert.Empty(t, e.Rows)
}

func TestRowCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.msgpack"), []byte{0xc1}, 0644))

	c, err := New(Options{Dir: dir})
	require.NoError(t, err)
	_, err = c.Get("bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	factsDir := t.TempDir()
	fn := factstest.WriteFunction(t, factsDir, "sample", factstest.Sample())

	a, err := Fingerprint(factsDir, "crate")
	require.NoError(t, err)
	assert.Len(t, a, 16)

	again, err := Fingerprint(factsDir, "crate")
	require.NoError(t, err)
	assert.Equal(t, a, again, "fingerprint must be stable")

	other, err := Fingerprint(factsDir, "function")
	require.NoError(t, err)
	assert.NotEqual(t, a, other, "salt must change the fingerprint")

	// Growing a relation file changes its size.
	path := filepath.Join(fn, "var_used.facts")
	require.NoError(t, os.WriteFile(path, []byte("\"_9\"\t\"Mid(bb0[0])\"\n\"_8\"\t\"Mid(bb0[0])\"\n\"_7\"\t\"Mid(bb0[0])\"\n"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	changed, err := Fingerprint(factsDir, "crate")
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}

func TestFingerprint_MissingDir(t *testing.T) {
	_, err := Fingerprint(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, err)
}

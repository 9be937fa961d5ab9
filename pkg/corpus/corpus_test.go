package corpus

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/factstest"
	"github.com/l3aro/go-nll-facts/internal/log"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/cache"
	"github.com/l3aro/go-nll-facts/pkg/facts"
	"github.com/l3aro/go-nll-facts/pkg/metrics"
	"github.com/l3aro/go-nll-facts/pkg/sink"
)

// crateWith creates root/name/nll-facts with the given functions.
func crateWith(t *testing.T, root, name string, fns map[string]factstest.Function) scanner.Crate {
	t.Helper()
	factsDir := filepath.Join(root, name, scanner.FactsDirName)
	require.NoError(t, os.MkdirAll(factsDir, 0755))
	for fn, f := range fns {
		factstest.WriteFunction(t, factsDir, fn, f)
	}
	return scanner.Resolve(filepath.Join(root, name))
}

func incomplete() factstest.Function {
	f := factstest.Sample()
	f.Omit = []facts.Relation{facts.Killed, facts.Outlives, facts.VarUsed}
	return f
}

type collector struct {
	rows []metrics.Row
}

func (c *collector) sink() sink.Sink {
	return sink.Func(func(r metrics.Row) error {
		c.rows = append(c.rows, r)
		return nil
	})
}

func bufferLogger(buf *bytes.Buffer) log.Logger {
	return log.New(log.LoggerConfig{Level: log.DebugLevel, Output: buf})
}

func TestRun_FunctionMode_SkipsIncompleteFunction(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{
		"complete": factstest.Sample(),
		"partial":  incomplete(),
	})

	var logs bytes.Buffer
	var got collector
	agg := New(got.sink(), Options{Validation: config.ValidateFunction, Logger: bufferLogger(&logs)})

	sum, err := agg.Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)

	require.Len(t, got.rows, 1)
	assert.Equal(t, "demo", got.rows[0].Program)
	assert.Equal(t, "complete", got.rows[0].Function)
	assert.Len(t, got.rows[0].Lens, len(facts.Relations()))

	assert.Equal(t, Summary{CratesSeen: 1, CratesProcessed: 1, FunctionsEmitted: 1, FunctionsSkipped: 1}, sum)
	assert.Contains(t, logs.String(), "function=partial")
}

func TestRun_CrateMode_SkipsWholeCrate(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{
		"complete": factstest.Sample(),
		"partial":  incomplete(),
	})

	var logs bytes.Buffer
	var got collector
	agg := New(got.sink(), Options{Logger: bufferLogger(&logs)})

	sum, err := agg.Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)

	assert.Empty(t, got.rows)
	assert.Equal(t, 1, sum.CratesSkipped)
	assert.Zero(t, sum.CratesProcessed)
	assert.Contains(t, logs.String(), "skipping crate crate=demo missing=3")
}

func TestRun_MalformedPointSkipsFunction(t *testing.T) {
	bad := factstest.Sample()
	bad.Relations[facts.CFGEdge] = "\"Start(bb0[0])\"\t\"garbage\"\n"

	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{
		"good": factstest.Sample(),
		"bad":  bad,
	})

	var logs bytes.Buffer
	var got collector
	sum, err := New(got.sink(), Options{Logger: bufferLogger(&logs)}).Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)

	require.Len(t, got.rows, 1)
	assert.Equal(t, "good", got.rows[0].Function)
	assert.Equal(t, 1, sum.FunctionsSkipped)
	assert.Contains(t, logs.String(), "function=bad")
}

func TestRun_ManyCratesWithWorkers(t *testing.T) {
	root := t.TempDir()
	var crates []scanner.Crate
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		crates = append(crates, crateWith(t, root, name, map[string]factstest.Function{
			"f1": factstest.Sample(),
			"f2": factstest.Sample(),
		}))
	}

	var got collector
	sum, err := New(got.sink(), Options{Workers: 3}).Run(context.Background(), crates)
	require.NoError(t, err)

	assert.Len(t, got.rows, 10)
	assert.Equal(t, 5, sum.CratesProcessed)
	assert.Equal(t, 10, sum.FunctionsEmitted)

	// Each crate's rows arrive together.
	perCrate := make(map[string]int)
	for i, r := range got.rows {
		if i%2 == 1 {
			assert.Equal(t, got.rows[i-1].Program, r.Program)
		}
		perCrate[r.Program]++
	}
	for _, n := range perCrate {
		assert.Equal(t, 2, n)
	}
}

func TestRun_FlatLayoutAndEmptyCrate(t *testing.T) {
	root := t.TempDir()
	flat := filepath.Join(root, "flat")
	factstest.WriteFunction(t, flat, "f", factstest.Sample())
	empty := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(empty, 0755))

	var got collector
	sum, err := New(got.sink(), Options{}).Run(context.Background(), []scanner.Crate{
		scanner.Resolve(flat),
		scanner.Resolve(empty),
	})
	require.NoError(t, err)
	require.Len(t, got.rows, 1)
	assert.Equal(t, "flat", got.rows[0].Program)
	assert.Equal(t, 2, sum.CratesProcessed)
}

func TestRun_Cache(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{"f": factstest.Sample()})
	rc, err := cache.New(cache.Options{Dir: t.TempDir()})
	require.NoError(t, err)

	var first collector
	sum, err := New(first.sink(), Options{Cache: rc}).Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)
	assert.Zero(t, sum.CacheHits)

	var second collector
	sum, err = New(second.sink(), Options{Cache: rc}).Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CacheHits)
	assert.Equal(t, first.rows, second.rows)
}

func TestRun_CacheKeepsSkippedFunctions(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{
		"complete": factstest.Sample(),
		"partial":  incomplete(),
	})
	rc, err := cache.New(cache.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	opts := Options{Validation: config.ValidateFunction, Cache: rc}

	var first collector
	sum, err := New(first.sink(), opts).Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.FunctionsSkipped)

	var second collector
	sum, err = New(second.sink(), opts).Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CacheHits)
	assert.Equal(t, 1, sum.FunctionsSkipped)
	assert.Equal(t, 1, sum.FunctionsEmitted)
}

func TestRun_SinkErrorStops(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{"f": factstest.Sample()})
	boom := errors.New("disk full")

	_, err := New(sink.Func(func(metrics.Row) error { return boom }), Options{}).
		Run(context.Background(), []scanner.Crate{c})
	assert.ErrorIs(t, err, boom)
}

func TestRun_Cancelled(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{"f": factstest.Sample()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got collector
	_, err := New(got.sink(), Options{}).Run(ctx, []scanner.Crate{c})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingProcessor struct{}

func (failingProcessor) Process(context.Context, scanner.Crate) (Result, error) {
	return Result{}, &ChildError{Crate: "demo", ExitCode: 137, Err: errors.New("killed")}
}

func TestRun_ProcessorFailureSkipsCrate(t *testing.T) {
	c := crateWith(t, t.TempDir(), "demo", map[string]factstest.Function{"f": factstest.Sample()})

	var logs bytes.Buffer
	var got collector
	sum, err := New(got.sink(), Options{Processor: failingProcessor{}, Logger: bufferLogger(&logs)}).
		Run(context.Background(), []scanner.Crate{c})
	require.NoError(t, err)
	assert.Empty(t, got.rows)
	assert.Equal(t, 1, sum.CratesSkipped)
	assert.Contains(t, logs.String(), "code 137")
}

func TestProcessCrate_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	for _, mode := range []config.ValidationMode{config.ValidateCrate, config.ValidateFunction} {
		_, err := ProcessCrate(context.Background(), scanner.Crate{Name: "file", Root: path, FactsDir: path}, mode, nil)
		var verr *facts.ValidationError
		require.ErrorAs(t, err, &verr, "mode %s", mode)
		assert.Equal(t, []string{path}, verr.Missing)
	}
}

func TestIsolatedArgs(t *testing.T) {
	p := &Isolated{Validation: config.ValidateFunction, MemorySoft: "1GiB"}
	assert.Equal(t,
		[]string{"crate", "--format", "msgpack", "--validation", "function", "--memory-soft", "1GiB", "--", "/w/demo"},
		p.Args("/w/demo"))

	assert.Equal(t, []string{"crate", "--format", "msgpack", "--validation", "crate", "--", "x"}, (&Isolated{}).Args("x"))
}

package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-nll-facts/internal/factstest"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/corpus"
	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// workspace creates an isolated HOME and working directory holding
// work/demo with one complete and one incomplete function.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	factsDir := filepath.Join(dir, "work", "demo", scanner.FactsDirName)
	factstest.WriteFunction(t, factsDir, "complete", factstest.Sample())
	partial := factstest.Sample()
	partial.Omit = []facts.Relation{facts.Killed, facts.Outlives, facts.VarUsed}
	factstest.WriteFunction(t, factsDir, "partial", partial)
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return Execute(context.Background())
}

func TestAggregateCommand(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "rows.csv")
	db := filepath.Join(dir, "rows.db")

	require.NoError(t, run(t, "aggregate", "--validation", "function", "--out", out, "--sqlite", db))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "program,function,"))
	assert.True(t, strings.HasPrefix(lines[1], "demo,complete,"))

	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestValidateCommand_Incomplete(t *testing.T) {
	workspace(t)
	err := run(t, "validate", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 crates are incomplete")
}

func TestCfgCommand(t *testing.T) {
	dir := workspace(t)
	fn := filepath.Join(dir, "work", "demo", scanner.FactsDirName, "complete")
	assert.NoError(t, run(t, "cfg", "--json", fn))

	err := run(t, "cfg", filepath.Join(dir, "work", "demo", scanner.FactsDirName, "partial"))
	assert.Error(t, err)
}

func TestCrateCommand_IncompleteExitCode(t *testing.T) {
	dir := workspace(t)
	err := run(t, "crate", "--validation", "crate", filepath.Join(dir, "work", "demo"))
	require.Error(t, err)
	assert.Equal(t, corpus.ExitIncomplete, ExitCode(err))

	var verr *facts.ValidationError
	assert.ErrorAs(t, err, &verr)

	var stderr bytes.Buffer
	Report(&stderr, err)
	assert.Empty(t, stderr.String())
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New("no work directory")
	Report(&buf, err)
	assert.Equal(t, "Error: no work directory\n", buf.String())
	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, 0, ExitCode(nil))
}

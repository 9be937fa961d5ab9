// Package factstest builds fact directories on disk for tests.
package factstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// Function describes the relation file contents of one function.
// Relations absent from the map get an empty file unless listed in Omit.
type Function struct {
	Relations map[facts.Relation]string
	Omit      []facts.Relation
}

// WriteFunction creates dir/name with one .facts file per relation and
// returns the function directory.
func WriteFunction(t testing.TB, dir, name string, fn Function) string {
	t.Helper()

	fnDir := filepath.Join(dir, name)
	if err := os.MkdirAll(fnDir, 0755); err != nil {
		t.Fatalf("creating %s: %v", fnDir, err)
	}

	omit := make(map[facts.Relation]bool, len(fn.Omit))
	for _, r := range fn.Omit {
		omit[r] = true
	}

	for _, r := range facts.Relations() {
		if omit[r] {
			continue
		}
		path := filepath.Join(fnDir, r.FileName())
		if err := os.WriteFile(path, []byte(fn.Relations[r]), 0644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return fnDir
}

// Sample is a small but complete function: two blocks joined by one edge
// plus intra-block edges, two loans, three variables and three regions.
func Sample() Function {
	return Function{Relations: map[facts.Relation]string{
		facts.BorrowRegion: "\"'_#1r'\"\t\"bw0\"\t\"Mid(bb0[0])\"\n" +
			"\"'_#2r'\"\t\"bw1\"\t\"Mid(bb1[0])\"\n",
		facts.CFGEdge: "\"Start(bb0[0])\"\t\"Mid(bb0[0])\"\n" +
			"\"Mid(bb0[0])\"\t\"Start(bb1[0])\"\n" +
			"\"Start(bb1[0])\"\t\"Mid(bb1[0])\"\n",
		facts.Invalidates:          "\"Mid(bb1[0])\"\t\"bw0\"\n",
		facts.Killed:               "\"bw1\"\t\"Mid(bb1[0])\"\n",
		facts.Outlives:             "\"'_#1r'\"\t\"'_#3r'\"\t\"Mid(bb0[0])\"\n",
		facts.UniversalRegion:      "\"'_#0r'\"\n",
		facts.VarDefined:           "\"_1\"\t\"Mid(bb0[0])\"\n",
		facts.VarUsed:              "\"_1\"\t\"Mid(bb1[0])\"\n\"_2\"\t\"Mid(bb1[0])\"\n",
		facts.VarDropUsed:          "\"_3\"\t\"Mid(bb1[0])\"\n",
		facts.VarUsesRegion:        "\"_1\"\t\"'_#1r'\"\n",
		facts.VarDropsRegion:       "\"_3\"\t\"'_#2r'\"\n",
		facts.VarInitializedOnExit: "\"_1\"\t\"Mid(bb1[0])\"\n",
	}}
}

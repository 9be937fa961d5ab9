package facts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single fact line. Generated lines are short; the
// limit only guards against binary garbage.
const maxLineSize = 1 << 20

// lineCutset is trimmed from both ends of a line before it is split.
const lineCutset = " \r\n"

// Reader yields the tuples of one relation file, one line at a time.
// It is single-pass: once Next returns false the Reader is spent.
//
// Lines are trimmed of surrounding spaces and line endings, then split on
// tabs. Tabs are never trimmed, so a truncated line such as "bw1\t" keeps its
// empty last field. A line that is empty or has any empty field is skipped.
type Reader struct {
	sc     *bufio.Scanner
	fields []string
	line   int
	err    error
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// Next advances to the next kept tuple.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.sc.Scan() {
		r.line++
		fields := strings.Split(strings.Trim(r.sc.Text(), lineCutset), "\t")
		if !allPopulated(fields) {
			continue
		}
		r.fields = fields
		return true
	}
	r.err = r.sc.Err()
	r.fields = nil
	return false
}

// Fields returns the fields of the current tuple.
func (r *Reader) Fields() []string {
	return r.fields
}

// Line returns the 1-based line number of the current tuple.
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

func allPopulated(fields []string) bool {
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}

// ReadFile reads every kept tuple of the file at path.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tuples [][]string
	r := NewReader(f)
	for r.Next() {
		tuples = append(tuples, r.Fields())
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return tuples, nil
}

package sink

import (
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/l3aro/go-nll-facts/pkg/facts"
	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

// commitEvery bounds how many rows are held in one open transaction.
const commitEvery = 1000

// SQLite appends rows to a "functions" table. Rows are committed in
// batches and the final batch is committed by Close.
type SQLite struct {
	conn    *sqlite.Conn
	insert  *sqlite.Stmt
	endTx   func(*error)
	pending int
}

// OpenSQLite opens or creates the database at path and prepares the
// functions table. Existing rows are kept.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema(), nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	stmt, err := conn.Prepare(insertQuery())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("prepare row insert: %w", err)
	}
	return &SQLite{conn: conn, insert: stmt}, nil
}

// columns returns the table columns after program and function.
func columns() []string {
	var cols []string
	for _, r := range facts.Relations() {
		cols = append(cols, r.String())
	}
	return append(cols,
		"loans",
		"variables",
		"regions",
		"cfg_nodes",
		"cfg_density",
		"cfg_transitivity",
		"cfg_attracting_components",
	)
}

func schema() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS functions (\n")
	b.WriteString("  id INTEGER PRIMARY KEY,\n")
	b.WriteString("  program TEXT NOT NULL,\n")
	b.WriteString("  function TEXT NOT NULL")
	for _, c := range columns() {
		typ := "INTEGER"
		if c == "cfg_density" || c == "cfg_transitivity" {
			typ = "REAL"
		}
		fmt.Fprintf(&b, ",\n  %s %s NOT NULL", c, typ)
	}
	b.WriteString("\n);\n")
	b.WriteString("CREATE INDEX IF NOT EXISTS idx_functions_program ON functions(program);\n")
	return b.String()
}

func insertQuery() string {
	cols := append([]string{"program", "function"}, columns()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO functions (%s) VALUES (%s)", strings.Join(cols, ", "), marks)
}

func (s *SQLite) Write(row metrics.Row) (err error) {
	if s.endTx == nil {
		if s.endTx, err = sqlitex.ImmediateTransaction(s.conn); err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
	}

	stmt := s.insert
	stmt.BindText(1, row.Program)
	stmt.BindText(2, row.Function)
	param := 3
	for _, n := range row.Lens {
		stmt.BindInt64(param, int64(n))
		param++
	}
	stmt.BindInt64(param, int64(row.Loans))
	stmt.BindInt64(param+1, int64(row.Variables))
	stmt.BindInt64(param+2, int64(row.Regions))
	stmt.BindInt64(param+3, int64(row.CFGNodes))
	stmt.BindFloat(param+4, row.CFGDensity)
	stmt.BindFloat(param+5, row.CFGTransitivity)
	stmt.BindInt64(param+6, int64(row.AttractingComponents))

	_, err = stmt.Step()
	_ = stmt.Reset()
	if err != nil {
		return fmt.Errorf("insert row %s/%s: %w", row.Program, row.Function, err)
	}

	s.pending++
	if s.pending >= commitEvery {
		return s.commit()
	}
	return nil
}

func (s *SQLite) commit() error {
	if s.endTx == nil {
		return nil
	}
	var err error
	s.endTx(&err)
	s.endTx = nil
	s.pending = 0
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close commits outstanding rows and closes the database.
func (s *SQLite) Close() error {
	err := s.commit()
	if cerr := s.conn.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close sqlite: %w", cerr)
	}
	return err
}

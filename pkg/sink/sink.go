// Package sink writes result rows to their destinations.
//
// A Sink is owned by a single goroutine; none of the implementations here
// are safe for concurrent use.
package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

// Sink receives rows one at a time.
type Sink interface {
	Write(row metrics.Row) error
	Close() error
}

// CSV writes rows as comma separated records, flushing after each row so
// that an interrupted run leaves only whole lines behind.
type CSV struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSV returns a CSV sink on w. When header is true the column names are
// written immediately. Close flushes but does not close w.
func NewCSV(w io.Writer, header bool) (*CSV, error) {
	s := &CSV{w: csv.NewWriter(w)}
	if header {
		if err := s.writeRecord(metrics.Header()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateCSV creates or truncates the file at path and writes a header to it.
// The file is closed by Close.
func CreateCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	s, err := NewCSV(f, true)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

func (s *CSV) Write(row metrics.Row) error {
	return s.writeRecord(row.Record())
}

func (s *CSV) writeRecord(rec []string) error {
	if err := s.w.Write(rec); err != nil {
		return fmt.Errorf("writing csv record: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func (s *CSV) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// Multi fans rows out to several sinks in order. A failing sink stops the
// write; Close closes all of them.
type Multi []Sink

func (m Multi) Write(row metrics.Row) error {
	for _, s := range m {
		if err := s.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Func adapts a function to the Sink interface. Close is a no-op.
type Func func(metrics.Row) error

func (f Func) Write(row metrics.Row) error { return f(row) }
func (f Func) Close() error { return nil }

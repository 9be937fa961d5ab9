package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

// Msgpack streams rows as consecutive msgpack values. It is the wire format
// between an isolated crate worker and its parent.
type Msgpack struct {
	enc *msgpack.Encoder
}

func NewMsgpack(w io.Writer) *Msgpack {
	return &Msgpack{enc: msgpack.NewEncoder(w)}
}

func (s *Msgpack) Write(row metrics.Row) error {
	if err := s.enc.Encode(&row); err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	return nil
}

func (s *Msgpack) Close() error { return nil }

// ReadMsgpack decodes rows written by Msgpack until r is exhausted, calling
// fn for each.
func ReadMsgpack(r io.Reader, fn func(metrics.Row) error) error {
	dec := msgpack.NewDecoder(r)
	for {
		var row metrics.Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decoding row: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

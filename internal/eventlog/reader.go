package eventlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamzrod/modbus-paramhub/internal/publisher"
)

// Filter selects events. Zero fields match everything.
type Filter struct {
	UnitID string
	Name   string
	Since  time.Time
}

func (f Filter) matches(e publisher.Event) bool {
	if f.UnitID != "" && e.UnitID != f.UnitID {
		return false
	}
	if f.Name != "" && e.Name != f.Name {
		return false
	}
	if !f.Since.IsZero() && e.At.Before(f.Since) {
		return false
	}
	return true
}

// Reader walks an event log in write order.
type Reader struct {
	closer io.Closer
	dec    *cbor.Decoder
	filter Filter
}

// NewReader reads events matching filter from r.
func NewReader(r io.Reader, filter Filter) *Reader {
	rd := &Reader{dec: newDecoder(r), filter: filter}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// OpenReader opens the log file at path.
func OpenReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	return NewReader(f, filter), nil
}

// Next returns the next matching event, or io.EOF at the end of the log.
func (r *Reader) Next() (publisher.Event, error) {
	for {
		var e publisher.Event
		if err := r.dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return publisher.Event{}, io.EOF
			}
			return publisher.Event{}, fmt.Errorf("eventlog: decode: %w", err)
		}
		if r.filter.matches(e) {
			return e, nil
		}
	}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

package eventlog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamzrod/modbus-paramhub/internal/publisher"
)

// FileSink appends events to a CBOR log file.
// It is safe for concurrent use.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	enc    *cbor.Encoder
	closed bool
}

// OpenFile opens path for appending, creating it with mode 0644.
func OpenFile(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	return &FileSink{file: f, enc: newEncoder(f)}, nil
}

// Emit appends e. A failed write is returned; the event stays pending.
func (s *FileSink) Emit(e publisher.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("eventlog: sink closed")
	}
	if err := s.enc.Encode(e); err != nil {
		return fmt.Errorf("eventlog: encode %s: %w", e.Name, err)
	}
	return nil
}

// Close closes the file. Calling it more than once is harmless.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// MultiSink emits every event to all sinks. An event counts as emitted
// only when every sink accepted it.
type MultiSink []publisher.EventSink

func (m MultiSink) Emit(e publisher.Event) error {
	var errs []string
	for _, s := range m {
		if err := s.Emit(e); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

var (
	_ publisher.EventSink = (*FileSink)(nil)
	_ publisher.EventSink = MultiSink(nil)
)

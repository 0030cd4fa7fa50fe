package publisher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/modbus-paramhub/internal/appdata"
)

// Event is one parameter event handed to a sink.
// CBOR encoding uses integer keys.
type Event struct {
	ID     uuid.UUID `cbor:"1,keyasint"`
	UnitID string    `cbor:"2,keyasint"`
	Name   string    `cbor:"3,keyasint"`
	Type   string    `cbor:"4,keyasint"`
	Value  string    `cbor:"5,keyasint"`
	At     time.Time `cbor:"6,keyasint"`
}

// EventSink receives parameter events.
type EventSink interface {
	Emit(e Event) error
}

// LogSink writes every event as one log line.
type LogSink struct {
	Log Logger
}

func (s LogSink) Emit(e Event) error {
	if s.Log == nil {
		return errors.New("publisher: log sink without logger")
	}
	s.Log.Printf("event unit=%s param=%s type=%s value=%q id=%s", e.UnitID, e.Name, e.Type, e.Value, e.ID)
	return nil
}

// DispatchEvents emits one event per parameter with an event pending.
// An event is acknowledged only after the sink accepted it, so a failed
// emit is retried on the next call.
func (pub *Publisher) DispatchEvents(h *appdata.Hub, sink EventSink) (int, error) {
	sent := 0
	var errs []string

	for _, p := range h.Table().Events() {
		e := Event{
			ID:     uuid.New(),
			UnitID: h.UnitID(),
			Name:   p.Name(),
			Type:   p.Type().String(),
			Value:  p.Get(),
			At:     pub.now(),
		}
		if err := sink.Emit(e); err != nil {
			errs = append(errs, fmt.Sprintf("publisher: event %s: %v", p.Name(), err))
			continue
		}
		p.Event()
		sent++
	}

	if len(errs) > 0 {
		return sent, errors.New(strings.Join(errs, " | "))
	}
	return sent, nil
}

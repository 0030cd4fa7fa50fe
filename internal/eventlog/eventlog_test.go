package eventlog

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/modbus-paramhub/internal/publisher"
)

func event(unit, name, value string, at time.Time) publisher.Event {
	return publisher.Event{
		ID:     uuid.New(),
		UnitID: unit,
		Name:   name,
		Type:   "int16",
		Value:  value,
		At:     at,
	}
}

func TestFileSink_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

	sink, err := OpenFile(path)
	require.NoError(t, err)
	first := event("boiler", "temp", "21", t0)
	require.NoError(t, sink.Emit(first))
	require.NoError(t, sink.Emit(event("tank", "level", "7", t0.Add(time.Second))))
	require.NoError(t, sink.Close())

	// reopening appends
	sink, err = OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, sink.Emit(event("boiler", "temp", "22", t0.Add(2*time.Second))))
	require.NoError(t, sink.Close())

	r, err := OpenReader(path, Filter{})
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "temp", got.Name)
	assert.True(t, got.At.Equal(t0), "timestamp keeps nanoseconds")

	var values []string
	values = append(values, got.Value)
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		values = append(values, e.Value)
	}
	assert.Equal(t, []string{"21", "7", "22"}, values)
}

func TestReader_Filter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	sink, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, sink.Emit(event("boiler", "temp", "1", t0)))
	require.NoError(t, sink.Emit(event("tank", "temp", "2", t0.Add(time.Minute))))
	require.NoError(t, sink.Emit(event("boiler", "temp", "3", t0.Add(2*time.Minute))))
	require.NoError(t, sink.Close())

	r, err := OpenReader(path, Filter{UnitID: "boiler", Since: t0.Add(time.Second)})
	require.NoError(t, err)
	defer r.Close()

	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "3", e.Value)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileSink_ClosedRejects(t *testing.T) {
	sink, err := OpenFile(filepath.Join(t.TempDir(), "events.cbor"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	assert.Error(t, sink.Emit(event("u", "p", "v", time.Now())))
}

type failSink struct{}

func (failSink) Emit(publisher.Event) error { return errors.New("down") }

type countSink struct{ n int }

func (c *countSink) Emit(publisher.Event) error { c.n++; return nil }

func TestMultiSink(t *testing.T) {
	a, b := &countSink{}, &countSink{}

	require.NoError(t, MultiSink{a, b}.Emit(event("u", "p", "v", time.Now())))
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)

	err := MultiSink{a, failSink{}}.Emit(event("u", "p", "v", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 2, a.n, "remaining sinks still receive the event")
}

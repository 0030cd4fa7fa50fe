package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/modbus-paramhub/internal/appdata"
	"github.com/tamzrod/modbus-paramhub/internal/poller"
	"github.com/tamzrod/modbus-paramhub/internal/publisher"
	"github.com/tamzrod/modbus-paramhub/internal/status"
)

// Config wires one unit's pipeline.
type Config struct {
	Hub       *appdata.Hub
	Publisher *publisher.Publisher

	// Events receives parameter events; nil drops them after logging.
	Events publisher.EventSink

	// Status is nil when the unit has no status block.
	Status publisher.StatusWriter

	Log publisher.Logger
}

// Unit owns all state of one unit: its parameters (through the hub) and
// its status snapshot. Every method must be called from one goroutine.
type Unit struct {
	hub    *appdata.Hub
	pub    *publisher.Publisher
	events publisher.EventSink
	status publisher.StatusWriter
	log    publisher.Logger

	snap status.Snapshot
}

func New(c Config) (*Unit, error) {
	if c.Hub == nil {
		return nil, errors.New("pipeline: hub required")
	}
	if c.Publisher == nil {
		return nil, errors.New("pipeline: publisher required")
	}
	if c.Log == nil {
		c.Log = log.Default()
	}
	if c.Events == nil {
		c.Events = publisher.LogSink{Log: c.Log}
	}

	return &Unit{
		hub:    c.Hub,
		pub:    c.Publisher,
		events: c.Events,
		status: c.Status,
		log:    c.Log,
		// Default snapshot state on start.
		snap: status.Snapshot{Health: status.HealthUnknown},
	}, nil
}

// Snapshot returns the current status snapshot.
func (u *Unit) Snapshot() status.Snapshot { return u.snap }

// Start writes the initial full status block (identity re-assert).
func (u *Unit) Start() {
	u.writeStatus("on start")
}

// Handle consumes one poll result: parameters are updated, pending events
// dispatched, pending parameters published, and the status block updated
// when anything in it changed.
func (u *Unit) Handle(res poller.PollResult) {
	unitID := u.hub.UnitID()

	if _, err := u.hub.Apply(res); err != nil && res.Err == nil {
		u.log.Printf("decode error (unit=%s): %v", unitID, err)
	}

	// Events go first: a once-only parameter is unset by its publish.
	if _, err := u.pub.DispatchEvents(u.hub, u.events); err != nil {
		u.log.Printf("event error (unit=%s): %v", unitID, err)
	}

	rep := u.pub.PublishPending(u.hub)
	if rep.Err != nil {
		u.log.Printf("publish error (unit=%s): %v", unitID, rep.Err)
	}

	next := u.snap

	switch {
	case res.Err != nil:
		next.Health = status.HealthError
		next.LastErrorCode = errorCode(res.Err)
		// NOTE: seconds_in_error increments on the 1Hz ticker only.

	case rep.Err != nil:
		next.Health = status.HealthStale
		next.LastErrorCode = errorCode(rep.Err)

	default:
		// Recovery / OK
		next.Health = status.HealthOK
		next.LastErrorCode = 0
		next.SecondsInError = 0
	}

	next.PendingCount = status.Saturate(len(u.hub.Pending()))

	pubErrs := 0
	for _, p := range u.hub.Table().All() {
		pubErrs += p.PubErrs()
	}
	next.PublishErrors = status.Saturate(pubErrs)

	if next != u.snap {
		u.snap = next
		u.writeStatus("")
	}
}

// Tick advances seconds_in_error while the unit is not OK.
func (u *Unit) Tick() {
	if u.snap.Health == status.HealthOK {
		return
	}
	if u.snap.SecondsInError >= status.CounterMax {
		return
	}
	u.snap.SecondsInError++
	u.writeStatus("seconds tick")
}

// Run consumes poll results until ctx ends, with a 1Hz seconds ticker.
func (u *Unit) Run(ctx context.Context, in <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	u.Start()

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-in:
			u.Handle(res)
		case <-secTicker.C:
			u.Tick()
		}
	}
}

func (u *Unit) writeStatus(what string) {
	if u.status == nil {
		return
	}
	if err := u.status.WriteStatus(u.snap); err != nil {
		if what != "" {
			u.log.Printf("status write failed %s (unit=%s): %v", what, u.hub.UnitID(), err)
			return
		}
		u.log.Printf("status write failed (unit=%s): %v", u.hub.UnitID(), err)
	}
}

// errorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// Modbus exceptions report their exception code.
// If the error does not expose a code, returns 1 (generic error).
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var mb *modbus.ModbusError
	if errors.As(err, &mb) {
		return uint16(mb.ExceptionCode)
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}

package publisher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/modbus-paramhub/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter is the concrete implementation used by the pipeline.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  EndpointClient

	needFull bool
	last     status.Snapshot
}

const statusAreaHoldingRegisters byte = 3

// NewDeviceStatusWriter builds a status writer if status is enabled for the unit.
// If plan.Status is nil, status is disabled.
func NewDeviceStatusWriter(plan Plan, clients map[string]EndpointClient) (*deviceStatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	sp := plan.Status

	return &deviceStatusWriter{
		plan:     sp,
		cli:      clients[sp.Endpoint],
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
	}, true
}

// WriteStatus delivers a device status snapshot into status memory.
// The first write, and the first write after any failure, re-asserts the
// full block including the device name. Otherwise only changed live
// slots are written.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s, sw.plan.DeviceName)

		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			unitID,
			baseAddr,
			regs,
		); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one register per changed live slot
	// ------------------------------------------------------------
	want := s.Live()
	have := sw.last.Live()

	var errs []string

	for slot := 0; slot < status.LiveSlots; slot++ {
		if want[slot] == have[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			unitID,
			baseAddr+uint16(slot),
			[]uint16{want[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

package publisher

import (
	"errors"
	"fmt"
)

// ---- fake endpoint client ----

type writeCall struct {
	area   byte
	unitID uint8
	addr   uint16
	bits   []bool
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   bool

	lastRegsAddr uint16
	lastRegs     []uint16
}

func (f *fakeEndpointClient) WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error {
	if f.fail {
		return errors.New("fake: write failed")
	}
	f.writes = append(f.writes, writeCall{area: area, unitID: unitID, addr: addr, bits: bits})
	return nil
}

func (f *fakeEndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("fake: write failed")
	}
	f.writes = append(f.writes, writeCall{area: area, unitID: unitID, addr: addr, regs: regs})
	f.lastRegsAddr = addr
	f.lastRegs = regs
	return nil
}

// ---- fake logger / sink ----

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

type captureSink struct {
	events []Event
	fail   bool
}

func (s *captureSink) Emit(e Event) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.events = append(s.events, e)
	return nil
}

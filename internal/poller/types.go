package poller

import "time"

// ReadBlock describes one Modbus read geometry.
// Geometry only: no semantics.
type ReadBlock struct {
	FC       uint8
	Address  uint16
	Quantity uint16
}

// BlockResult is the raw result of a single read.
type BlockResult struct {
	FC       uint8
	Address  uint16
	Quantity uint16

	// Exactly one of these is used depending on FC.
	Bits      []bool   // FC 1,2
	Registers []uint16 // FC 3,4
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}

// Block returns the block of the given FC that fully contains [addr, addr+n).
func (r PollResult) Block(fc uint8, addr, n uint16) (BlockResult, bool) {
	end := int(addr) + int(n)
	for _, b := range r.Blocks {
		if b.FC != fc {
			continue
		}
		if int(addr) >= int(b.Address) && end <= int(b.Address)+int(b.Quantity) {
			return b, true
		}
	}
	return BlockResult{}, false
}

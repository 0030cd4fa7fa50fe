package poller

import (
	"fmt"
	"slices"

	cfg "github.com/tamzrod/modbus-paramhub/internal/config"
)

// Per-request limits of the Modbus protocol.
const (
	MaxReadBits      = 2000
	MaxReadRegisters = 125
)

// PlanReads merges the geometry of params into as few read blocks as the
// protocol limits allow. Adjacent and overlapping spans of the same FC are
// joined; gaps are never read.
func PlanReads(params []cfg.ParameterConfig) ([]ReadBlock, error) {
	spans := make([]ReadBlock, 0, len(params))
	for _, p := range params {
		words, err := p.Words()
		if err != nil {
			return nil, fmt.Errorf("poller: parameter %q: %w", p.Name, err)
		}
		spans = append(spans, ReadBlock{FC: p.FC, Address: p.Address, Quantity: words})
	}

	slices.SortFunc(spans, func(a, b ReadBlock) int {
		if a.FC != b.FC {
			return int(a.FC) - int(b.FC)
		}
		return int(a.Address) - int(b.Address)
	})

	var out []ReadBlock
	for _, s := range spans {
		if n := len(out); n > 0 {
			last := &out[n-1]
			lastEnd := int(last.Address) + int(last.Quantity)
			end := int(s.Address) + int(s.Quantity)
			if last.FC == s.FC && int(s.Address) <= lastEnd {
				merged := max(lastEnd, end) - int(last.Address)
				if merged <= maxQuantity(s.FC) {
					last.Quantity = uint16(merged)
					continue
				}
			}
		}
		out = append(out, s)
	}

	for _, b := range out {
		if int(b.Quantity) > maxQuantity(b.FC) {
			return nil, fmt.Errorf("poller: fc=%d addr=%d qty=%d exceeds one request", b.FC, b.Address, b.Quantity)
		}
	}
	return out, nil
}

func maxQuantity(fc uint8) int {
	if fc == 1 || fc == 2 {
		return MaxReadBits
	}
	return MaxReadRegisters
}

// readsFor returns the unit's explicit reads, or a plan derived from its
// parameters when none are configured.
func readsFor(u cfg.UnitConfig) ([]ReadBlock, error) {
	if len(u.Reads) == 0 {
		return PlanReads(u.Parameters)
	}
	reads := make([]ReadBlock, 0, len(u.Reads))
	for _, r := range u.Reads {
		reads = append(reads, ReadBlock{
			FC:       r.FC,
			Address:  r.Address,
			Quantity: r.Quantity,
		})
	}
	return reads, nil
}

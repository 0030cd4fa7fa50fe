// internal/config/validate.go
package config

import (
	"errors"
	"fmt"

	"github.com/tamzrod/modbus-paramhub/internal/param"
	"github.com/tamzrod/modbus-paramhub/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	type span struct {
		start uint16
		end   uint16
		unit  string
	}

	if len(cfg.Paramhub.Units) == 0 {
		return errors.New("config: at least one unit required")
	}

	// ------------------------------------------------------------
	// UNIT SHAPE
	// ------------------------------------------------------------

	unitIDs := make(map[string]struct{})

	for _, u := range cfg.Paramhub.Units {
		if u.ID == "" {
			return errors.New("config: unit id required")
		}
		if _, dup := unitIDs[u.ID]; dup {
			return fmt.Errorf("config: duplicate unit id %q", u.ID)
		}
		unitIDs[u.ID] = struct{}{}

		if u.Source.Endpoint == "" {
			return fmt.Errorf("unit %q: source endpoint required", u.ID)
		}
		if u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: poll interval must be >= 0", u.ID)
		}
		if u.Publish.TimeoutMs < 0 || u.Publish.MaxErrors < 0 {
			return fmt.Errorf("unit %q: publish limits must be >= 0", u.ID)
		}
		for _, r := range u.Reads {
			if r.FC < 1 || r.FC > 4 {
				return fmt.Errorf("unit %q: read fc %d unsupported", u.ID, r.FC)
			}
			if r.Quantity == 0 {
				return fmt.Errorf("unit %q: read fc=%d addr=%d has zero quantity", u.ID, r.FC, r.Address)
			}
			if int(r.Address)+int(r.Quantity) > 0x10000 {
				return fmt.Errorf("unit %q: read fc=%d addr=%d qty=%d exceeds address space", u.ID, r.FC, r.Address, r.Quantity)
			}
		}

		if err := validateParameters(u); err != nil {
			return err
		}

		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target %d endpoint required", u.ID, t.ID)
			}
			switch t.Protocol {
			case "", ProtocolModbus, ProtocolIngest:
			default:
				return fmt.Errorf("unit %q: target %q: unknown protocol %q", u.ID, t.Endpoint, t.Protocol)
			}
			if t.ID > 255 {
				return fmt.Errorf("unit %q: target id %d out of range", u.ID, t.ID)
			}
		}

		if err := validateEndpointProtocols(u, cfg.Paramhub.StatusMemory); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	statusOwner := make(map[uint16]string)

	for _, u := range cfg.Paramhub.Units {
		// device_name sanity (ASCII only)
		for i := 0; i < len(u.Source.DeviceName); i++ {
			if u.Source.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}

		if u.Source.StatusSlot == nil {
			continue
		}

		if cfg.Paramhub.StatusMemory.Endpoint == "" {
			return fmt.Errorf(
				"unit %q: status_slot is set but status_memory.endpoint is empty",
				u.ID,
			)
		}

		slot := *u.Source.StatusSlot
		if int(slot)*status.SlotsPerDevice+status.SlotsPerDevice > 0x10000 {
			return fmt.Errorf(
				"unit %q: status_slot %d places its block beyond the address space",
				u.ID,
				slot,
			)
		}
		if prev, exists := statusOwner[slot]; exists {
			return fmt.Errorf(
				"status_slot collision: slot=%d used by units %q and %q",
				slot,
				prev,
				u.ID,
			)
		}
		statusOwner[slot] = u.ID
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | memory_id | fc
	spans := make(map[string][]span)

	for _, u := range cfg.Paramhub.Units {
		for _, t := range u.Targets {
			for _, m := range t.Memories {
				for _, p := range u.Parameters {
					words, err := p.Words()
					if err != nil {
						return fmt.Errorf("unit %q: parameter %q: %w", u.ID, p.Name, err)
					}

					offset := uint16(0)
					if m.Offsets != nil {
						if v, ok := m.Offsets[int(p.FC)]; ok {
							offset = v
						}
					}

					if int(offset)+int(p.Address)+int(words) > 0x10000 {
						return fmt.Errorf(
							"unit %q: parameter %q: endpoint=%s memory_id=%d offset=%d exceeds address space",
							u.ID, p.Name, t.Endpoint, m.MemoryID, offset,
						)
					}

					start := offset + p.Address
					end := start + words - 1

					key := fmt.Sprintf("%s|%d|%d", t.Endpoint, m.MemoryID, p.FC)

					for _, s := range spans[key] {
						// overlap check (inclusive)
						if !(end < s.start || start > s.end) {
							return fmt.Errorf(
								"memory overlap: endpoint=%s memory_id=%d fc=%d range=%d-%d overlaps with unit=%s range=%d-%d",
								t.Endpoint,
								m.MemoryID,
								p.FC,
								start,
								end,
								s.unit,
								s.start,
								s.end,
							)
						}
					}

					spans[key] = append(spans[key], span{
						start: start,
						end:   end,
						unit:  u.ID,
					})
				}
			}
		}
	}

	return nil
}

func validateParameters(u UnitConfig) error {
	if len(u.Parameters) == 0 {
		return fmt.Errorf("unit %q: at least one parameter required", u.ID)
	}

	names := make(map[string]struct{})

	for _, p := range u.Parameters {
		if p.Name == "" {
			return fmt.Errorf("unit %q: parameter name required", u.ID)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("unit %q: duplicate parameter %q", u.ID, p.Name)
		}
		names[p.Name] = struct{}{}

		typ, err := param.ParseDatatype(p.Type)
		if err != nil {
			return fmt.Errorf("unit %q: parameter %q: %w", u.ID, p.Name, err)
		}

		if p.FC < 1 || p.FC > 4 {
			return fmt.Errorf("unit %q: parameter %q: fc %d unsupported", u.ID, p.Name, p.FC)
		}
		if (p.FC == 1 || p.FC == 2) && typ != param.TypeBool {
			return fmt.Errorf("unit %q: parameter %q: fc %d carries bits, type must be bool", u.ID, p.Name, p.FC)
		}
		if p.Decimals != nil && (*p.Decimals < 0 || *p.Decimals > 9) {
			return fmt.Errorf("unit %q: parameter %q: decimals must be 0..9", u.ID, p.Name)
		}
		if p.Decimals != nil && typ != param.TypeFloat {
			return fmt.Errorf("unit %q: parameter %q: decimals only apply to float", u.ID, p.Name)
		}

		words, err := p.Words()
		if err != nil {
			return fmt.Errorf("unit %q: parameter %q: %w", u.ID, p.Name, err)
		}
		if int(p.Address)+int(words) > 0x10000 {
			return fmt.Errorf("unit %q: parameter %q: exceeds address space", u.ID, p.Name)
		}

		// Without explicit reads the poller plans them from the parameters.
		if len(u.Reads) > 0 && !covered(u.Reads, p.FC, p.Address, words) {
			return fmt.Errorf(
				"unit %q: parameter %q: fc=%d addr=%d len=%d not covered by any read block",
				u.ID, p.Name, p.FC, p.Address, words,
			)
		}
	}

	return nil
}

func covered(reads []ReadConfig, fc uint8, addr, words uint16) bool {
	end := int(addr) + int(words)
	for _, r := range reads {
		if r.FC != fc {
			continue
		}
		if int(addr) >= int(r.Address) && end <= int(r.Address)+int(r.Quantity) {
			return true
		}
	}
	return false
}

// validateEndpointProtocols requires one protocol per endpoint of a unit.
// The status endpoint always speaks modbus.
func validateEndpointProtocols(u UnitConfig, statusMem StatusMemoryConfig) error {
	protoOf := func(p string) string {
		if p == "" {
			return ProtocolModbus
		}
		return p
	}

	seen := make(map[string]string)
	if u.Source.StatusSlot != nil && statusMem.Endpoint != "" {
		seen[statusMem.Endpoint] = ProtocolModbus
	}

	for _, t := range u.Targets {
		proto := protoOf(t.Protocol)
		if prev, ok := seen[t.Endpoint]; ok && prev != proto {
			return fmt.Errorf(
				"unit %q: endpoint %q used with protocols %q and %q",
				u.ID, t.Endpoint, prev, proto,
			)
		}
		seen[t.Endpoint] = proto
	}
	return nil
}

package poller

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Client abstracts Modbus operations needed by the poller.
// The poller depends on geometry only.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
}

// Factory creates a fresh client. ONE attempt per call.
type Factory func() (Client, error)

// ErrNoClient is reported for a cycle in which no client could be created.
var ErrNoClient = errors.New("poller: no client")

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
	Reads    []ReadBlock
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
	now     func() time.Time
}

// New creates a poller with immutable config.
// client may be nil when factory is set; factory may be nil when the
// client never needs replacing.
func New(cfg Config, client Client, factory Factory) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("poller: at least one read block required")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory, now: time.Now}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
// After a failure the client is discarded if a factory can replace it.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     p.now(),
	}

	if p.client == nil {
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("%w: %v", ErrNoClient, err)
			return res
		}
		p.client = c
	}

	var blocks []BlockResult

	for _, rb := range p.cfg.Reads {
		b := BlockResult{FC: rb.FC, Address: rb.Address, Quantity: rb.Quantity}
		var err error

		switch rb.FC {
		case 1:
			b.Bits, err = p.client.ReadCoils(rb.Address, rb.Quantity)
		case 2:
			b.Bits, err = p.client.ReadDiscreteInputs(rb.Address, rb.Quantity)
		case 3:
			b.Registers, err = p.client.ReadHoldingRegisters(rb.Address, rb.Quantity)
		case 4:
			b.Registers, err = p.client.ReadInputRegisters(rb.Address, rb.Quantity)
		default:
			res.Err = fmt.Errorf("poller: unsupported function code %d", rb.FC)
			return res
		}

		if err != nil {
			res.Err = err
			p.discard()
			return res
		}
		blocks = append(blocks, b)
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	c, ok := p.client.(io.Closer)
	p.client = nil
	if !ok {
		return nil
	}
	return c.Close()
}

func (p *Poller) discard() {
	if p.factory == nil {
		return
	}
	_ = p.Close()
}

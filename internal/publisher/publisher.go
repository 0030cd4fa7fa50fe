package publisher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/modbus-paramhub/internal/appdata"
	"github.com/tamzrod/modbus-paramhub/internal/param"
)

// EndpointClient is the exact contract the publisher uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type EndpointClient interface {
	WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// Option configures a Publisher.
type Option func(*Publisher)

func WithLogger(l Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// Publisher delivers pending parameters of one unit to its targets.
type Publisher struct {
	plan    Plan
	clients map[string]EndpointClient
	log     Logger
	now     func() time.Time
}

func New(plan Plan, clients map[string]EndpointClient, opts ...Option) *Publisher {
	p := &Publisher{
		plan:    plan,
		clients: clients,
		log:     discardLogger{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Report summarizes one PublishPending call.
type Report struct {
	Published int
	Failed    int
	Dropped   int // gave up after timeout or error budget
	Err       error
}

// PublishPending writes every pending parameter of h to all targets.
//
// A parameter is acknowledged with Publish only when every write
// succeeded. Each failed attempt counts against the parameter; once the
// policy timeout or error budget is exhausted the pending publish is
// dropped with PubReset.
func (pub *Publisher) PublishPending(h *appdata.Hub) Report {
	var rep Report
	var errs []string

	for _, b := range h.Pending() {
		p := b.Param

		if p.PubInitAt().IsZero() {
			p.PubInit()
		}

		if err := pub.deliver(b); err != nil {
			p.PubErrInc()
			rep.Failed++
			errs = append(errs, err.Error())

			if pub.exhausted(p) {
				pub.log.Printf(
					"publish dropped (unit=%s param=%s value=%s errs=%d since=%s)",
					pub.plan.UnitID, p.Name(), p.Get(), p.PubErrs(), p.PubInitAt().Format(time.RFC3339),
				)
				p.PubReset()
				rep.Dropped++
			}
			continue
		}

		p.Publish()
		rep.Published++
	}

	if len(errs) > 0 {
		rep.Err = errors.New(strings.Join(errs, " | "))
	}
	return rep
}

func (pub *Publisher) exhausted(p *param.Parameter) bool {
	pol := pub.plan.Policy
	if pol.MaxErrors > 0 && p.PubErrs() >= pol.MaxErrors {
		return true
	}
	if pol.Timeout > 0 && pub.now().Sub(p.PubInitAt()) >= pol.Timeout {
		return true
	}
	return false
}

// deliver writes one binding to every target memory.
func (pub *Publisher) deliver(b appdata.Binding) error {
	var (
		bits []bool
		regs []uint16
		err  error
	)
	if b.IsBits() {
		bits, err = b.Bits()
	} else {
		regs, err = b.Registers()
	}
	if err != nil {
		return err
	}

	var errs []string

	for _, tgt := range pub.plan.Targets {
		cli := pub.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"publisher: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		if tgt.TargetID > 255 {
			errs = append(errs, fmt.Sprintf(
				"publisher: target unit id %d out of range",
				tgt.TargetID,
			))
			continue
		}
		unitID := uint8(tgt.TargetID)

		for _, mem := range tgt.Memories {
			area := b.FC
			dstAddr := offsetForFC(mem.Offsets, b.FC) + b.Address

			if b.IsBits() {
				err = cli.WriteBits(area, unitID, dstAddr, bits)
			} else {
				err = cli.WriteRegisters(area, unitID, dstAddr, regs)
			}
			if err != nil {
				errs = append(errs, fmt.Sprintf(
					"publisher: ep=%s unit=%d mem=%d param=%s addr=%d err=%v",
					tgt.Endpoint, unitID, mem.MemoryID, b.Param.Name(), dstAddr, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

func offsetForFC(offsets map[int]uint16, fc uint8) uint16 {
	if offsets == nil {
		return 0
	}
	if v, ok := offsets[int(fc)]; ok {
		return v
	}
	return 0
}

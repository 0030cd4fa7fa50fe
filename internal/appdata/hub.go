package appdata

import (
	"errors"
	"fmt"
	"strings"

	cfg "github.com/tamzrod/modbus-paramhub/internal/config"
	"github.com/tamzrod/modbus-paramhub/internal/param"
	"github.com/tamzrod/modbus-paramhub/internal/poller"
)

// Hub is the data hub of one unit: it owns the unit's parameters and
// feeds them from poll results.
//
// A Hub is owned by a single goroutine.
type Hub struct {
	unitID   string
	table    *param.Table
	bindings []Binding
}

// New builds a hub over bindings. Parameter names must be unique.
func New(unitID string, bindings []Binding) (*Hub, error) {
	if unitID == "" {
		return nil, errors.New("appdata: unit id required")
	}
	h := &Hub{
		unitID: unitID,
		table:  param.NewTable(),
	}
	for _, b := range bindings {
		if b.Param == nil {
			return nil, errors.New("appdata: binding without parameter")
		}
		if err := h.table.Add(b.Param); err != nil {
			return nil, err
		}
		h.bindings = append(h.bindings, b)
	}
	return h, nil
}

// Build converts one unit config into a hub.
// Assumes config has already passed validation and normalization.
func Build(u cfg.UnitConfig, opts ...param.Option) (*Hub, error) {
	bindings := make([]Binding, 0, len(u.Parameters))

	for _, pc := range u.Parameters {
		typ, err := param.ParseDatatype(pc.Type)
		if err != nil {
			return nil, fmt.Errorf("unit %q: %w", u.ID, err)
		}

		p := param.New(pc.Name, opts...)
		if pc.Always {
			p.Always()
		}
		if pc.Hidden {
			p.Hide()
		}
		if pc.Once {
			p.Once()
		}

		decimals := param.DefaultDecimals
		if pc.Decimals != nil {
			decimals = *pc.Decimals
		}

		bindings = append(bindings, Binding{
			Param:    p,
			Type:     typ,
			FC:       pc.FC,
			Address:  pc.Address,
			Quantity: pc.Quantity,
			Decimals: decimals,
		})
	}

	return New(u.ID, bindings)
}

func (h *Hub) UnitID() string      { return h.unitID }
func (h *Hub) Table() *param.Table { return h.table }

// Bindings returns the bindings in config order.
func (h *Hub) Bindings() []Binding {
	out := make([]Binding, len(h.bindings))
	copy(out, h.bindings)
	return out
}

// Pending returns the bindings whose parameter is due for publishing.
func (h *Hub) Pending() []Binding {
	var out []Binding
	for _, b := range h.bindings {
		if b.Param.IsPub() {
			out = append(out, b)
		}
	}
	return out
}

// Apply feeds a poll result into every binding and returns how many
// parameters changed. A failed poll result leaves all parameters untouched.
// Decode failures of single bindings do not stop the others.
func (h *Hub) Apply(res poller.PollResult) (int, error) {
	if res.Err != nil {
		return 0, res.Err
	}

	changed := 0
	var errs []string

	for _, b := range h.bindings {
		ok, err := b.Apply(res)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if ok {
			changed++
		}
	}

	if len(errs) > 0 {
		return changed, errors.New(strings.Join(errs, " | "))
	}
	return changed, nil
}

package param

import (
	"errors"
	"fmt"
)

var ErrDuplicateName = errors.New("param: duplicate name")

// Table holds the parameters of one application, in insertion order.
type Table struct {
	order  []*Parameter
	byName map[string]*Parameter
}

func NewTable() *Table {
	return &Table{byName: make(map[string]*Parameter)}
}

// Add registers p. Names must be unique within a table.
func (t *Table) Add(p *Parameter) error {
	if p == nil {
		return errors.New("param: nil parameter")
	}
	if _, exists := t.byName[p.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name())
	}
	t.byName[p.Name()] = p
	t.order = append(t.order, p)
	return nil
}

func (t *Table) Get(name string) (*Parameter, bool) {
	p, ok := t.byName[name]
	return p, ok
}

func (t *Table) Len() int { return len(t.order) }

// All returns the parameters in insertion order.
func (t *Table) All() []*Parameter {
	out := make([]*Parameter, len(t.order))
	copy(out, t.order)
	return out
}

// Pending returns the parameters due for publishing.
func (t *Table) Pending() []*Parameter {
	var out []*Parameter
	for _, p := range t.order {
		if p.IsPub() {
			out = append(out, p)
		}
	}
	return out
}

// Events returns the parameters with an event pending.
func (t *Table) Events() []*Parameter {
	var out []*Parameter
	for _, p := range t.order {
		if p.IsEvent() {
			out = append(out, p)
		}
	}
	return out
}

// Reset resets every parameter.
func (t *Table) Reset() {
	for _, p := range t.order {
		p.Reset()
	}
}

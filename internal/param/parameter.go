package param

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is the text of a parameter that holds no value.
const NotAvailable = "n.a."

// DefaultDecimals is the float precision used when a caller passes a negative one.
const DefaultDecimals = 4

const (
	textTrue  = "true"
	textFalse = "false"
)

// Option configures a Parameter at construction.
type Option func(*Parameter)

// WithClock replaces time.Now as the source of publish cycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parameter) {
		if now != nil {
			p.now = now
		}
	}
}

// Parameter is a named, typed value cell that tracks whether its value
// changed since the previous assignment and whether it is due to be
// published or to fire an event.
//
// Values are stored typed, with their text rendering cached. Change
// detection compares the rendered text, so a float that rounds to the
// same text at its precision is not a change.
//
// A Parameter has a single owner. It is not safe for concurrent use.
type Parameter struct {
	name string
	typ  Datatype

	value any
	text  string

	lastPublished string
	retired       bool
	pubInitAt     time.Time
	pubErrs       int

	always bool
	show   bool
	once   bool

	isNew        bool
	pubPending   bool
	eventPending bool

	now func() time.Time
}

// New returns an unset, visible parameter.
// The name is copied, so the caller's storage need not outlive it.
func New(name string, opts ...Option) *Parameter {
	p := &Parameter{
		name: strings.Clone(name),
		now:  time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.Reset()
	return p
}

func (p *Parameter) Name() string   { return p.name }
func (p *Parameter) Type() Datatype { return p.typ }

// Value returns the typed value of the last assignment, or nil while unset.
func (p *Parameter) Value() any { return p.value }

// Reset returns the parameter to the unset state and restores the default
// modes: change detection, visible, repeated publishing.
func (p *Parameter) Reset() {
	p.unset()
	p.always = false
	p.show = true
	p.once = false
	p.lastPublished = ""
	p.retired = false
}

// unset clears the value and pending state but keeps the modes.
func (p *Parameter) unset() {
	p.typ = TypeNone
	p.value = nil
	p.text = NotAvailable
	p.isNew = false
	p.pubPending = false
	p.eventPending = false
	p.pubInitAt = time.Time{}
	p.pubErrs = 0
}

// ---- modes ----

func (p *Parameter) Always() { p.always = true }
func (p *Parameter) Change() { p.always = false }
func (p *Parameter) Show()   { p.show = true }
func (p *Parameter) Hide()   { p.show = false }

// Once makes the parameter return to unset after its next Publish.
// The first assignment after that is compared with the published text,
// so an unchanged value is not published again.
func (p *Parameter) Once() { p.once = true }

// More restores repeated publishing, the default.
func (p *Parameter) More() { p.once = false }

func (p *Parameter) IsAlways() bool  { return p.always }
func (p *Parameter) IsVisible() bool { return p.show }
func (p *Parameter) IsOnce() bool    { return p.once }

// ---- state ----

func (p *Parameter) IsSet() bool { return p.typ != TypeNone }

// IsNew reports whether the last assignment changed the rendered value.
func (p *Parameter) IsNew() bool { return p.isNew }

// IsChanged is IsNew.
func (p *Parameter) IsChanged() bool { return p.isNew }

// IsPub reports whether the parameter is set, visible and due for publishing.
func (p *Parameter) IsPub() bool { return p.IsSet() && p.show && p.pubPending }

// IsReady is IsPub.
func (p *Parameter) IsReady() bool { return p.IsPub() }

// IsEvent reports whether the parameter is set, visible and has an event pending.
func (p *Parameter) IsEvent() bool { return p.IsSet() && p.show && p.eventPending }

// Get returns the stored text, or NotAvailable while unset.
func (p *Parameter) Get() string { return p.text }

// GetBool decodes the stored text; only the exact text "true" is true.
func (p *Parameter) GetBool() bool { return p.text == textTrue }

// LastPublished returns the text acknowledged by the most recent Publish.
func (p *Parameter) LastPublished() string { return p.lastPublished }

// ---- publish cycle ----

// PubInit starts a publish cycle: the parameter becomes due, the cycle
// start is stamped and the error counter is cleared.
func (p *Parameter) PubInit() {
	p.pubPending = true
	p.pubInitAt = p.now()
	p.pubErrs = 0
}

// PubInitAt returns when the current publish cycle started, zero if none.
func (p *Parameter) PubInitAt() time.Time { return p.pubInitAt }

// PubReset drops a pending publish without acknowledging it and ends the
// publish cycle. The error counter is kept until the next PubInit.
func (p *Parameter) PubReset() {
	p.pubPending = false
	p.pubInitAt = time.Time{}
}

// PubErrInc counts one failed publish attempt.
func (p *Parameter) PubErrInc() { p.pubErrs++ }

// PubErrIni clears the failed attempt counter.
func (p *Parameter) PubErrIni() { p.pubErrs = 0 }

func (p *Parameter) PubErrs() int { return p.pubErrs }

// Publish acknowledges the pending publish and returns the published text.
// Calling it while nothing is pending is harmless.
func (p *Parameter) Publish() string {
	out := p.text
	p.pubPending = false
	p.pubInitAt = time.Time{}
	p.pubErrs = 0
	p.lastPublished = out
	if p.once && p.IsSet() {
		p.unset()
		p.retired = true
	}
	return out
}

// Event acknowledges the pending event and returns the value text.
func (p *Parameter) Event() string {
	p.eventPending = false
	return p.text
}

// EventBool acknowledges the pending event and returns the value as a bool.
func (p *Parameter) EventBool() bool {
	p.eventPending = false
	return p.GetBool()
}

// ---- assignment ----

func (p *Parameter) store(typ Datatype, v any, text string) string {
	switch {
	case p.IsSet():
		p.isNew = text != p.text
	case p.retired:
		p.isNew = text != p.lastPublished
	default:
		p.isNew = true
	}
	p.retired = false
	p.typ = typ
	p.value = v
	if p.isNew || p.always {
		p.pubPending = true
		p.eventPending = true
	}
	p.text = text
	return p.text
}

func (p *Parameter) SetBool(v bool) string {
	text := textFalse
	if v {
		text = textTrue
	}
	return p.store(TypeBool, v, text)
}

func (p *Parameter) SetByte(v uint8) string {
	return p.store(TypeByte, v, strconv.FormatUint(uint64(v), 10))
}

func (p *Parameter) SetInt16(v int16) string {
	return p.store(TypeInt16, v, strconv.FormatInt(int64(v), 10))
}

func (p *Parameter) SetInt32(v int32) string {
	return p.store(TypeInt32, v, strconv.FormatInt(int64(v), 10))
}

func (p *Parameter) SetUint16(v uint16) string {
	return p.store(TypeUint16, v, strconv.FormatUint(uint64(v), 10))
}

func (p *Parameter) SetUint32(v uint32) string {
	return p.store(TypeUint32, v, strconv.FormatUint(uint64(v), 10))
}

// SetFloat renders v with a fixed number of decimals.
// A negative decimals selects DefaultDecimals.
func (p *Parameter) SetFloat(v float32, decimals int) string {
	if decimals < 0 {
		decimals = DefaultDecimals
	}
	return p.store(TypeFloat, v, strconv.FormatFloat(float64(v), 'f', decimals, 32))
}

func (p *Parameter) SetString(v string) string {
	return p.store(TypeString, v, v)
}

// SetRaw stores a C-style string: text ends at the first NUL byte.
// The bytes are copied.
func (p *Parameter) SetRaw(v []byte) string {
	if i := bytes.IndexByte(v, 0); i >= 0 {
		v = v[:i]
	}
	s := string(v)
	return p.store(TypeRaw, s, s)
}

// SetNA assigns the explicit "not available" value.
func (p *Parameter) SetNA() string {
	return p.store(TypeRaw, NotAvailable, NotAvailable)
}

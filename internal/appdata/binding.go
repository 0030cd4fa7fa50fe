package appdata

import (
	"fmt"

	"github.com/tamzrod/modbus-paramhub/internal/param"
	"github.com/tamzrod/modbus-paramhub/internal/poller"
)

// Binding ties one parameter to its place in the source geometry.
type Binding struct {
	Param   *param.Parameter
	Type    param.Datatype
	FC      uint8
	Address uint16

	// Quantity is the register count of string and raw bindings.
	Quantity uint16

	// Decimals is the float text precision.
	Decimals int
}

// Words returns how many registers (or bits, for FC 1/2) the binding spans.
func (b Binding) Words() uint16 {
	switch b.Type {
	case param.TypeInt32, param.TypeUint32, param.TypeFloat:
		return 2
	case param.TypeString, param.TypeRaw:
		return b.Quantity
	default:
		return 1
	}
}

// IsBits reports whether the binding reads coils or discrete inputs.
func (b Binding) IsBits() bool { return b.FC == 1 || b.FC == 2 }

// Apply decodes the binding's slice of a poll result into its parameter.
// It returns whether the parameter changed.
func (b Binding) Apply(res poller.PollResult) (bool, error) {
	blk, ok := res.Block(b.FC, b.Address, b.Words())
	if !ok {
		return false, fmt.Errorf(
			"appdata: %s: fc=%d addr=%d len=%d not in poll result",
			b.Param.Name(), b.FC, b.Address, b.Words(),
		)
	}

	off := int(b.Address - blk.Address)

	if b.IsBits() {
		if b.Type != param.TypeBool {
			return false, fmt.Errorf("appdata: %s: fc=%d requires bool", b.Param.Name(), b.FC)
		}
		b.Param.SetBool(blk.Bits[off])
		return b.Param.IsNew(), nil
	}

	regs := blk.Registers[off : off+int(b.Words())]
	if err := decode(b, regs); err != nil {
		return false, err
	}
	return b.Param.IsNew(), nil
}

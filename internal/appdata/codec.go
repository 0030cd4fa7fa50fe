package appdata

import (
	"fmt"
	"math"

	"github.com/tamzrod/modbus-paramhub/internal/param"
)

// Register layout:
//   - 16-bit values occupy one register.
//   - 32-bit values occupy two registers, high word first.
//   - float is IEEE 754 single precision, high word first.
//   - string/raw pack two ASCII bytes per register, high byte first,
//     NUL padded.

func decode(b Binding, regs []uint16) error {
	p := b.Param

	switch b.Type {
	case param.TypeBool:
		p.SetBool(regs[0] != 0)
	case param.TypeByte:
		p.SetByte(uint8(regs[0]))
	case param.TypeInt16:
		p.SetInt16(int16(regs[0]))
	case param.TypeUint16:
		p.SetUint16(regs[0])
	case param.TypeInt32:
		p.SetInt32(int32(join32(regs)))
	case param.TypeUint32:
		p.SetUint32(join32(regs))
	case param.TypeFloat:
		p.SetFloat(math.Float32frombits(join32(regs)), b.Decimals)
	case param.TypeString:
		p.SetString(trimASCII(unpackASCII(regs)))
	case param.TypeRaw:
		p.SetRaw(unpackASCII(regs))
	default:
		return fmt.Errorf("appdata: %s: cannot decode type %s", p.Name(), b.Type)
	}
	return nil
}

// Registers encodes the parameter's current value for a register target.
// The result always spans b.Words() registers.
func (b Binding) Registers() ([]uint16, error) {
	p := b.Param
	if !p.IsSet() {
		return nil, fmt.Errorf("appdata: %s: not set", p.Name())
	}

	switch v := p.Value().(type) {
	case bool:
		if v {
			return []uint16{1}, nil
		}
		return []uint16{0}, nil
	case uint8:
		return []uint16{uint16(v)}, nil
	case int16:
		return []uint16{uint16(v)}, nil
	case uint16:
		return []uint16{v}, nil
	case int32:
		return split32(uint32(v)), nil
	case uint32:
		return split32(v), nil
	case float32:
		return split32(math.Float32bits(v)), nil
	case string:
		return packASCII(v, int(b.Words())), nil
	default:
		return nil, fmt.Errorf("appdata: %s: cannot encode %T", p.Name(), v)
	}
}

// Bits encodes the parameter's current value for a coil target.
func (b Binding) Bits() ([]bool, error) {
	p := b.Param
	if !p.IsSet() {
		return nil, fmt.Errorf("appdata: %s: not set", p.Name())
	}
	v, ok := p.Value().(bool)
	if !ok {
		return nil, fmt.Errorf("appdata: %s: bit target needs bool, have %s", p.Name(), p.Type())
	}
	return []bool{v}, nil
}

func join32(regs []uint16) uint32 {
	return uint32(regs[0])<<16 | uint32(regs[1])
}

func split32(v uint32) []uint16 {
	return []uint16{uint16(v >> 16), uint16(v)}
}

func unpackASCII(regs []uint16) []byte {
	out := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

// trimASCII cuts at the first NUL and drops trailing spaces.
func trimASCII(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	for n > 0 && b[n-1] == ' ' {
		n--
	}
	return string(b[:n])
}

func packASCII(s string, words int) []uint16 {
	out := make([]uint16, words)
	b := []byte(s)
	for i := 0; i < words*2 && i < len(b); i++ {
		if i%2 == 0 {
			out[i/2] |= uint16(b[i]) << 8
		} else {
			out[i/2] |= uint16(b[i])
		}
	}
	return out
}

package config

import (
	"fmt"

	"github.com/tamzrod/modbus-paramhub/internal/param"
)

// Words returns how many registers (or bits) the parameter spans.
func (p ParameterConfig) Words() (uint16, error) {
	typ, err := param.ParseDatatype(p.Type)
	if err != nil {
		return 0, err
	}
	switch typ {
	case param.TypeInt32, param.TypeUint32, param.TypeFloat:
		return 2, nil
	case param.TypeString, param.TypeRaw:
		if p.Quantity == 0 {
			return 0, fmt.Errorf("type %s requires quantity > 0", typ)
		}
		return p.Quantity, nil
	default:
		return 1, nil
	}
}

package param

import "fmt"

// Datatype tags the primitive a parameter was last assigned from.
type Datatype uint8

const (
	TypeNone Datatype = iota // never assigned
	TypeBool
	TypeByte
	TypeInt16
	TypeInt32
	TypeUint16
	TypeUint32
	TypeFloat
	TypeString
	TypeRaw
)

var datatypeNames = []string{
	"none", "bool", "byte", "int16", "int32",
	"uint16", "uint32", "float", "string", "raw",
}

func (d Datatype) String() string {
	if int(d) < len(datatypeNames) {
		return datatypeNames[d]
	}
	return "unknown"
}

// ParseDatatype maps a config type name onto its tag.
// "none" is not accepted: a binding must name a real primitive.
func ParseDatatype(s string) (Datatype, error) {
	for i, n := range datatypeNames {
		if i == int(TypeNone) {
			continue
		}
		if n == s {
			return Datatype(i), nil
		}
	}
	return TypeNone, fmt.Errorf("param: unknown type %q", s)
}

package types

import "fmt"

// Value is a typed literal/runtime value. The simulator (internal/sim)
// and the lowering pass (internal/lowering, for literal values) both
// traffic in these.
type Value struct {
	Type Type
	// exactly one of the fields below is meaningful, selected by Type.
	Bool    bool
	Int     int64
	Uint    uint64
	Float   float64
	String  string
	Dur     Duration
	Enum    *EnumVariant
	Array   []Value
	Struct  map[string]Value
	Pointer *Value // nil pointer when Pointer == nil
}

// Zero returns the default/initial value for t when no explicit
// initializer is given (§4.6 "initialize all variables to declared
// initial values (0 / false / empty for unspecified)").
func Zero(t Type) Value {
	switch tt := t.(type) {
	case *Primitive:
		switch tt.Kind {
		case KindBool:
			return Value{Type: t, Bool: false}
		case KindFloat32, KindFloat64:
			return Value{Type: t, Float: 0}
		case KindUint8, KindUint16, KindUint32, KindUint64, KindBits8, KindBits16, KindBits32, KindBits64:
			return Value{Type: t, Uint: 0}
		case KindDuration, KindLongDuration:
			return Value{Type: t, Dur: 0}
		default:
			return Value{Type: t, Int: 0}
		}
	case *StringType:
		return Value{Type: t, String: ""}
	case *Array:
		n := int64(1)
		for _, b := range tt.Bounds {
			n *= b.Len()
		}
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = Zero(tt.Element)
		}
		return Value{Type: t, Array: elems}
	case *Struct:
		fields := make(map[string]Value, len(tt.Fields))
		for _, f := range tt.Fields {
			if f.Default.Type != nil {
				fields[f.Name] = f.Default
				continue
			}
			fields[f.Name] = Zero(f.Type)
		}
		return Value{Type: t, Struct: fields}
	case *Enum:
		if len(tt.Variants) > 0 {
			v := tt.Variants[0]
			return Value{Type: t, Enum: &v}
		}
		return Value{Type: t}
	case *Pointer, *Reference:
		return Value{Type: t, Pointer: nil}
	}
	return Value{Type: t}
}

func (v Value) String() string {
	switch vt := v.Type.(type) {
	case *Primitive:
		switch vt.Kind {
		case KindBool:
			return fmt.Sprintf("%v", v.Bool)
		case KindFloat32, KindFloat64:
			return fmt.Sprintf("%v", v.Float)
		case KindUint8, KindUint16, KindUint32, KindUint64, KindBits8, KindBits16, KindBits32, KindBits64:
			return fmt.Sprintf("%v", v.Uint)
		case KindDuration, KindLongDuration:
			return fmt.Sprintf("%dns", int64(v.Dur))
		default:
			return fmt.Sprintf("%v", v.Int)
		}
	case *StringType:
		return v.String
	case *Enum:
		if v.Enum != nil {
			return v.Enum.Name
		}
		return "<enum:unset>"
	}
	return fmt.Sprintf("%v", v.Int)
}

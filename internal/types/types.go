// Package types implements plx's IEC 61131-3 type system (component A):
// primitive, derived, and composite types, literal values, and duration
// arithmetic.
package types

import "fmt"

// Kind tags the primitive family a Type belongs to. Derived and
// composite types (arrays, strings, pointers, structs, enums) are
// represented by their own node kinds below.
type Kind int

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBits8
	KindBits16
	KindBits32
	KindBits64
	KindDuration
	KindLongDuration
	KindDate
	KindTimeOfDay
	KindDateTime
	KindChar
	KindWChar
)

var kindNames = map[Kind]string{
	KindBool: "BOOL", KindInt8: "SINT", KindInt16: "INT", KindInt32: "DINT", KindInt64: "LINT",
	KindUint8: "USINT", KindUint16: "UINT", KindUint32: "UDINT", KindUint64: "ULINT",
	KindFloat32: "REAL", KindFloat64: "LREAL",
	KindBits8: "BYTE", KindBits16: "WORD", KindBits32: "DWORD", KindBits64: "LWORD",
	KindDuration: "TIME", KindLongDuration: "LTIME",
	KindDate: "DATE", KindTimeOfDay: "TOD", KindDateTime: "DT",
	KindChar: "CHAR", KindWChar: "WCHAR",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is the closed, tagged set of IEC 61131-3 types. Every IR value
// carries one (§3.1 invariants).
type Type interface {
	isType()
	String() string
}

// Primitive is a scalar primitive type.
type Primitive struct {
	Kind Kind
}

func (*Primitive) isType()        {}
func (p *Primitive) String() string { return p.Kind.String() }

// Bound is one inclusive dimension of an array type, [Lo, Hi].
type Bound struct {
	Lo, Hi int64
}

func (b Bound) Len() int64 { return b.Hi - b.Lo + 1 }

// Array is array-of(element, bounds): bounds are ordered, one per
// dimension; multi-dimensional arrays are first-class, not nested
// (§3.1).
type Array struct {
	Element Type
	Bounds  []Bound
}

func (*Array) isType() {}
func (a *Array) String() string {
	s := "ARRAY ["
	for i, b := range a.Bounds {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d..%d", b.Lo, b.Hi)
	}
	return s + "] OF " + a.Element.String()
}

// StringType is string-of(max_len) / wide-string-of(max_len).
type StringType struct {
	MaxLen int
	Wide   bool
}

func (*StringType) isType() {}
func (s *StringType) String() string {
	if s.Wide {
		return fmt.Sprintf("WSTRING[%d]", s.MaxLen)
	}
	return fmt.Sprintf("STRING[%d]", s.MaxLen)
}

// Pointer is pointer-to(t).
type Pointer struct{ Elem Type }

func (*Pointer) isType()          {}
func (p *Pointer) String() string { return "POINTER TO " + p.Elem.String() }

// Reference is reference-to(t).
type Reference struct{ Elem Type }

func (*Reference) isType()          {}
func (r *Reference) String() string { return "REFERENCE TO " + r.Elem.String() }

// StructField is one ordered field of a Struct; field names are unique
// within the struct (§3.1).
type StructField struct {
	Name    string
	Type    Type
	Default Value // optional; zero Value (Type == nil) if unset
}

// Struct is a user-defined structure with ordered, uniquely-named
// fields.
type Struct struct {
	Name   string
	Fields []StructField
}

func (*Struct) isType()          {}
func (s *Struct) String() string { return s.Name }

// FieldByName returns the field with the given name, or nil.
func (s *Struct) FieldByName(name string) *StructField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// EnumVariant is one variant of an Enum: unique name, unique integer
// value within the enum (§3.1).
type EnumVariant struct {
	Name  string
	Value int64
}

// Enum is a user-defined enumeration.
type Enum struct {
	Name     string
	Variants []EnumVariant
}

func (*Enum) isType()          {}
func (e *Enum) String() string { return e.Name }

// VariantByName returns the variant with the given name, or nil.
func (e *Enum) VariantByName(name string) *EnumVariant {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i]
		}
	}
	return nil
}

// VariantByValue returns the variant with the given integer value, or
// nil.
func (e *Enum) VariantByValue(v int64) *EnumVariant {
	for i := range e.Variants {
		if e.Variants[i].Value == v {
			return &e.Variants[i]
		}
	}
	return nil
}

// FBInstance is the type of a declared function-block instance
// variable (e.g. a timer, edge detector, counter, or user-defined
// function-block instance): named by the function-block it
// instantiates. Field access on a variable of this type resolves
// against that function-block's declared inputs/outputs rather than
// struct fields.
type FBInstance struct {
	FBName string
}

func (*FBInstance) isType()          {}
func (f *FBInstance) String() string { return f.FBName }

// Equal reports whether two types are structurally identical. Named
// composite types (Struct, Enum) compare by name: the type system is
// nominal for user-defined types, structural for everything else.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		return ok && av.Kind == bv.Kind
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Bounds) != len(bv.Bounds) || !Equal(av.Element, bv.Element) {
			return false
		}
		for i := range av.Bounds {
			if av.Bounds[i] != bv.Bounds[i] {
				return false
			}
		}
		return true
	case *StringType:
		bv, ok := b.(*StringType)
		return ok && av.MaxLen == bv.MaxLen && av.Wide == bv.Wide
	case *Pointer:
		bv, ok := b.(*Pointer)
		return ok && Equal(av.Elem, bv.Elem)
	case *Reference:
		bv, ok := b.(*Reference)
		return ok && Equal(av.Elem, bv.Elem)
	case *Struct:
		bv, ok := b.(*Struct)
		return ok && av.Name == bv.Name
	case *Enum:
		bv, ok := b.(*Enum)
		return ok && av.Name == bv.Name
	case *FBInstance:
		bv, ok := b.(*FBInstance)
		return ok && av.FBName == bv.FBName
	}
	return false
}

// Convenience constructors for the common primitives.
var (
	Bool       = &Primitive{Kind: KindBool}
	Int8       = &Primitive{Kind: KindInt8}
	Int16      = &Primitive{Kind: KindInt16}
	Int32      = &Primitive{Kind: KindInt32}
	Int64      = &Primitive{Kind: KindInt64}
	Uint8      = &Primitive{Kind: KindUint8}
	Uint16     = &Primitive{Kind: KindUint16}
	Uint32     = &Primitive{Kind: KindUint32}
	Uint64     = &Primitive{Kind: KindUint64}
	Float32    = &Primitive{Kind: KindFloat32}
	Float64    = &Primitive{Kind: KindFloat64}
	Bits8      = &Primitive{Kind: KindBits8}
	Bits16     = &Primitive{Kind: KindBits16}
	Bits32     = &Primitive{Kind: KindBits32}
	Bits64     = &Primitive{Kind: KindBits64}
	DurationType = &Primitive{Kind: KindDuration}
	LDuration  = &Primitive{Kind: KindLongDuration}
	Date       = &Primitive{Kind: KindDate}
	TimeOfDay  = &Primitive{Kind: KindTimeOfDay}
	DateTime   = &Primitive{Kind: KindDateTime}
	Char       = &Primitive{Kind: KindChar}
	WChar      = &Primitive{Kind: KindWChar}
)

func isInt(k Kind) bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

func isUnsigned(k Kind) bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

func isFloat(k Kind) bool {
	return k == KindFloat32 || k == KindFloat64
}

func width(k Kind) int {
	switch k {
	case KindInt8, KindUint8, KindBits8:
		return 8
	case KindInt16, KindUint16, KindBits16:
		return 16
	case KindInt32, KindUint32, KindBits32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindBits64, KindFloat64:
		return 64
	}
	return 0
}

// AssignableFrom reports whether a value of type src may be assigned to
// a variable of type dst (§3.1): numeric widening within the same
// signedness family is permitted, narrowing is rejected unless an
// explicit conversion is used, and booleans are never implicitly
// produced from a non-boolean context.
func AssignableFrom(dst, src Type) bool {
	if Equal(dst, src) {
		return true
	}
	dp, dok := dst.(*Primitive)
	sp, sok := src.(*Primitive)
	if dok && sok {
		if dp.Kind == KindBool || sp.Kind == KindBool {
			return false
		}
		if isFloat(dp.Kind) && isFloat(sp.Kind) {
			return width(dp.Kind) >= width(sp.Kind)
		}
		if isInt(dp.Kind) && isInt(sp.Kind) && isUnsigned(dp.Kind) == isUnsigned(sp.Kind) {
			return width(dp.Kind) >= width(sp.Kind)
		}
		return false
	}
	if dp, ok := dst.(*Pointer); ok {
		if sp, ok := src.(*Pointer); ok {
			return Equal(dp.Elem, sp.Elem)
		}
	}
	if dr, ok := dst.(*Reference); ok {
		if sr, ok := src.(*Reference); ok {
			return Equal(dr.Elem, sr.Elem)
		}
	}
	return false
}

// IsBoolean reports whether t is the BOOL primitive; used to reject
// non-boolean conditions (§3.1, §3.2).
func IsBoolean(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == KindBool
}

// IsIntegerOrEnum reports whether t may be used as a case-statement or
// counted-loop selector/induction type (§3.2).
func IsIntegerOrEnum(t Type) bool {
	if p, ok := t.(*Primitive); ok {
		return isInt(p.Kind)
	}
	_, ok := t.(*Enum)
	return ok
}

package types

import "testing"

func TestAssignableFromWidening(t *testing.T) {
	cases := []struct {
		name     string
		dst, src Type
		want     bool
	}{
		{"same type", Int32, Int32, true},
		{"widen signed int", Int64, Int32, true},
		{"narrow signed int", Int32, Int64, false},
		{"widen unsigned", Uint64, Uint32, true},
		{"mixed signedness rejected", Int32, Uint32, false},
		{"widen float", Float64, Float32, true},
		{"narrow float", Float32, Float64, false},
		{"bool never assignable from int", Bool, Int32, false},
		{"int never assignable from bool", Int32, Bool, false},
		{"bool from bool", Bool, Bool, true},
		{"equal pointer elems", &Pointer{Elem: Int32}, &Pointer{Elem: Int32}, true},
		{"mismatched pointer elems", &Pointer{Elem: Int32}, &Pointer{Elem: Bool}, false},
	}
	for _, c := range cases {
		if got := AssignableFrom(c.dst, c.src); got != c.want {
			t.Errorf("%s: AssignableFrom(%s, %s) = %v, want %v", c.name, c.dst, c.src, got, c.want)
		}
	}
}

func TestIsBoolean(t *testing.T) {
	if !IsBoolean(Bool) {
		t.Fatal("IsBoolean(Bool) = false, want true")
	}
	if IsBoolean(Int32) {
		t.Fatal("IsBoolean(Int32) = true, want false")
	}
}

func TestIsIntegerOrEnum(t *testing.T) {
	if !IsIntegerOrEnum(Int32) {
		t.Fatal("IsIntegerOrEnum(Int32) = false, want true")
	}
	if IsIntegerOrEnum(Bool) {
		t.Fatal("IsIntegerOrEnum(Bool) = true, want false")
	}
	enum := &Enum{Name: "Color", Variants: []EnumVariant{{Name: "Red", Value: 0}}}
	if !IsIntegerOrEnum(enum) {
		t.Fatal("IsIntegerOrEnum(enum) = false, want true")
	}
}

func TestEqualNominalForStructsAndEnums(t *testing.T) {
	s1 := &Struct{Name: "Point", Fields: []StructField{{Name: "X", Type: Int32}}}
	s2 := &Struct{Name: "Point", Fields: []StructField{{Name: "X", Type: Int32}, {Name: "Y", Type: Int32}}}
	if !Equal(s1, s2) {
		t.Fatal("Equal should compare named structs by name, not by field shape")
	}
	s3 := &Struct{Name: "Other", Fields: s1.Fields}
	if Equal(s1, s3) {
		t.Fatal("Equal should reject differently-named structs even with identical fields")
	}
}

func TestDurationArithmetic(t *testing.T) {
	d := NewDuration(DurationComponents{Seconds: 2, Milliseconds: 500})
	if d != Duration(2_500_000_000) {
		t.Fatalf("NewDuration = %d, want 2500000000ns", d)
	}
	sum := d.Add(NewDuration(DurationComponents{Milliseconds: 500}))
	if sum != Duration(3_000_000_000) {
		t.Fatalf("Add = %d, want 3000000000ns", sum)
	}
	if d.Compare(sum) >= 0 {
		t.Fatalf("Compare(d, sum) = %d, want negative (d < sum)", d.Compare(sum))
	}
	if !d.Less(sum) {
		t.Fatal("Less(d, sum) = false, want true")
	}
	neg := NewDuration(DurationComponents{Seconds: 1, Negative: true})
	if neg != Duration(-1_000_000_000) {
		t.Fatalf("negative duration = %d, want -1000000000", neg)
	}
}

func TestZeroValuesByKind(t *testing.T) {
	if Zero(Bool).Bool != false {
		t.Fatal("Zero(Bool) must be false")
	}
	if Zero(Int32).Int != 0 {
		t.Fatal("Zero(Int32) must be 0")
	}
	if Zero(Uint32).Uint != 0 {
		t.Fatal("Zero(Uint32) must be 0")
	}
	if Zero(Float64).Float != 0 {
		t.Fatal("Zero(Float64) must be 0")
	}
	if Zero(DurationType).Dur != 0 {
		t.Fatal("Zero(DurationType) must be 0")
	}

	arr := &Array{Element: Int32, Bounds: []Bound{{Lo: 0, Hi: 2}}}
	zv := Zero(arr)
	if len(zv.Array) != 3 {
		t.Fatalf("Zero(array[0..2]) produced %d elements, want 3", len(zv.Array))
	}

	st := &Struct{Name: "P", Fields: []StructField{{Name: "X", Type: Int32}}}
	zs := Zero(st)
	if zs.Struct["X"].Int != 0 {
		t.Fatal("Zero(struct) field X must default to 0")
	}

	en := &Enum{Name: "Color", Variants: []EnumVariant{{Name: "Red", Value: 0}, {Name: "Green", Value: 1}}}
	ze := Zero(en)
	if ze.Enum == nil || ze.Enum.Name != "Red" {
		t.Fatal("Zero(enum) must default to the first declared variant")
	}
}

func TestBoundLen(t *testing.T) {
	b := Bound{Lo: 1, Hi: 10}
	if b.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", b.Len())
	}
}

package store

import (
	"fmt"

	"plx/internal/ir"
	"plx/internal/types"
)

// This file implements the tagged-JSON wire format each algebraic sum
// type in internal/ir and internal/types is flattened to, so Marshal/
// Unmarshal can round-trip a full Project — bodies, SFC charts, type
// trees, and initial values included — rather than just its outline
// (§6.3: "serialize∘deserialize is the identity"). Each wire struct
// carries a Kind/role/schedule discriminator string plus only the
// fields meaningful for that tag, mirroring the closed node sets in
// internal/ir's Expr/Stmt and internal/types' Type.
//
// Encoding walks real IR nodes and dispatches through ir.ExprVisitor/
// ir.StmtVisitor, the same double-dispatch idiom internal/sim's
// Evaluator and Executor use to traverse the same trees. Decoding
// walks the already-concrete wire structs and switches on their Kind
// string instead — there is no polymorphic node to dispatch through
// until the ir.Expr/ir.Stmt value is reconstructed.

type wireBound struct {
	Lo, Hi int64
}

type wireVariant struct {
	Name  string
	Value int64
}

type wireField struct {
	Name    string      `json:"name"`
	Type    *wireType   `json:"type"`
	Default *wireValue  `json:"default,omitempty"`
}

// wireType is the tagged union for types.Type.
type wireType struct {
	Kind string `json:"kind"` // primitive, array, string, pointer, reference, struct, enum, fb_instance

	Prim string `json:"prim,omitempty"` // primitive

	Element *wireType   `json:"element,omitempty"` // array
	Bounds  []wireBound `json:"bounds,omitempty"`   // array

	MaxLen int  `json:"max_len,omitempty"` // string
	Wide   bool `json:"wide,omitempty"`    // string

	Elem *wireType `json:"elem,omitempty"` // pointer/reference

	Name     string        `json:"name,omitempty"`     // struct/enum/fb_instance
	Fields   []wireField   `json:"fields,omitempty"`   // struct
	Variants []wireVariant `json:"variants,omitempty"` // enum
}

var primitiveKindByName = map[string]types.Kind{
	"BOOL": types.KindBool, "SINT": types.KindInt8, "INT": types.KindInt16, "DINT": types.KindInt32, "LINT": types.KindInt64,
	"USINT": types.KindUint8, "UINT": types.KindUint16, "UDINT": types.KindUint32, "ULINT": types.KindUint64,
	"REAL": types.KindFloat32, "LREAL": types.KindFloat64,
	"BYTE": types.KindBits8, "WORD": types.KindBits16, "DWORD": types.KindBits32, "LWORD": types.KindBits64,
	"TIME": types.KindDuration, "LTIME": types.KindLongDuration,
	"DATE": types.KindDate, "TOD": types.KindTimeOfDay, "DT": types.KindDateTime,
	"CHAR": types.KindChar, "WCHAR": types.KindWChar,
}

func isFloatKind(k types.Kind) bool { return k == types.KindFloat32 || k == types.KindFloat64 }

func isUnsignedKind(k types.Kind) bool {
	switch k {
	case types.KindUint8, types.KindUint16, types.KindUint32, types.KindUint64,
		types.KindBits8, types.KindBits16, types.KindBits32, types.KindBits64:
		return true
	}
	return false
}

func isDurationKind(k types.Kind) bool { return k == types.KindDuration || k == types.KindLongDuration }

func typeToWire(t types.Type) *wireType {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *types.Primitive:
		return &wireType{Kind: "primitive", Prim: tt.Kind.String()}
	case *types.Array:
		bounds := make([]wireBound, len(tt.Bounds))
		for i, b := range tt.Bounds {
			bounds[i] = wireBound{Lo: b.Lo, Hi: b.Hi}
		}
		return &wireType{Kind: "array", Element: typeToWire(tt.Element), Bounds: bounds}
	case *types.StringType:
		return &wireType{Kind: "string", MaxLen: tt.MaxLen, Wide: tt.Wide}
	case *types.Pointer:
		return &wireType{Kind: "pointer", Elem: typeToWire(tt.Elem)}
	case *types.Reference:
		return &wireType{Kind: "reference", Elem: typeToWire(tt.Elem)}
	case *types.Struct:
		fields := make([]wireField, len(tt.Fields))
		for i, f := range tt.Fields {
			wf := wireField{Name: f.Name, Type: typeToWire(f.Type)}
			if f.Default.Type != nil {
				dv := valueToWire(f.Default)
				wf.Default = &dv
			}
			fields[i] = wf
		}
		return &wireType{Kind: "struct", Name: tt.Name, Fields: fields}
	case *types.Enum:
		variants := make([]wireVariant, len(tt.Variants))
		for i, v := range tt.Variants {
			variants[i] = wireVariant{Name: v.Name, Value: v.Value}
		}
		return &wireType{Kind: "enum", Name: tt.Name, Variants: variants}
	case *types.FBInstance:
		return &wireType{Kind: "fb_instance", Name: tt.FBName}
	}
	return nil
}

func wireToType(w *wireType) (types.Type, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Kind {
	case "primitive":
		k, ok := primitiveKindByName[w.Prim]
		if !ok {
			return nil, fmt.Errorf("store: unknown primitive kind %q", w.Prim)
		}
		return &types.Primitive{Kind: k}, nil
	case "array":
		elem, err := wireToType(w.Element)
		if err != nil {
			return nil, err
		}
		bounds := make([]types.Bound, len(w.Bounds))
		for i, b := range w.Bounds {
			bounds[i] = types.Bound{Lo: b.Lo, Hi: b.Hi}
		}
		return &types.Array{Element: elem, Bounds: bounds}, nil
	case "string":
		return &types.StringType{MaxLen: w.MaxLen, Wide: w.Wide}, nil
	case "pointer":
		elem, err := wireToType(w.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Pointer{Elem: elem}, nil
	case "reference":
		elem, err := wireToType(w.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Reference{Elem: elem}, nil
	case "struct":
		fields := make([]types.StructField, len(w.Fields))
		for i, wf := range w.Fields {
			ft, err := wireToType(wf.Type)
			if err != nil {
				return nil, err
			}
			sf := types.StructField{Name: wf.Name, Type: ft}
			if wf.Default != nil {
				dv, err := wireToValue(*wf.Default)
				if err != nil {
					return nil, err
				}
				sf.Default = dv
			}
			fields[i] = sf
		}
		return &types.Struct{Name: w.Name, Fields: fields}, nil
	case "enum":
		variants := make([]types.EnumVariant, len(w.Variants))
		for i, wv := range w.Variants {
			variants[i] = types.EnumVariant{Name: wv.Name, Value: wv.Value}
		}
		return &types.Enum{Name: w.Name, Variants: variants}, nil
	case "fb_instance":
		return &types.FBInstance{FBName: w.Name}, nil
	}
	return nil, fmt.Errorf("store: unknown type kind %q", w.Kind)
}

// wireValue is the tagged union for types.Value: which field is
// meaningful is determined by Type's reconstructed kind, exactly as
// types.Value itself documents ("exactly one of the fields below is
// meaningful, selected by Type").
type wireValue struct {
	Type *wireType `json:"type"`

	Bool    bool                 `json:"bool,omitempty"`
	Int     int64                `json:"int,omitempty"`
	Uint    uint64               `json:"uint,omitempty"`
	Float   float64              `json:"float,omitempty"`
	String  string               `json:"string,omitempty"`
	DurNs   int64                `json:"dur_ns,omitempty"`
	EnumSet bool                 `json:"enum_set,omitempty"`
	Enum    string               `json:"enum,omitempty"`
	Array   []wireValue          `json:"array,omitempty"`
	Struct  map[string]wireValue `json:"struct,omitempty"`
	Pointer *wireValue           `json:"pointer,omitempty"`
}

func valueToWire(v types.Value) wireValue {
	w := wireValue{Type: typeToWire(v.Type)}
	switch t := v.Type.(type) {
	case *types.Primitive:
		switch {
		case types.IsBoolean(t):
			w.Bool = v.Bool
		case isFloatKind(t.Kind):
			w.Float = v.Float
		case isUnsignedKind(t.Kind):
			w.Uint = v.Uint
		case isDurationKind(t.Kind):
			w.DurNs = int64(v.Dur)
		default:
			w.Int = v.Int
		}
	case *types.StringType:
		w.String = v.String
	case *types.Array:
		w.Array = make([]wireValue, len(v.Array))
		for i, e := range v.Array {
			w.Array[i] = valueToWire(e)
		}
	case *types.Struct:
		w.Struct = make(map[string]wireValue, len(v.Struct))
		for k, fv := range v.Struct {
			w.Struct[k] = valueToWire(fv)
		}
	case *types.Enum:
		if v.Enum != nil {
			w.EnumSet = true
			w.Enum = v.Enum.Name
		}
	case *types.Pointer, *types.Reference:
		if v.Pointer != nil {
			pw := valueToWire(*v.Pointer)
			w.Pointer = &pw
		}
	}
	return w
}

func wireToValue(w wireValue) (types.Value, error) {
	t, err := wireToType(w.Type)
	if err != nil {
		return types.Value{}, err
	}
	v := types.Value{Type: t}
	switch tt := t.(type) {
	case *types.Primitive:
		switch {
		case types.IsBoolean(tt):
			v.Bool = w.Bool
		case isFloatKind(tt.Kind):
			v.Float = w.Float
		case isUnsignedKind(tt.Kind):
			v.Uint = w.Uint
		case isDurationKind(tt.Kind):
			v.Dur = types.Duration(w.DurNs)
		default:
			v.Int = w.Int
		}
	case *types.StringType:
		v.String = w.String
	case *types.Array:
		v.Array = make([]types.Value, len(w.Array))
		for i, e := range w.Array {
			ev, err := wireToValue(e)
			if err != nil {
				return types.Value{}, err
			}
			v.Array[i] = ev
		}
	case *types.Struct:
		if w.Struct != nil {
			v.Struct = make(map[string]types.Value, len(w.Struct))
			for k, fw := range w.Struct {
				fv, err := wireToValue(fw)
				if err != nil {
					return types.Value{}, err
				}
				v.Struct[k] = fv
			}
		}
	case *types.Enum:
		if w.EnumSet {
			variant := tt.VariantByName(w.Enum)
			if variant == nil {
				return types.Value{}, fmt.Errorf("store: enum %s has no variant %q", tt.Name, w.Enum)
			}
			v.Enum = variant
		}
	case *types.Pointer, *types.Reference:
		if w.Pointer != nil {
			pv, err := wireToValue(*w.Pointer)
			if err != nil {
				return types.Value{}, err
			}
			v.Pointer = &pv
		}
	}
	return v, nil
}

// wireSegment is the tagged union for ir.PathSegment.
type wireSegment struct {
	Kind    string      `json:"kind"` // field, index, deref
	Name    string      `json:"name,omitempty"`
	Indices []wireExpr  `json:"indices,omitempty"`
}

func encodeSegments(segs []ir.PathSegment) []wireSegment {
	out := make([]wireSegment, len(segs))
	for i, s := range segs {
		switch seg := s.(type) {
		case *ir.FieldSegment:
			out[i] = wireSegment{Kind: "field", Name: seg.Name}
		case *ir.IndexSegment:
			idx := make([]wireExpr, len(seg.Indices))
			for j, ie := range seg.Indices {
				idx[j] = *encodeExpr(ie)
			}
			out[i] = wireSegment{Kind: "index", Indices: idx}
		case *ir.DerefSegment:
			out[i] = wireSegment{Kind: "deref"}
		}
	}
	return out
}

func decodeSegments(ws []wireSegment) ([]ir.PathSegment, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]ir.PathSegment, len(ws))
	for i, w := range ws {
		switch w.Kind {
		case "field":
			out[i] = &ir.FieldSegment{Name: w.Name}
		case "index":
			var idx []ir.Expr
			if len(w.Indices) > 0 {
				idx = make([]ir.Expr, len(w.Indices))
				for j := range w.Indices {
					e, err := decodeExpr(&w.Indices[j])
					if err != nil {
						return nil, err
					}
					idx[j] = e
				}
			}
			out[i] = &ir.IndexSegment{Indices: idx}
		case "deref":
			out[i] = &ir.DerefSegment{}
		default:
			return nil, fmt.Errorf("store: unknown path segment kind %q", w.Kind)
		}
	}
	return out, nil
}

type wireArg struct {
	Name  string    `json:"name,omitempty"`
	Value *wireExpr `json:"value"`
}

func encodeArgs(args []ir.Arg) []wireArg {
	out := make([]wireArg, len(args))
	for i, a := range args {
		out[i] = wireArg{Name: a.Name, Value: encodeExpr(a.Value)}
	}
	return out
}

func decodeArgs(was []wireArg) ([]ir.Arg, error) {
	if len(was) == 0 {
		return nil, nil
	}
	out := make([]ir.Arg, len(was))
	for i, wa := range was {
		v, err := decodeExpr(wa.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ir.Arg{Name: wa.Name, Value: v}
	}
	return out, nil
}

// wireExpr is the tagged union for ir.Expr.
type wireExpr struct {
	Kind string `json:"kind"`

	Value *wireValue `json:"value,omitempty"` // literal

	Segments   []wireSegment `json:"segments,omitempty"`    // varref
	ResultType *wireType     `json:"result_type,omitempty"` // varref/unary/binary/call/conditional

	Op      string    `json:"op,omitempty"` // unary/binary
	Operand *wireExpr `json:"operand,omitempty"`
	Left    *wireExpr `json:"left,omitempty"`
	Right   *wireExpr `json:"right,omitempty"`

	Callee string    `json:"callee,omitempty"` // call
	Args   []wireArg `json:"args,omitempty"`   // call/fbinvoke

	InstancePath []wireSegment `json:"instance_path,omitempty"` // fbinvoke

	Cond *wireExpr `json:"cond,omitempty"` // conditional
	Then *wireExpr `json:"then,omitempty"`
	Else *wireExpr `json:"else,omitempty"`

	EnumType *wireType `json:"enum_type,omitempty"` // enumref
	Variant  string    `json:"variant,omitempty"`
}

var unaryOpNames = map[ir.UnaryOp]string{ir.OpNeg: "neg", ir.OpNot: "not", ir.OpBitNot: "bitnot"}
var unaryOpByName = reverseUnaryOpNames()

func reverseUnaryOpNames() map[string]ir.UnaryOp {
	m := make(map[string]ir.UnaryOp, len(unaryOpNames))
	for k, v := range unaryOpNames {
		m[v] = k
	}
	return m
}

var binaryOpNames = map[ir.BinaryOp]string{
	ir.OpAdd: "add", ir.OpSub: "sub", ir.OpMul: "mul", ir.OpDiv: "div", ir.OpMod: "mod",
	ir.OpEq: "eq", ir.OpNeq: "neq", ir.OpLt: "lt", ir.OpLte: "lte", ir.OpGt: "gt", ir.OpGte: "gte",
	ir.OpAnd: "and", ir.OpOr: "or", ir.OpBitAnd: "bitand", ir.OpBitOr: "bitor", ir.OpBitXor: "bitxor",
}
var binaryOpByName = reverseBinaryOpNames()

func reverseBinaryOpNames() map[string]ir.BinaryOp {
	m := make(map[string]ir.BinaryOp, len(binaryOpNames))
	for k, v := range binaryOpNames {
		m[v] = k
	}
	return m
}

// exprEncoder implements ir.ExprVisitor, walking a real IR expression
// tree into its wireExpr shape — the same double-dispatch idiom
// internal/sim.Evaluator uses to walk the same trees for evaluation.
type exprEncoder struct{}

var theExprEncoder = &exprEncoder{}

func encodeExpr(e ir.Expr) *wireExpr {
	if e == nil {
		return nil
	}
	w := e.Accept(theExprEncoder).(wireExpr)
	return &w
}

func (x *exprEncoder) VisitLiteral(e *ir.Literal) interface{} {
	wv := valueToWire(e.Value)
	return wireExpr{Kind: "literal", Value: &wv}
}

func (x *exprEncoder) VisitVarRef(e *ir.VarRef) interface{} {
	return wireExpr{Kind: "varref", Segments: encodeSegments(e.Segments), ResultType: typeToWire(e.ResultType)}
}

func (x *exprEncoder) VisitUnary(e *ir.Unary) interface{} {
	return wireExpr{Kind: "unary", Op: unaryOpNames[e.Op], Operand: encodeExpr(e.Operand), ResultType: typeToWire(e.ResultType)}
}

func (x *exprEncoder) VisitBinary(e *ir.Binary) interface{} {
	return wireExpr{Kind: "binary", Op: binaryOpNames[e.Op], Left: encodeExpr(e.Left), Right: encodeExpr(e.Right), ResultType: typeToWire(e.ResultType)}
}

func (x *exprEncoder) VisitCall(e *ir.Call) interface{} {
	return wireExpr{Kind: "call", Callee: e.Callee, Args: encodeArgs(e.Args), ResultType: typeToWire(e.ResultType)}
}

func (x *exprEncoder) VisitFBInvoke(e *ir.FBInvoke) interface{} {
	return wireExpr{Kind: "fbinvoke", InstancePath: encodeSegments(e.InstancePath), Args: encodeArgs(e.Args)}
}

func (x *exprEncoder) VisitConditional(e *ir.Conditional) interface{} {
	return wireExpr{Kind: "conditional", Cond: encodeExpr(e.Cond), Then: encodeExpr(e.Then), Else: encodeExpr(e.Else), ResultType: typeToWire(e.ResultType)}
}

func (x *exprEncoder) VisitEnumRef(e *ir.EnumRef) interface{} {
	return wireExpr{Kind: "enumref", EnumType: typeToWire(e.EnumType), Variant: e.Variant}
}

func decodeExpr(w *wireExpr) (ir.Expr, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Kind {
	case "literal":
		if w.Value == nil {
			return nil, fmt.Errorf("store: literal expression missing value")
		}
		v, err := wireToValue(*w.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Literal{Value: v}, nil
	case "varref":
		segs, err := decodeSegments(w.Segments)
		if err != nil {
			return nil, err
		}
		t, err := wireToType(w.ResultType)
		if err != nil {
			return nil, err
		}
		return &ir.VarRef{Segments: segs, ResultType: t}, nil
	case "unary":
		op, ok := unaryOpByName[w.Op]
		if !ok {
			return nil, fmt.Errorf("store: unknown unary operator %q", w.Op)
		}
		operand, err := decodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		t, err := wireToType(w.ResultType)
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Op: op, Operand: operand, ResultType: t}, nil
	case "binary":
		op, ok := binaryOpByName[w.Op]
		if !ok {
			return nil, fmt.Errorf("store: unknown binary operator %q", w.Op)
		}
		l, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		t, err := wireToType(w.ResultType)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: op, Left: l, Right: r, ResultType: t}, nil
	case "call":
		args, err := decodeArgs(w.Args)
		if err != nil {
			return nil, err
		}
		t, err := wireToType(w.ResultType)
		if err != nil {
			return nil, err
		}
		return &ir.Call{Callee: w.Callee, Args: args, ResultType: t}, nil
	case "fbinvoke":
		path, err := decodeSegments(w.InstancePath)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs(w.Args)
		if err != nil {
			return nil, err
		}
		return &ir.FBInvoke{InstancePath: path, Args: args}, nil
	case "conditional":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		t, err := wireToType(w.ResultType)
		if err != nil {
			return nil, err
		}
		return &ir.Conditional{Cond: cond, Then: then, Else: els, ResultType: t}, nil
	case "enumref":
		t, err := wireToType(w.EnumType)
		if err != nil {
			return nil, err
		}
		enumT, ok := t.(*types.Enum)
		if !ok {
			return nil, fmt.Errorf("store: enumref %s type is not an enum", w.Variant)
		}
		return &ir.EnumRef{EnumType: enumT, Variant: w.Variant}, nil
	}
	return nil, fmt.Errorf("store: unknown expression kind %q", w.Kind)
}

type wireValueSet struct {
	Ints  []int64  `json:"ints,omitempty"`
	Enums []string `json:"enums,omitempty"`
}

type wireCaseArm struct {
	Values wireValueSet `json:"values"`
	Body   []wireStmt   `json:"body"`
}

type wireElseIf struct {
	Cond wireExpr   `json:"cond"`
	Body []wireStmt `json:"body"`
}

// wireStmt is the tagged union for ir.Stmt.
type wireStmt struct {
	Kind string `json:"kind"`

	Target *wireExpr `json:"target,omitempty"` // assign
	Value  *wireExpr `json:"value,omitempty"`  // assign/return

	Cond    *wireExpr    `json:"cond,omitempty"` // if/while/repeatuntil
	Then    []wireStmt   `json:"then,omitempty"` // if
	ElseIfs []wireElseIf `json:"else_ifs,omitempty"`
	Else    []wireStmt   `json:"else,omitempty"`

	Selector *wireExpr     `json:"selector,omitempty"` // case
	Arms     []wireCaseArm `json:"arms,omitempty"`
	Default  []wireStmt    `json:"default,omitempty"`

	Body []wireStmt `json:"body,omitempty"` // while/repeatuntil/for

	Induction string    `json:"induction,omitempty"` // for
	Lo        *wireExpr `json:"lo,omitempty"`
	Hi        *wireExpr `json:"hi,omitempty"`
	Step      *wireExpr `json:"step,omitempty"`

	InstancePath []wireSegment `json:"instance_path,omitempty"` // fbinvoke
	Args         []wireArg     `json:"args,omitempty"`
}

// stmtEncoder implements ir.StmtVisitor, mirroring internal/sim's
// Executor traversal of the same statement tree.
type stmtEncoder struct{}

var theStmtEncoder = &stmtEncoder{}

func encodeStmt(s ir.Stmt) wireStmt {
	return s.Accept(theStmtEncoder).(wireStmt)
}

func encodeStmts(ss []ir.Stmt) []wireStmt {
	out := make([]wireStmt, len(ss))
	for i, s := range ss {
		out[i] = encodeStmt(s)
	}
	return out
}

func (x *stmtEncoder) VisitAssign(s *ir.Assign) interface{} {
	return wireStmt{Kind: "assign", Target: encodeExpr(s.Target), Value: encodeExpr(s.Value)}
}

func (x *stmtEncoder) VisitIf(s *ir.If) interface{} {
	elifs := make([]wireElseIf, len(s.ElseIfs))
	for i, ei := range s.ElseIfs {
		elifs[i] = wireElseIf{Cond: *encodeExpr(ei.Cond), Body: encodeStmts(ei.Body)}
	}
	w := wireStmt{Kind: "if", Cond: encodeExpr(s.Cond), Then: encodeStmts(s.Then), ElseIfs: elifs}
	if s.Else != nil {
		w.Else = encodeStmts(s.Else)
	}
	return w
}

func (x *stmtEncoder) VisitCase(s *ir.Case) interface{} {
	arms := make([]wireCaseArm, len(s.Arms))
	for i, a := range s.Arms {
		arms[i] = wireCaseArm{Values: wireValueSet{Ints: a.Values.Ints, Enums: a.Values.Enums}, Body: encodeStmts(a.Body)}
	}
	w := wireStmt{Kind: "case", Selector: encodeExpr(s.Selector), Arms: arms}
	if s.Default != nil {
		w.Default = encodeStmts(s.Default)
	}
	return w
}

func (x *stmtEncoder) VisitWhile(s *ir.While) interface{} {
	return wireStmt{Kind: "while", Cond: encodeExpr(s.Cond), Body: encodeStmts(s.Body)}
}

func (x *stmtEncoder) VisitRepeatUntil(s *ir.RepeatUntil) interface{} {
	return wireStmt{Kind: "repeatuntil", Body: encodeStmts(s.Body), Cond: encodeExpr(s.Cond)}
}

func (x *stmtEncoder) VisitFor(s *ir.For) interface{} {
	return wireStmt{Kind: "for", Induction: s.Induction, Lo: encodeExpr(s.Lo), Hi: encodeExpr(s.Hi), Step: encodeExpr(s.Step), Body: encodeStmts(s.Body)}
}

func (x *stmtEncoder) VisitFBInvokeStmt(s *ir.FBInvokeStmt) interface{} {
	return wireStmt{Kind: "fbinvoke", InstancePath: encodeSegments(s.Invoke.InstancePath), Args: encodeArgs(s.Invoke.Args)}
}

func (x *stmtEncoder) VisitReturn(s *ir.Return) interface{} {
	return wireStmt{Kind: "return", Value: encodeExpr(s.Value)}
}

func (x *stmtEncoder) VisitNop(s *ir.Nop) interface{} {
	return wireStmt{Kind: "nop"}
}

func decodeStmt(w wireStmt) (ir.Stmt, error) {
	switch w.Kind {
	case "assign":
		t, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		tref, ok := t.(*ir.VarRef)
		if !ok {
			return nil, fmt.Errorf("store: assign target is not a variable reference")
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Assign{Target: tref, Value: v}, nil
	case "if":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(w.Then)
		if err != nil {
			return nil, err
		}
		elifs := make([]ir.ElseIf, len(w.ElseIfs))
		for i := range w.ElseIfs {
			c, err := decodeExpr(&w.ElseIfs[i].Cond)
			if err != nil {
				return nil, err
			}
			b, err := decodeStmts(w.ElseIfs[i].Body)
			if err != nil {
				return nil, err
			}
			elifs[i] = ir.ElseIf{Cond: c, Body: b}
		}
		var els []ir.Stmt
		if w.Else != nil {
			els, err = decodeStmts(w.Else)
			if err != nil {
				return nil, err
			}
		}
		return &ir.If{Cond: cond, Then: then, ElseIfs: elifs, Else: els}, nil
	case "case":
		sel, err := decodeExpr(w.Selector)
		if err != nil {
			return nil, err
		}
		arms := make([]ir.CaseArm, len(w.Arms))
		for i, wa := range w.Arms {
			b, err := decodeStmts(wa.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = ir.CaseArm{Values: ir.ValueSet{Ints: wa.Values.Ints, Enums: wa.Values.Enums}, Body: b}
		}
		var def []ir.Stmt
		if w.Default != nil {
			def, err = decodeStmts(w.Default)
			if err != nil {
				return nil, err
			}
		}
		return &ir.Case{Selector: sel, Arms: arms, Default: def}, nil
	case "while":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &ir.While{Cond: cond, Body: body}, nil
	case "repeatuntil":
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		return &ir.RepeatUntil{Body: body, Cond: cond}, nil
	case "for":
		lo, err := decodeExpr(w.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := decodeExpr(w.Hi)
		if err != nil {
			return nil, err
		}
		step, err := decodeExpr(w.Step)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &ir.For{Induction: w.Induction, Lo: lo, Hi: hi, Step: step, Body: body}, nil
	case "fbinvoke":
		path, err := decodeSegments(w.InstancePath)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs(w.Args)
		if err != nil {
			return nil, err
		}
		return &ir.FBInvokeStmt{Invoke: &ir.FBInvoke{InstancePath: path, Args: args}}, nil
	case "return":
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Return{Value: v}, nil
	case "nop":
		return &ir.Nop{}, nil
	}
	return nil, fmt.Errorf("store: unknown statement kind %q", w.Kind)
}

func decodeStmts(ws []wireStmt) ([]ir.Stmt, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]ir.Stmt, len(ws))
	for i, w := range ws {
		s, err := decodeStmt(w)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

type wireStep struct {
	Name    string     `json:"name"`
	Initial bool       `json:"initial,omitempty"`
	Actions []wireStmt `json:"actions,omitempty"`
}

type wireTransition struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Condition wireExpr `json:"condition"`
}

type wireChart struct {
	Steps       []wireStep       `json:"steps"`
	Transitions []wireTransition `json:"transitions"`
}

func encodeChart(c *ir.Chart) *wireChart {
	if c == nil {
		return nil
	}
	steps := make([]wireStep, len(c.Steps))
	for i, s := range c.Steps {
		steps[i] = wireStep{Name: s.Name, Initial: s.Initial, Actions: encodeStmts(s.Actions)}
	}
	trans := make([]wireTransition, len(c.Transitions))
	for i, t := range c.Transitions {
		trans[i] = wireTransition{Source: t.Source, Target: t.Target, Condition: *encodeExpr(t.Condition)}
	}
	return &wireChart{Steps: steps, Transitions: trans}
}

func decodeChart(w *wireChart) (*ir.Chart, error) {
	if w == nil {
		return nil, nil
	}
	steps := make([]ir.Step, len(w.Steps))
	for i, ws := range w.Steps {
		actions, err := decodeStmts(ws.Actions)
		if err != nil {
			return nil, err
		}
		steps[i] = ir.Step{Name: ws.Name, Initial: ws.Initial, Actions: actions}
	}
	trans := make([]ir.Transition, len(w.Transitions))
	for i := range w.Transitions {
		cond, err := decodeExpr(&w.Transitions[i].Condition)
		if err != nil {
			return nil, err
		}
		trans[i] = ir.Transition{Source: w.Transitions[i].Source, Target: w.Transitions[i].Target, Condition: cond}
	}
	return &ir.Chart{Steps: steps, Transitions: trans}, nil
}

type wireVar struct {
	Name        string     `json:"name"`
	Type        *wireType  `json:"type"`
	Initial     *wireValue `json:"initial,omitempty"`
	Description string     `json:"description,omitempty"`
}

func encodeVar(v ir.Variable) wireVar {
	wv := wireVar{Name: v.Name, Type: typeToWire(v.Type), Description: v.Description}
	if v.Initial != nil {
		iv := valueToWire(*v.Initial)
		wv.Initial = &iv
	}
	return wv
}

func decodeVar(w wireVar) (ir.Variable, error) {
	t, err := wireToType(w.Type)
	if err != nil {
		return ir.Variable{}, err
	}
	v := ir.Variable{Name: w.Name, Type: t, Description: w.Description}
	if w.Initial != nil {
		iv, err := wireToValue(*w.Initial)
		if err != nil {
			return ir.Variable{}, err
		}
		v.Initial = &iv
	}
	return v, nil
}

type wireBlock struct {
	Role string    `json:"role"`
	Vars []wireVar `json:"vars"`
}

var roleByName = map[string]ir.Role{
	"input": ir.RoleInput, "output": ir.RoleOutput, "inout": ir.RoleInOut,
	"local": ir.RoleLocal, "temp": ir.RoleTemp, "constant": ir.RoleConstant,
}

func encodeBlock(b ir.DeclBlock) wireBlock {
	vars := make([]wireVar, len(b.Vars))
	for i, v := range b.Vars {
		vars[i] = encodeVar(v)
	}
	return wireBlock{Role: b.Role.String(), Vars: vars}
}

func decodeBlock(w wireBlock) (ir.DeclBlock, error) {
	role, ok := roleByName[w.Role]
	if !ok {
		return ir.DeclBlock{}, fmt.Errorf("store: unknown variable role %q", w.Role)
	}
	vars := make([]ir.Variable, len(w.Vars))
	for i, wv := range w.Vars {
		v, err := decodeVar(wv)
		if err != nil {
			return ir.DeclBlock{}, err
		}
		vars[i] = v
	}
	return ir.DeclBlock{Role: role, Vars: vars}, nil
}

var pouKindByName = map[string]ir.Kind{
	"FUNCTION": ir.KindFunction, "FUNCTION_BLOCK": ir.KindFunctionBlock, "PROGRAM": ir.KindProgram,
}

type wirePOU struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Parent     string      `json:"parent,omitempty"`
	Blocks     []wireBlock `json:"blocks"`
	Body       []wireStmt  `json:"body,omitempty"`
	Chart      *wireChart  `json:"chart,omitempty"`
	Methods    []wirePOU   `json:"methods,omitempty"`
	ReturnType *wireType   `json:"return_type,omitempty"`
}

// encodePOU renders p and, recursively, its Methods children. Methods
// are always empty in the current codebase (nothing populates
// ir.POU.Methods yet), so a method referencing a Parent outside its
// own POU's method list is not a case this round-trips against — the
// same limitation Flatten already has for nested function-block
// methods.
func encodePOU(p *ir.POU) wirePOU {
	blocks := make([]wireBlock, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = encodeBlock(b)
	}
	w := wirePOU{Name: p.Name, Kind: p.Kind.String(), Blocks: blocks, ReturnType: typeToWire(p.ReturnType)}
	if p.Parent != nil {
		w.Parent = p.Parent.Name
	}
	if p.Chart != nil {
		w.Chart = encodeChart(p.Chart)
	} else {
		w.Body = encodeStmts(p.Body)
	}
	if len(p.Methods) > 0 {
		w.Methods = make([]wirePOU, len(p.Methods))
		for i, m := range p.Methods {
			w.Methods[i] = encodePOU(m)
		}
	}
	return w
}

// decodePOU resolves Parent against pouByName, which the caller fills
// in document order — the same "parent declared before child" order
// internal/build.Builder.Compile already requires of a manifest.
func decodePOU(w wirePOU, pouByName map[string]*ir.POU) (*ir.POU, error) {
	kind, ok := pouKindByName[w.Kind]
	if !ok {
		return nil, fmt.Errorf("store: unknown POU kind %q", w.Kind)
	}
	blocks := make([]ir.DeclBlock, len(w.Blocks))
	for i, wb := range w.Blocks {
		b, err := decodeBlock(wb)
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}
	var parent *ir.POU
	if w.Parent != "" {
		parent, ok = pouByName[w.Parent]
		if !ok {
			return nil, fmt.Errorf("store: POU %s references undeclared parent %q", w.Name, w.Parent)
		}
	}
	retType, err := wireToType(w.ReturnType)
	if err != nil {
		return nil, err
	}
	p := &ir.POU{Name: w.Name, Kind: kind, Blocks: blocks, Parent: parent, ReturnType: retType}
	if w.Chart != nil {
		chart, err := decodeChart(w.Chart)
		if err != nil {
			return nil, err
		}
		p.Chart = chart
	} else {
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		p.Body = body
	}
	if len(w.Methods) > 0 {
		p.Methods = make([]*ir.POU, len(w.Methods))
		for i, wm := range w.Methods {
			m, err := decodePOU(wm, pouByName)
			if err != nil {
				return nil, err
			}
			p.Methods[i] = m
		}
	}
	return p, nil
}

var scheduleKindNames = map[ir.ScheduleKind]string{
	ir.SchedulePeriodic: "periodic", ir.ScheduleEvent: "event", ir.ScheduleContinuous: "continuous",
}
var scheduleKindByName = map[string]ir.ScheduleKind{
	"periodic": ir.SchedulePeriodic, "event": ir.ScheduleEvent, "continuous": ir.ScheduleContinuous,
}

type wireTask struct {
	Name     string   `json:"name"`
	Schedule string   `json:"schedule"`
	PeriodNs int64    `json:"period_ns,omitempty"`
	Source   string   `json:"source,omitempty"`
	Priority *int     `json:"priority,omitempty"`
	PouRefs  []string `json:"pou_refs"`
}

func encodeTask(t ir.Task) wireTask {
	wt := wireTask{Name: t.Name, Schedule: scheduleKindNames[t.Schedule.Kind], Priority: t.Priority, PouRefs: t.PouRefs}
	switch t.Schedule.Kind {
	case ir.SchedulePeriodic:
		wt.PeriodNs = int64(t.Schedule.Period)
	case ir.ScheduleEvent:
		wt.Source = t.Schedule.Source
	}
	return wt
}

func decodeTask(w wireTask) (ir.Task, error) {
	kind, ok := scheduleKindByName[w.Schedule]
	if !ok {
		return ir.Task{}, fmt.Errorf("store: unknown task schedule %q", w.Schedule)
	}
	sched := ir.Schedule{Kind: kind}
	switch kind {
	case ir.SchedulePeriodic:
		sched.Period = types.Duration(w.PeriodNs)
	case ir.ScheduleEvent:
		sched.Source = w.Source
	}
	return ir.Task{Name: w.Name, Schedule: sched, Priority: w.Priority, PouRefs: w.PouRefs}, nil
}

type wireGlobal struct {
	Name string    `json:"name"`
	Vars []wireVar `json:"vars"`
}

func encodeGlobal(g ir.GlobalBlock) wireGlobal {
	vars := make([]wireVar, len(g.Vars))
	for i, v := range g.Vars {
		vars[i] = encodeVar(v)
	}
	return wireGlobal{Name: g.Name, Vars: vars}
}

func decodeGlobal(w wireGlobal) (ir.GlobalBlock, error) {
	vars := make([]ir.Variable, len(w.Vars))
	for i, wv := range w.Vars {
		v, err := decodeVar(wv)
		if err != nil {
			return ir.GlobalBlock{}, err
		}
		vars[i] = v
	}
	return ir.GlobalBlock{Name: w.Name, Vars: vars}, nil
}

// projectToDocument renders proj's full IR into Document's wire shape
// (§6.3).
func projectToDocument(proj *ir.Project) Document {
	doc := Document{SchemaVersion: CurrentSchemaVersion, Name: proj.Name}
	for _, t := range proj.Tasks {
		doc.Tasks = append(doc.Tasks, encodeTask(t))
	}
	for _, p := range proj.Pous {
		doc.Pous = append(doc.Pous, encodePOU(p))
	}
	for _, dt := range proj.DataTypes {
		if w := typeToWire(dt); w != nil {
			doc.DataTypes = append(doc.DataTypes, *w)
		}
	}
	for _, g := range proj.Globals {
		doc.Globals = append(doc.Globals, encodeGlobal(g))
	}
	return doc
}

// documentToProject reconstructs a *ir.Project from doc, the inverse
// of projectToDocument (§6.3 "serialize∘deserialize is the identity").
func documentToProject(doc Document) (*ir.Project, error) {
	proj := &ir.Project{Name: doc.Name}
	pouByName := map[string]*ir.POU{}
	for _, wp := range doc.Pous {
		p, err := decodePOU(wp, pouByName)
		if err != nil {
			return nil, err
		}
		pouByName[p.Name] = p
		proj.Pous = append(proj.Pous, p)
	}
	for _, wt := range doc.Tasks {
		t, err := decodeTask(wt)
		if err != nil {
			return nil, err
		}
		proj.Tasks = append(proj.Tasks, t)
	}
	for i := range doc.DataTypes {
		t, err := wireToType(&doc.DataTypes[i])
		if err != nil {
			return nil, err
		}
		proj.DataTypes = append(proj.DataTypes, t)
	}
	for _, wg := range doc.Globals {
		g, err := decodeGlobal(wg)
		if err != nil {
			return nil, err
		}
		proj.Globals = append(proj.Globals, g)
	}
	return proj, nil
}

// Package ir implements plx's Universal IR (component B): a strongly
// typed, vendor-neutral model of IEC 61131-3 expressions, statements,
// POU bodies, Sequential Function Charts, and task/project containers.
//
// The node shape and visitor-dispatch idiom follow the teacher's
// internal/parser/ast.go and internal/parser/stmt.go: every node is a
// small struct implementing Accept(visitor), and the visitor interfaces
// are closed over the full set of node kinds so a pass can dispatch by
// double dispatch; the structural Walk helpers (walk.go) use a type
// switch instead.
package ir

import "plx/internal/types"

// Expr is the tagged algebraic set of IR expressions (§3.2).
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Type() types.Type
}

// Literal is a typed literal value.
type Literal struct {
	Value types.Value
}

func (l *Literal) Accept(v ExprVisitor) interface{} { return v.VisitLiteral(l) }
func (l *Literal) Type() types.Type                 { return l.Value.Type }

// PathSegment is one link of a variable-reference path: a field
// access, an array index, or a pointer dereference (§3.2).
type PathSegment interface {
	isPathSegment()
}

// FieldSegment accesses a struct field or a plain variable name (the
// first segment of every path is always a FieldSegment naming a
// declared variable).
type FieldSegment struct {
	Name string
}

func (*FieldSegment) isPathSegment() {}

// IndexSegment indexes into an array with one expression per
// dimension.
type IndexSegment struct {
	Indices []Expr
}

func (*IndexSegment) isPathSegment() {}

// DerefSegment dereferences a pointer.
type DerefSegment struct{}

func (*DerefSegment) isPathSegment() {}

// VarRef is a variable-reference path: one or more segments, each a
// field access, array index, or dereference (§3.2).
type VarRef struct {
	Segments  []PathSegment
	ResultType types.Type
}

func (r *VarRef) Accept(v ExprVisitor) interface{} { return v.VisitVarRef(r) }
func (r *VarRef) Type() types.Type                 { return r.ResultType }

// RootName returns the variable name the path begins at.
func (r *VarRef) RootName() string {
	if len(r.Segments) == 0 {
		return ""
	}
	if f, ok := r.Segments[0].(*FieldSegment); ok {
		return f.Name
	}
	return ""
}

// UnaryOp tags a unary operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

// Unary is a unary expression: neg, not, bit-not (§3.2).
type Unary struct {
	Op         UnaryOp
	Operand    Expr
	ResultType types.Type
}

func (u *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(u) }
func (u *Unary) Type() types.Type                 { return u.ResultType }

// BinaryOp tags a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd // short-circuit logical and
	OpOr  // short-circuit logical or
	OpBitAnd
	OpBitOr
	OpBitXor
)

// Binary is a binary expression: arithmetic, comparison, short-circuit
// logical and/or, or bitwise (§3.2).
type Binary struct {
	Op         BinaryOp
	Left       Expr
	Right      Expr
	ResultType types.Type
}

func (b *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(b) }
func (b *Binary) Type() types.Type                 { return b.ResultType }

// IsShortCircuit reports whether the operator must not evaluate its
// right operand unless necessary.
func (b *Binary) IsShortCircuit() bool { return b.Op == OpAnd || b.Op == OpOr }

// Arg is one argument of a Call or FBInvoke: either positional (Name
// empty) or named.
type Arg struct {
	Name  string // empty for positional
	Value Expr
}

// Call is a function call: callable by name, positional and named
// arguments (§3.2). Functions are stateless and return a typed value.
type Call struct {
	Callee     string
	Args       []Arg
	ResultType types.Type
}

func (c *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(c) }
func (c *Call) Type() types.Type                 { return c.ResultType }

// FBInvoke is a function-block invocation expression form: invoking an
// instance writes its inputs and returns nothing directly — outputs are
// read via a subsequent VarRef onto the instance (§3.2). It appears as
// an Expr only inside FBInvokeStmt; it is never nested inside another
// expression.
type FBInvoke struct {
	InstancePath []PathSegment
	Args         []Arg
}

func (f *FBInvoke) Accept(v ExprVisitor) interface{} { return v.VisitFBInvoke(f) }
func (f *FBInvoke) Type() types.Type                 { return nil }

// Conditional is a ternary conditional expression.
type Conditional struct {
	Cond       Expr
	Then       Expr
	Else       Expr
	ResultType types.Type
}

func (c *Conditional) Accept(v ExprVisitor) interface{} { return v.VisitConditional(c) }
func (c *Conditional) Type() types.Type                 { return c.ResultType }

// EnumRef references a single enum variant by name.
type EnumRef struct {
	EnumType *types.Enum
	Variant  string
}

func (e *EnumRef) Accept(v ExprVisitor) interface{} { return v.VisitEnumRef(e) }
func (e *EnumRef) Type() types.Type                 { return e.EnumType }

// ExprVisitor dispatches over every expression kind (§4.3 "structural
// visitor protocol").
type ExprVisitor interface {
	VisitLiteral(e *Literal) interface{}
	VisitVarRef(e *VarRef) interface{}
	VisitUnary(e *Unary) interface{}
	VisitBinary(e *Binary) interface{}
	VisitCall(e *Call) interface{}
	VisitFBInvoke(e *FBInvoke) interface{}
	VisitConditional(e *Conditional) interface{}
	VisitEnumRef(e *EnumRef) interface{}
}

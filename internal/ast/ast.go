// Package ast defines the authored-source AST contract (§6.1): the
// tree shape plx's lowering pass (internal/lowering) assumes the host
// language's textual parser hands it. The parser itself is an external
// collaborator (§1, out of scope); this package only fixes the shape,
// following the teacher's internal/parser/ast.go and
// internal/parser/stmt.go: every node is a small struct implementing
// Accept(visitor), dispatched through closed ExprVisitor/StmtVisitor
// interfaces.
package ast

// Position is a source location; call sites carry it for diagnostics
// and for sentinel instance-name stability (§4.2 step 5, §6.1).
type Position struct {
	File   string
	Line   int
	Column int
}

// Expr is the authored-source expression tree.
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Pos() Position
}

// Literal is a literal token: int64, float64, bool, or string.
type Literal struct {
	At    Position
	Value interface{}
}

func (l *Literal) Accept(v ExprVisitor) interface{} { return v.VisitLiteral(l) }
func (l *Literal) Pos() Position                    { return l.At }

// Name is a bare identifier reference.
type Name struct {
	At   Position
	Ident string
}

func (n *Name) Accept(v ExprVisitor) interface{} { return v.VisitName(n) }
func (n *Name) Pos() Position                    { return n.At }

// SelfAttr is `self.X`: resolves to the enclosing POU's variable X
// (§4.2 step 3).
type SelfAttr struct {
	At   Position
	Attr string
}

func (s *SelfAttr) Accept(v ExprVisitor) interface{} { return v.VisitSelfAttr(s) }
func (s *SelfAttr) Pos() Position                    { return s.At }

// Attr is a general attribute/field access `object.Name`.
type Attr struct {
	At     Position
	Object Expr
	Name   string
}

func (a *Attr) Accept(v ExprVisitor) interface{} { return v.VisitAttr(a) }
func (a *Attr) Pos() Position                    { return a.At }

// Index is a subscript access `object[index]`.
type Index struct {
	At     Position
	Object Expr
	Index  Expr
}

func (i *Index) Accept(v ExprVisitor) interface{} { return v.VisitIndex(i) }
func (i *Index) Pos() Position                    { return i.At }

// Unary is a prefix unary expression: "-", "not", "~".
type Unary struct {
	At      Position
	Op      string
	Operand Expr
}

func (u *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(u) }
func (u *Unary) Pos() Position                    { return u.At }

// Binary is an infix binary expression: arithmetic, comparison,
// bitwise, or boolean "and"/"or" (§4.2 step 4).
type Binary struct {
	At    Position
	Op    string
	Left  Expr
	Right Expr
}

func (b *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(b) }
func (b *Binary) Pos() Position                    { return b.At }

// Arg is one call argument: positional (Name empty) or named.
type Arg struct {
	Name  string
	Value Expr
}

// Call is a function/method/sentinel call: `callee(args...)` or
// `object.method(args...)`. Callee is either a *Name (bare function or
// sentinel call) or an *Attr/*SelfAttr (function-block instance
// invocation, e.g. `self.timer.call(...)`) — internal/lowering
// disambiguates by looking up Callee's resolved kind.
type Call struct {
	At     Position
	Callee Expr
	Args   []Arg
}

func (c *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(c) }
func (c *Call) Pos() Position                    { return c.At }

// Conditional is a ternary expression `then if cond else other`.
type Conditional struct {
	At   Position
	Cond Expr
	Then Expr
	Else Expr
}

func (c *Conditional) Accept(v ExprVisitor) interface{} { return v.VisitConditional(c) }
func (c *Conditional) Pos() Position                    { return c.At }

// ExprVisitor dispatches over every authored-source expression kind.
type ExprVisitor interface {
	VisitLiteral(e *Literal) interface{}
	VisitName(e *Name) interface{}
	VisitSelfAttr(e *SelfAttr) interface{}
	VisitAttr(e *Attr) interface{}
	VisitIndex(e *Index) interface{}
	VisitUnary(e *Unary) interface{}
	VisitBinary(e *Binary) interface{}
	VisitCall(e *Call) interface{}
	VisitConditional(e *Conditional) interface{}
}

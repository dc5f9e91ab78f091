package ast

// This file is the builder API design notes (§9) anticipate for the
// authoring layer when no external textual parser is wired in —
// primarily exercised by internal/lowering's tests. It favors brevity
// over generality: one free function per node kind, synthetic
// positions default to line 0 since builder-constructed trees have no
// real file.

func Lit(v interface{}) *Literal    { return &Literal{Value: v} }
func Ident(name string) *Name       { return &Name{Ident: name} }
func Self(attr string) *SelfAttr    { return &SelfAttr{Attr: attr} }
func Dot(obj Expr, name string) *Attr { return &Attr{Object: obj, Name: name} }
func Idx(obj, index Expr) *Index    { return &Index{Object: obj, Index: index} }

func Un(op string, operand Expr) *Unary { return &Unary{Op: op, Operand: operand} }
func Bin(op string, l, r Expr) *Binary  { return &Binary{Op: op, Left: l, Right: r} }

func Pos(name string, args ...Expr) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = Arg{Value: a}
	}
	return out
}

func Named(name string, value Expr) Arg { return Arg{Name: name, Value: value} }

func CallFn(callee Expr, args ...Arg) *Call { return &Call{Callee: callee, Args: args} }

func Assign(target, value Expr) *AssignStmt  { return &AssignStmt{Target: target, Value: value} }
func ExprS(e Expr) *ExprStmt                 { return &ExprStmt{Expr: e} }
func Ret(v Expr) *ReturnStmt                 { return &ReturnStmt{Value: v} }
func Pass() *PassStmt                        { return &PassStmt{} }
func SuperLogic() *SuperCallStmt             { return &SuperCallStmt{} }

func If(cond Expr, then []Stmt, elifs []ElifClause, els []Stmt) *IfStmt {
	return &IfStmt{Cond: cond, Then: then, Elifs: elifs, Else: els}
}

func While(cond Expr, body []Stmt) *WhileStmt { return &WhileStmt{Cond: cond, Body: body} }

func ForRange(v string, lo, hi, step Expr, body []Stmt) *ForRangeStmt {
	return &ForRangeStmt{Var: v, Lo: lo, Hi: hi, Step: step, Body: body}
}

func Match(sel Expr, cases []MatchCase) *MatchStmt {
	return &MatchStmt{Selector: sel, Cases: cases}
}

package ir

// Walker receives pre-order and post-order callbacks as Walk descends
// through a statement/expression tree (§4.3 "structural visitor
// protocol ... supports passes"). Either callback may be nil.
type Walker struct {
	PreStmt  func(Stmt)
	PostStmt func(Stmt)
	PreExpr  func(Expr)
	PostExpr func(Expr)
}

// WalkStmts walks an ordered statement list, visiting every child
// exactly once (§8 universal invariant 1).
func WalkStmts(w *Walker, stmts []Stmt) {
	for _, s := range stmts {
		WalkStmt(w, s)
	}
}

// WalkStmt walks a single statement and its nested statements/
// expressions.
func WalkStmt(w *Walker, s Stmt) {
	if s == nil {
		return
	}
	if w.PreStmt != nil {
		w.PreStmt(s)
	}
	switch st := s.(type) {
	case *Assign:
		WalkExpr(w, st.Target)
		WalkExpr(w, st.Value)
	case *If:
		WalkExpr(w, st.Cond)
		WalkStmts(w, st.Then)
		for _, ei := range st.ElseIfs {
			WalkExpr(w, ei.Cond)
			WalkStmts(w, ei.Body)
		}
		WalkStmts(w, st.Else)
	case *Case:
		WalkExpr(w, st.Selector)
		for _, arm := range st.Arms {
			WalkStmts(w, arm.Body)
		}
		WalkStmts(w, st.Default)
	case *While:
		WalkExpr(w, st.Cond)
		WalkStmts(w, st.Body)
	case *RepeatUntil:
		WalkStmts(w, st.Body)
		WalkExpr(w, st.Cond)
	case *For:
		WalkExpr(w, st.Lo)
		WalkExpr(w, st.Hi)
		if st.Step != nil {
			WalkExpr(w, st.Step)
		}
		WalkStmts(w, st.Body)
	case *FBInvokeStmt:
		WalkExpr(w, st.Invoke)
	case *Return:
		if st.Value != nil {
			WalkExpr(w, st.Value)
		}
	case *Nop:
		// no children
	}
	if w.PostStmt != nil {
		w.PostStmt(s)
	}
}

// WalkExpr walks a single expression and its children.
func WalkExpr(w *Walker, e Expr) {
	if e == nil {
		return
	}
	if w.PreExpr != nil {
		w.PreExpr(e)
	}
	switch ex := e.(type) {
	case *Literal, *EnumRef:
		// leaves
	case *VarRef:
		for _, seg := range ex.Segments {
			if idx, ok := seg.(*IndexSegment); ok {
				for _, ix := range idx.Indices {
					WalkExpr(w, ix)
				}
			}
		}
	case *Unary:
		WalkExpr(w, ex.Operand)
	case *Binary:
		WalkExpr(w, ex.Left)
		WalkExpr(w, ex.Right)
	case *Call:
		for _, a := range ex.Args {
			WalkExpr(w, a.Value)
		}
	case *FBInvoke:
		for _, seg := range ex.InstancePath {
			if idx, ok := seg.(*IndexSegment); ok {
				for _, ix := range idx.Indices {
					WalkExpr(w, ix)
				}
			}
		}
		for _, a := range ex.Args {
			WalkExpr(w, a.Value)
		}
	case *Conditional:
		WalkExpr(w, ex.Cond)
		WalkExpr(w, ex.Then)
		WalkExpr(w, ex.Else)
	}
	if w.PostExpr != nil {
		w.PostExpr(e)
	}
}

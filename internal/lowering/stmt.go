package lowering

import (
	"fmt"

	"plx/internal/ast"
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// lowerBody lowers an ordered authored-source statement list into IR
// (§4.2 step 4), threading the pre-statements sentinel expansion
// produces (§4.2 step 5) in between.
func (c *Context) lowerBody(stmts []ast.Stmt) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range stmts {
		out = append(out, c.lowerStmt(s)...)
	}
	return out
}

func (c *Context) lowerStmt(s ast.Stmt) []ir.Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return c.lowerAssign(st)
	case *ast.ExprStmt:
		return c.lowerExprStmt(st)
	case *ast.IfStmt:
		return []ir.Stmt{c.lowerIf(st)}
	case *ast.MatchStmt:
		return c.lowerMatch(st)
	case *ast.WhileStmt:
		return []ir.Stmt{c.lowerWhile(st)}
	case *ast.ForRangeStmt:
		return []ir.Stmt{c.lowerForRange(st)}
	case *ast.SuperCallStmt:
		// Expanded by the flattening pass (internal/lowering/flatten.go),
		// not by statement lowering directly; a marker statement carries
		// it through until flattening runs.
		return []ir.Stmt{&superCallMarker{}}
	case *ast.ReturnStmt:
		return []ir.Stmt{c.lowerReturn(st)}
	case *ast.PassStmt:
		return []ir.Stmt{&ir.Nop{}}
	}
	c.errorf(diag.SyntaxUnsupported, s.Pos(), "unsupported statement form %T", s)
	return nil
}

func (c *Context) lowerAssign(a *ast.AssignStmt) []ir.Stmt {
	target, tpre := c.lowerExpr(a.Target)
	value, vpre := c.lowerExpr(a.Value)
	pre := append(tpre, vpre...)

	ref, ok := target.(*ir.VarRef)
	if !ok {
		c.errorf(diag.NameUnresolved, a.Pos(), "assignment target is not a variable path")
		return pre
	}
	if root := ref.RootName(); root != "" && !c.Writable[root] {
		c.errorf(diag.TypeMismatch, a.Pos(), "%q is not writable in this context", root)
	}
	if !types.AssignableFrom(ref.Type(), value.Type()) {
		c.errorf(diag.TypeMismatch, a.Pos(), "cannot assign value of type %s to %q of type %s",
			value.Type(), ref.RootName(), ref.Type())
	}
	return append(pre, &ir.Assign{Target: ref, Value: value})
}

func (c *Context) lowerExprStmt(e *ast.ExprStmt) []ir.Stmt {
	call, ok := e.Expr.(*ast.Call)
	if !ok {
		// A bare non-call expression statement has no side effect in
		// this language subset.
		_, pre := c.lowerExpr(e.Expr)
		return pre
	}
	name, isBareName := calleeName(call.Callee)
	if isBareName {
		if kind, ok := IsSentinel(name); ok {
			_, pre := c.lowerSentinelCall(kind, call)
			return pre
		}
		if instType, ok := c.Vars[name]; ok {
			return []ir.Stmt{c.lowerFBInvokeStmt(name, instType, call)}
		}
	}
	if attr, ok := call.Callee.(*ast.Attr); ok {
		if base, isVar := attr.Object.(*ast.SelfAttr); isVar {
			if instType, ok := c.Vars[base.Attr]; ok {
				return []ir.Stmt{c.lowerFBInvokeStmtPath([]string{base.Attr, attr.Name}, instType, call)}
			}
		}
	}
	_, pre := c.lowerCallExpr(call)
	return pre
}

func (c *Context) lowerFBInvokeStmt(instName string, instType types.Type, call *ast.Call) ir.Stmt {
	return c.lowerFBInvokeStmtPath([]string{instName}, instType, call)
}

func (c *Context) lowerFBInvokeStmtPath(path []string, instType types.Type, call *ast.Call) ir.Stmt {
	fb, ok := instType.(*types.FBInstance)
	if !ok {
		c.errorf(diag.TypeMismatch, call.Pos(), "%q is not a function-block instance", path[len(path)-1])
		return &ir.Nop{}
	}
	sig, ok := c.Registry.FB(fb.FBName)
	if !ok {
		c.errorf(diag.NameUnresolved, call.Pos(), "unknown function-block type %q", fb.FBName)
	}
	args := make([]ir.Arg, 0, len(call.Args))
	for _, a := range call.Args {
		if a.Name == "" {
			c.errorf(diag.SyntaxUnsupported, call.Pos(), "function-block invocations require named arguments")
			continue
		}
		if _, known := sig.Inputs[a.Name]; !known {
			c.errorf(diag.NameUnresolved, call.Pos(), "%s has no input %q", fb.FBName, a.Name)
		}
		v, _ := c.lowerExpr(a.Value)
		args = append(args, ir.Arg{Name: a.Name, Value: v})
	}
	segs := make([]ir.PathSegment, len(path))
	for i, p := range path {
		segs[i] = &ir.FieldSegment{Name: p}
	}
	return &ir.FBInvokeStmt{Invoke: &ir.FBInvoke{InstancePath: segs, Args: args}}
}

func (c *Context) lowerIf(i *ast.IfStmt) ir.Stmt {
	cond, pre := c.lowerExpr(i.Cond)
	if !types.IsBoolean(cond.Type()) {
		c.errorf(diag.TypeMismatch, i.Pos(), "if condition must be boolean")
	}
	then := append(pre, c.lowerBody(i.Then)...)

	var elifs []ir.ElseIf
	for _, e := range i.Elifs {
		ec, epre := c.lowerExpr(e.Cond)
		if !types.IsBoolean(ec.Type()) {
			c.errorf(diag.TypeMismatch, i.Pos(), "elif condition must be boolean")
		}
		body := append(epre, c.lowerBody(e.Body)...)
		elifs = append(elifs, ir.ElseIf{Cond: ec, Body: body})
	}
	var els []ir.Stmt
	if i.Else != nil {
		els = c.lowerBody(i.Else)
	}
	return &ir.If{Cond: cond, Then: then, ElseIfs: elifs, Else: els}
}

func (c *Context) lowerMatch(m *ast.MatchStmt) []ir.Stmt {
	sel, pre := c.lowerExpr(m.Selector)
	if !types.IsIntegerOrEnum(sel.Type()) {
		c.errorf(diag.SyntaxUnsupported, m.Pos(), "match selector must be an integer or enum value")
	}
	enumType, isEnum := sel.Type().(*types.Enum)

	var arms []ir.CaseArm
	var def []ir.Stmt
	for _, mc := range m.Cases {
		if mc.Wildcard {
			def = c.lowerBody(mc.Body)
			continue
		}
		var vs ir.ValueSet
		switch p := mc.Pattern.(type) {
		case *ast.Literal:
			if iv, ok := p.Value.(int64); ok {
				vs.Ints = []int64{iv}
			} else {
				c.errorf(diag.SyntaxUnsupported, m.Pos(), "match pattern must be an integer or enum literal")
			}
		case *ast.Attr:
			if isEnum {
				vs.Enums = []string{p.Name}
			} else {
				c.errorf(diag.SyntaxUnsupported, m.Pos(), "enum pattern used against a non-enum selector")
			}
		default:
			c.errorf(diag.SyntaxUnsupported, m.Pos(), "unsupported match pattern")
		}
		arms = append(arms, ir.CaseArm{Values: vs, Body: c.lowerBody(mc.Body)})
	}

	caseStmt, cerr := ir.NewCase(sel, arms, def)
	if cerr != nil {
		c.Errors.Add(cerr)
		return pre
	}
	if isEnum && def == nil {
		covered := map[string]bool{}
		for _, a := range arms {
			for _, e := range a.Values.Enums {
				covered[e] = true
			}
		}
		for _, v := range enumType.Variants {
			if !covered[v.Name] {
				// Non-exhaustive enum selectors are a warning, not an
				// error (§4.2 step 6); plx surfaces warnings via the
				// same ErrorList with a distinguishing message prefix
				// rather than a dedicated warning channel, since §7's
				// Kind table has no warning-only kind.
				c.Errors.Add(diag.At(diag.InternalInvariant, c.spanOf(m.Pos()),
					fmt.Sprintf("warning: non-exhaustive match: enum variant %q is not covered", v.Name)))
			}
		}
	}
	return append(pre, caseStmt)
}

func (c *Context) lowerWhile(w *ast.WhileStmt) ir.Stmt {
	cond, pre := c.lowerExpr(w.Cond)
	if !types.IsBoolean(cond.Type()) {
		c.errorf(diag.TypeMismatch, w.Pos(), "while condition must be boolean")
	}
	body := append(pre, c.lowerBody(w.Body)...)
	return &ir.While{Cond: cond, Body: body}
}

func (c *Context) lowerForRange(f *ast.ForRangeStmt) ir.Stmt {
	lo, lpre := c.lowerExpr(f.Lo)
	hi, hpre := c.lowerExpr(f.Hi)
	var step ir.Expr
	var spre []ir.Stmt
	if f.Step != nil {
		step, spre = c.lowerExpr(f.Step)
	}
	if !types.IsIntegerOrEnum(lo.Type()) || !types.IsIntegerOrEnum(hi.Type()) {
		c.errorf(diag.TypeMismatch, f.Pos(), "for-range bounds must be integers")
	}
	c.DeclareVar(f.Var, types.Int32, true)
	body := c.lowerBody(f.Body)
	pre := append(append(lpre, hpre...), spre...)
	return &ir.For{Induction: f.Var, Lo: lo, Hi: hi, Step: step, Body: append(pre, body...)}
}

func (c *Context) lowerReturn(r *ast.ReturnStmt) ir.Stmt {
	if !c.inFunction {
		c.errorf(diag.SyntaxUnsupported, r.Pos(), "return is only valid inside a function body")
	}
	if r.Value == nil {
		return &ir.Return{}
	}
	v, pre := c.lowerExpr(r.Value)
	if len(pre) > 0 {
		// A return value that itself needs pre-statements (a sentinel
		// call in tail position) has no statement to splice them
		// before at this level; callers of lowerBody already flatten
		// a []ir.Stmt per source statement, so fold the pre-statements
		// into a synthetic block by returning them ahead of the
		// return — handled by the caller via lowerStmt's slice return
		// is not available here since this function returns a single
		// Stmt. Functions are stateless and short, so this path is
		// rare; report it plainly instead of silently dropping state.
		c.errorf(diag.SyntaxUnsupported, r.Pos(), "a sentinel call is not permitted directly inside a return expression")
	}
	return &ir.Return{Value: v}
}

// superCallMarker is an internal placeholder for `super().logic()`,
// replaced by the flattening pass (§4.2 step 3, §4.4). It must never
// reach the simulator or a vendor emitter un-flattened.
type superCallMarker struct{}

func (s *superCallMarker) Accept(v ir.StmtVisitor) interface{} { return nil }

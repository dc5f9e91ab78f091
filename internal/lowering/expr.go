package lowering

import (
	"plx/internal/ast"
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// lowerExpr lowers one authored-source expression into IR (§4.2 step
// 4). It returns the lowered expression together with any statements
// that must run immediately before the statement containing this
// expression — sentinel call sites (§4.2 step 5) invoke a synthesized
// function-block before their value can be read, so a sentinel nested
// inside a larger expression surfaces as a pre-statement here and is
// spliced in by the statement-level lowering functions in stmt.go.
func (c *Context) lowerExpr(e ast.Expr) (ir.Expr, []ir.Stmt) {
	switch ex := e.(type) {
	case *ast.Literal:
		return c.lowerLiteral(ex), nil
	case *ast.Name:
		return c.lowerNameRef(ex.Ident, ex.Pos()), nil
	case *ast.SelfAttr:
		return c.lowerNameRef(ex.Attr, ex.Pos()), nil
	case *ast.Attr:
		return c.lowerAttr(ex)
	case *ast.Index:
		return c.lowerIndex(ex)
	case *ast.Unary:
		return c.lowerUnary(ex)
	case *ast.Binary:
		return c.lowerBinary(ex)
	case *ast.Call:
		return c.lowerCallExpr(ex)
	case *ast.Conditional:
		return c.lowerConditional(ex)
	}
	c.errorf(diag.SyntaxUnsupported, e.Pos(), "unsupported expression form %T", e)
	return nil, nil
}

func (c *Context) lowerLiteral(l *ast.Literal) ir.Expr {
	switch v := l.Value.(type) {
	case bool:
		return &ir.Literal{Value: types.Value{Type: types.Bool, Bool: v}}
	case int64:
		return &ir.Literal{Value: types.Value{Type: types.Int32, Int: v}}
	case int:
		return &ir.Literal{Value: types.Value{Type: types.Int32, Int: int64(v)}}
	case float64:
		return &ir.Literal{Value: types.Value{Type: types.Float64, Float: v}}
	case string:
		return &ir.Literal{Value: types.Value{Type: &types.StringType{MaxLen: len(v)}, String: v}}
	case types.Duration:
		return &ir.Literal{Value: types.Value{Type: types.DurationType, Dur: v}}
	}
	c.errorf(diag.InvalidLiteral, l.Pos(), "literal of unsupported Go type %T", l.Value)
	return &ir.Literal{Value: types.Value{Type: types.Int32}}
}

// lowerNameRef resolves a bare name (or self.X) against the enclosing
// POU's flat variable namespace (§4.2 step 3).
func (c *Context) lowerNameRef(name string, at ast.Position) *ir.VarRef {
	t, ok := c.Vars[name]
	if !ok {
		c.errorf(diag.NameUnresolved, at, "undeclared variable %q", name)
		return &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: name}}, ResultType: types.Int32}
	}
	return &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: name}}, ResultType: t}
}

// lowerAttr lowers an attribute access onto the VarRef its object
// lowers to, appending one more field segment for this node.
func (c *Context) lowerAttr(a *ast.Attr) (ir.Expr, []ir.Stmt) {
	base, pre := c.lowerExpr(a.Object)
	ref, ok := base.(*ir.VarRef)
	if !ok {
		c.errorf(diag.NameUnresolved, a.Pos(), "attribute access on a non-variable expression")
		return &ir.Literal{Value: types.Value{Type: types.Int32}}, pre
	}
	var fieldType types.Type
	switch t := ref.Type().(type) {
	case *types.Struct:
		f := t.FieldByName(a.Name)
		if f == nil {
			c.errorf(diag.NameUnresolved, a.Pos(), "struct %s has no field %q", t.Name, a.Name)
			fieldType = types.Int32
		} else {
			fieldType = f.Type
		}
	case *types.FBInstance:
		sig, ok := c.Registry.FB(t.FBName)
		if !ok {
			c.errorf(diag.NameUnresolved, a.Pos(), "unknown function-block type %q", t.FBName)
			fieldType = types.Int32
		} else if ft := sig.FieldType(a.Name); ft != nil {
			fieldType = ft
		} else {
			c.errorf(diag.NameUnresolved, a.Pos(), "%s has no field %q", t.FBName, a.Name)
			fieldType = types.Int32
		}
	default:
		c.errorf(diag.TypeMismatch, a.Pos(), "cannot access field %q of non-composite type %s", a.Name, ref.Type())
		fieldType = types.Int32
	}
	segs := append(append([]ir.PathSegment{}, ref.Segments...), &ir.FieldSegment{Name: a.Name})
	return &ir.VarRef{Segments: segs, ResultType: fieldType}, pre
}

func (c *Context) lowerIndex(ix *ast.Index) (ir.Expr, []ir.Stmt) {
	base, pre := c.lowerExpr(ix.Object)
	idxExpr, idxPre := c.lowerExpr(ix.Index)
	pre = append(pre, idxPre...)
	ref, ok := base.(*ir.VarRef)
	if !ok {
		c.errorf(diag.NameUnresolved, ix.Pos(), "index access on a non-variable expression")
		return &ir.Literal{Value: types.Value{Type: types.Int32}}, pre
	}
	arrType, ok := ref.Type().(*types.Array)
	if !ok {
		c.errorf(diag.TypeMismatch, ix.Pos(), "cannot index non-array type %s", ref.Type())
		return &ir.Literal{Value: types.Value{Type: types.Int32}}, pre
	}
	if !types.IsIntegerOrEnum(idxExpr.Type()) {
		c.errorf(diag.TypeMismatch, ix.Pos(), "array index must be an integer")
	}
	segs := append(append([]ir.PathSegment{}, ref.Segments...), &ir.IndexSegment{Indices: []ir.Expr{idxExpr}})
	return &ir.VarRef{Segments: segs, ResultType: arrType.Element}, pre
}

var unaryOps = map[string]ir.UnaryOp{"-": ir.OpNeg, "neg": ir.OpNeg, "not": ir.OpNot, "!": ir.OpNot, "~": ir.OpBitNot, "bit-not": ir.OpBitNot}

func (c *Context) lowerUnary(u *ast.Unary) (ir.Expr, []ir.Stmt) {
	operand, pre := c.lowerExpr(u.Operand)
	op, ok := unaryOps[u.Op]
	if !ok {
		c.errorf(diag.SyntaxUnsupported, u.Pos(), "unsupported unary operator %q", u.Op)
		op = ir.OpNeg
	}
	if op == ir.OpNot && !types.IsBoolean(operand.Type()) {
		c.errorf(diag.TypeMismatch, u.Pos(), "'not' requires a boolean operand, got %s", operand.Type())
	}
	return &ir.Unary{Op: op, Operand: operand, ResultType: operand.Type()}, pre
}

var binaryOps = map[string]ir.BinaryOp{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpDiv, "%": ir.OpMod,
	"==": ir.OpEq, "!=": ir.OpNeq, "<": ir.OpLt, "<=": ir.OpLte, ">": ir.OpGt, ">=": ir.OpGte,
	"and": ir.OpAnd, "or": ir.OpOr, "&": ir.OpBitAnd, "|": ir.OpBitOr, "^": ir.OpBitXor,
}

func (c *Context) lowerBinary(b *ast.Binary) (ir.Expr, []ir.Stmt) {
	left, pre := c.lowerExpr(b.Left)
	right, rpre := c.lowerExpr(b.Right)
	pre = append(pre, rpre...)

	if b.Op == "//" {
		if isFloatType(left.Type()) || isFloatType(right.Type()) {
			c.errorf(diag.TypeMismatch, b.Pos(), "integer division is not permitted on float operands")
		}
		return &ir.Binary{Op: ir.OpDiv, Left: left, Right: right, ResultType: left.Type()}, pre
	}

	op, ok := binaryOps[b.Op]
	if !ok {
		c.errorf(diag.SyntaxUnsupported, b.Pos(), "unsupported binary operator %q", b.Op)
		op = ir.OpAdd
	}

	var resultType types.Type = left.Type()
	switch op {
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLte, ir.OpGt, ir.OpGte:
		resultType = types.Bool
	case ir.OpAnd, ir.OpOr:
		resultType = types.Bool
		if !types.IsBoolean(left.Type()) || !types.IsBoolean(right.Type()) {
			c.errorf(diag.TypeMismatch, b.Pos(), "'%s' requires boolean operands", b.Op)
		}
	default:
		if !types.AssignableFrom(left.Type(), right.Type()) && !types.AssignableFrom(right.Type(), left.Type()) {
			c.errorf(diag.TypeMismatch, b.Pos(), "incompatible operand types %s and %s", left.Type(), right.Type())
		}
	}
	return &ir.Binary{Op: op, Left: left, Right: right, ResultType: resultType}, pre
}

func isFloatType(t types.Type) bool {
	p, ok := t.(*types.Primitive)
	return ok && (p.Kind == types.KindFloat32 || p.Kind == types.KindFloat64)
}

func (c *Context) lowerConditional(cond *ast.Conditional) (ir.Expr, []ir.Stmt) {
	condE, pre := c.lowerExpr(cond.Cond)
	thenE, tpre := c.lowerExpr(cond.Then)
	elseE, epre := c.lowerExpr(cond.Else)
	pre = append(append(pre, tpre...), epre...)
	if !types.IsBoolean(condE.Type()) {
		c.errorf(diag.TypeMismatch, cond.Pos(), "conditional expression requires a boolean condition")
	}
	return &ir.Conditional{Cond: condE, Then: thenE, Else: elseE, ResultType: thenE.Type()}, pre
}

// calleeName extracts the plain callee name from an ast.Name or
// ast.SelfAttr callee, for sentinel and plain-function dispatch.
func calleeName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Name:
		return n.Ident, true
	case *ast.SelfAttr:
		return n.Attr, true
	}
	return "", false
}

func (c *Context) lowerCallExpr(call *ast.Call) (ir.Expr, []ir.Stmt) {
	name, isBareName := calleeName(call.Callee)

	if isBareName {
		if kind, ok := IsSentinel(name); ok {
			return c.lowerSentinelCall(kind, call)
		}
		if _, ok := c.Vars[name]; ok {
			// Calling a declared variable name directly as an
			// expression is only valid for sentinel-shaped FB
			// invocations, which are handled above; anything else
			// calling an instance must be a statement, not an
			// expression (§3.2: "FB invocation ... returns nothing").
			c.errorf(diag.SyntaxUnsupported, call.Pos(), "function-block invocation %q cannot be used as an expression value", name)
			return &ir.Literal{Value: types.Value{Type: types.Int32}}, nil
		}
	}

	retType, ok := c.Registry.Function(name)
	if !ok {
		c.errorf(diag.NameUnresolved, call.Pos(), "call to undeclared function %q", name)
		retType = types.Int32
	}
	var pre []ir.Stmt
	args := make([]ir.Arg, 0, len(call.Args))
	for _, a := range call.Args {
		v, apre := c.lowerExpr(a.Value)
		pre = append(pre, apre...)
		args = append(args, ir.Arg{Name: a.Name, Value: v})
	}
	return &ir.Call{Callee: name, Args: args, ResultType: retType}, pre
}

// secondsToDuration converts a delayed/sustained/pulse sentinel's
// seconds= argument — authored as a plain numeric literal counting
// seconds — into a TIME literal holding nanoseconds, so PT carries a
// duration rather than a bare count (§4.2 step 5, §4.6: PT is a
// duration input). Non-literal seconds expressions (a variable or
// computed value) are passed through unconverted; authoring a sentinel
// call with a non-literal seconds= argument is not yet supported.
func secondsToDuration(v ir.Expr) ir.Expr {
	lit, ok := v.(*ir.Literal)
	if !ok || lit.Value.Type == types.DurationType {
		return v
	}
	var seconds float64
	if isFloatType(lit.Value.Type) {
		seconds = lit.Value.Float
	} else {
		seconds = float64(lit.Value.Int)
	}
	whole := int64(seconds)
	ms := int64((seconds - float64(whole)) * 1000)
	dur := types.NewDuration(types.DurationComponents{Seconds: whole, Milliseconds: ms})
	return &ir.Literal{Value: types.Value{Type: types.DurationType, Dur: dur}}
}

// lowerSentinelCall expands a sentinel call site into a synthesized
// function-block invocation statement plus a VarRef reading its output
// (§4.2 step 5).
func (c *Context) lowerSentinelCall(kind SentinelKind, call *ast.Call) (ir.Expr, []ir.Stmt) {
	inst := c.Synth.Allocate(kind)
	c.DeclareVar(inst.Name, &types.FBInstance{FBName: inst.FB}, true)

	fieldArgs := make(map[string]ir.Expr)
	expected := sentinelInputNames(kind)
	var pre []ir.Stmt
	for i, a := range call.Args {
		argName := a.Name
		if argName == "" {
			if i >= len(expected) {
				c.errorf(diag.TypeMismatch, call.Pos(), "too many positional arguments to %s", kind)
				continue
			}
			argName = expected[i]
		}
		field, err := sentinelFieldFor(kind, argName)
		if err != nil {
			c.errorf(diag.NameUnresolved, call.Pos(), "%s", err)
			continue
		}
		v, apre := c.lowerExpr(a.Value)
		pre = append(pre, apre...)
		if field == "PT" {
			v = secondsToDuration(v)
		}
		fieldArgs[field] = v
	}

	invokeArgs := make([]ir.Arg, 0, len(fieldArgs))
	for _, field := range sentinelFieldOrder(kind) {
		if v, ok := fieldArgs[field]; ok {
			invokeArgs = append(invokeArgs, ir.Arg{Name: field, Value: v})
		}
	}
	invoke := &ir.FBInvoke{
		InstancePath: []ir.PathSegment{&ir.FieldSegment{Name: inst.Name}},
		Args:         invokeArgs,
	}
	pre = append(pre, &ir.FBInvokeStmt{Invoke: invoke})

	sig := builtinSignatures[inst.FB]
	outField := sentinelOutput(kind)
	result := &ir.VarRef{
		Segments:   []ir.PathSegment{&ir.FieldSegment{Name: inst.Name}, &ir.FieldSegment{Name: outField}},
		ResultType: sig.Outputs[outField],
	}
	return result, pre
}

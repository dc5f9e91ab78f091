package sim

import (
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// evalResult is the interface{} payload every ir.ExprVisitor method
// returns: the computed value, or a fault that aborts the scan in
// progress (§4.6, §7). Mirrors the teacher's vm.runtimeError — a
// value returned up the call chain rather than a panic — except here
// every Visit method returns one instead of a (value, error) pair,
// since ir.ExprVisitor's signature is fixed to interface{}.
type evalResult struct {
	value types.Value
	fault *diag.RuntimeFault
}

// Evaluator walks IR expressions against one instance's live state. It
// implements ir.ExprVisitor.
type Evaluator struct {
	proj  *ir.Project
	clock *Clock
	cur   *instance
	path  string // instance path, for RuntimeFault traces
}

func (e *Evaluator) eval(x ir.Expr) evalResult {
	return x.Accept(e).(evalResult)
}

func fault(kind diag.RuntimeFaultKind, path string) evalResult {
	return evalResult{fault: &diag.RuntimeFault{Kind: kind, Trace: []diag.TraceFrame{{InstancePath: path}}}}
}

func ok(v types.Value) evalResult { return evalResult{value: v} }

func (e *Evaluator) VisitLiteral(x *ir.Literal) interface{} { return ok(x.Value) }

func (e *Evaluator) VisitEnumRef(x *ir.EnumRef) interface{} {
	v := x.EnumType.VariantByName(x.Variant)
	if v == nil {
		return fault(diag.FaultInternalInvariant, e.path)
	}
	return ok(types.Value{Type: x.EnumType, Enum: v})
}

// VisitVarRef reads the value a path resolves to, descending through
// nested function-block-instance fields and array indices (§3.2).
func (e *Evaluator) VisitVarRef(x *ir.VarRef) interface{} {
	cur := e.cur
	var val types.Value
	haveVal := false

	for _, seg := range x.Segments {
		switch s := seg.(type) {
		case *ir.FieldSegment:
			if haveVal {
				// field-of-struct-value
				fv, ok2 := val.Struct[s.Name]
				if !ok2 {
					return fault(diag.FaultInternalInvariant, e.path)
				}
				val = fv
				continue
			}
			if sub := cur.sub(s.Name); sub != nil {
				cur = sub
				continue
			}
			v, has := cur.get(s.Name)
			if !has {
				return fault(diag.FaultInternalInvariant, e.path)
			}
			val = v
			haveVal = true
		case *ir.IndexSegment:
			if !haveVal {
				return fault(diag.FaultInternalInvariant, e.path)
			}
			idx := make([]int64, len(s.Indices))
			for i, ie := range s.Indices {
				r := e.eval(ie)
				if r.fault != nil {
					return r
				}
				idx[i] = r.value.Int
			}
			flat, frr := flattenIndex(val.Type, idx)
			if frr != nil {
				return fault(*frr, e.path)
			}
			if flat < 0 || flat >= int64(len(val.Array)) {
				return fault(diag.IndexOutOfRange, e.path)
			}
			val = val.Array[flat]
		case *ir.DerefSegment:
			if !haveVal || val.Pointer == nil {
				return fault(diag.NilDereference, e.path)
			}
			val = *val.Pointer
		}
	}
	if !haveVal {
		// path ended on a plain instance-rooted field never reached
		// above only happens for a zero-segment VarRef, which lowering
		// never produces.
		return fault(diag.FaultInternalInvariant, e.path)
	}
	return ok(val)
}

func flattenIndex(t types.Type, idx []int64) (int64, *diag.RuntimeFaultKind) {
	arr, ok := t.(*types.Array)
	if !ok || len(idx) != len(arr.Bounds) {
		k := diag.FaultInternalInvariant
		return 0, &k
	}
	var flat int64
	for i, b := range arr.Bounds {
		if idx[i] < b.Lo || idx[i] > b.Hi {
			k := diag.IndexOutOfRange
			return 0, &k
		}
		flat = flat*b.Len() + (idx[i] - b.Lo)
	}
	return flat, nil
}

func (e *Evaluator) VisitUnary(x *ir.Unary) interface{} {
	r := e.eval(x.Operand)
	if r.fault != nil {
		return r
	}
	v := r.value
	switch x.Op {
	case ir.OpNeg:
		if isFloatVal(v) {
			v.Float = -v.Float
		} else {
			v.Int = -v.Int
		}
	case ir.OpNot:
		v.Bool = !v.Bool
	case ir.OpBitNot:
		v.Uint = ^v.Uint
	}
	return ok(v)
}

func isFloatVal(v types.Value) bool {
	p, isP := v.Type.(*types.Primitive)
	return isP && (p.Kind == types.KindFloat32 || p.Kind == types.KindFloat64)
}

func isUnsignedVal(v types.Value) bool {
	p, isP := v.Type.(*types.Primitive)
	return isP && (p.Kind == types.KindUint8 || p.Kind == types.KindUint16 || p.Kind == types.KindUint32 || p.Kind == types.KindUint64 ||
		p.Kind == types.KindBits8 || p.Kind == types.KindBits16 || p.Kind == types.KindBits32 || p.Kind == types.KindBits64)
}

// VisitBinary evaluates a binary expression, short-circuiting and/or
// (§3.2) and raising DivisionByZero for /, %, and // on a zero divisor
// (§7).
func (e *Evaluator) VisitBinary(x *ir.Binary) interface{} {
	lr := e.eval(x.Left)
	if lr.fault != nil {
		return lr
	}
	if x.Op == ir.OpAnd && !lr.value.Bool {
		return ok(types.Value{Type: types.Bool, Bool: false})
	}
	if x.Op == ir.OpOr && lr.value.Bool {
		return ok(types.Value{Type: types.Bool, Bool: true})
	}
	rr := e.eval(x.Right)
	if rr.fault != nil {
		return rr
	}
	l, r := lr.value, rr.value

	switch x.Op {
	case ir.OpAnd:
		return ok(types.Value{Type: types.Bool, Bool: r.Bool})
	case ir.OpOr:
		return ok(types.Value{Type: types.Bool, Bool: r.Bool})
	case ir.OpEq:
		return ok(types.Value{Type: types.Bool, Bool: valueEqual(l, r)})
	case ir.OpNeq:
		return ok(types.Value{Type: types.Bool, Bool: !valueEqual(l, r)})
	}

	if isFloatVal(l) {
		lf, rf := l.Float, r.Float
		switch x.Op {
		case ir.OpAdd:
			return ok(types.Value{Type: x.ResultType, Float: lf + rf})
		case ir.OpSub:
			return ok(types.Value{Type: x.ResultType, Float: lf - rf})
		case ir.OpMul:
			return ok(types.Value{Type: x.ResultType, Float: lf * rf})
		case ir.OpDiv:
			if rf == 0 {
				return fault(diag.DivisionByZero, e.path)
			}
			return ok(types.Value{Type: x.ResultType, Float: lf / rf})
		case ir.OpLt:
			return ok(types.Value{Type: types.Bool, Bool: lf < rf})
		case ir.OpLte:
			return ok(types.Value{Type: types.Bool, Bool: lf <= rf})
		case ir.OpGt:
			return ok(types.Value{Type: types.Bool, Bool: lf > rf})
		case ir.OpGte:
			return ok(types.Value{Type: types.Bool, Bool: lf >= rf})
		}
		return fault(diag.FaultInternalInvariant, e.path)
	}

	if isUnsignedVal(l) {
		lu, ru := l.Uint, r.Uint
		switch x.Op {
		case ir.OpAdd:
			return ok(types.Value{Type: x.ResultType, Uint: lu + ru})
		case ir.OpSub:
			return ok(types.Value{Type: x.ResultType, Uint: lu - ru})
		case ir.OpMul:
			return ok(types.Value{Type: x.ResultType, Uint: lu * ru})
		case ir.OpDiv:
			if ru == 0 {
				return fault(diag.DivisionByZero, e.path)
			}
			return ok(types.Value{Type: x.ResultType, Uint: lu / ru})
		case ir.OpMod:
			if ru == 0 {
				return fault(diag.DivisionByZero, e.path)
			}
			return ok(types.Value{Type: x.ResultType, Uint: lu % ru})
		case ir.OpBitAnd:
			return ok(types.Value{Type: x.ResultType, Uint: lu & ru})
		case ir.OpBitOr:
			return ok(types.Value{Type: x.ResultType, Uint: lu | ru})
		case ir.OpBitXor:
			return ok(types.Value{Type: x.ResultType, Uint: lu ^ ru})
		case ir.OpLt:
			return ok(types.Value{Type: types.Bool, Bool: lu < ru})
		case ir.OpLte:
			return ok(types.Value{Type: types.Bool, Bool: lu <= ru})
		case ir.OpGt:
			return ok(types.Value{Type: types.Bool, Bool: lu > ru})
		case ir.OpGte:
			return ok(types.Value{Type: types.Bool, Bool: lu >= ru})
		}
		return fault(diag.FaultInternalInvariant, e.path)
	}

	li, ri := l.Int, r.Int
	switch x.Op {
	case ir.OpAdd:
		return ok(types.Value{Type: x.ResultType, Int: li + ri})
	case ir.OpSub:
		return ok(types.Value{Type: x.ResultType, Int: li - ri})
	case ir.OpMul:
		return ok(types.Value{Type: x.ResultType, Int: li * ri})
	case ir.OpDiv:
		if ri == 0 {
			return fault(diag.DivisionByZero, e.path)
		}
		return ok(types.Value{Type: x.ResultType, Int: li / ri})
	case ir.OpMod:
		if ri == 0 {
			return fault(diag.DivisionByZero, e.path)
		}
		return ok(types.Value{Type: x.ResultType, Int: li % ri})
	case ir.OpBitAnd:
		return ok(types.Value{Type: x.ResultType, Int: li & ri})
	case ir.OpBitOr:
		return ok(types.Value{Type: x.ResultType, Int: li | ri})
	case ir.OpBitXor:
		return ok(types.Value{Type: x.ResultType, Int: li ^ ri})
	case ir.OpLt:
		return ok(types.Value{Type: types.Bool, Bool: li < ri})
	case ir.OpLte:
		return ok(types.Value{Type: types.Bool, Bool: li <= ri})
	case ir.OpGt:
		return ok(types.Value{Type: types.Bool, Bool: li > ri})
	case ir.OpGte:
		return ok(types.Value{Type: types.Bool, Bool: li >= ri})
	}
	return fault(diag.FaultInternalInvariant, e.path)
}

func valueEqual(l, r types.Value) bool {
	if isFloatVal(l) {
		return l.Float == r.Float
	}
	if isUnsignedVal(l) {
		return l.Uint == r.Uint
	}
	if types.IsBoolean(l.Type) {
		return l.Bool == r.Bool
	}
	if _, isStr := l.Type.(*types.StringType); isStr {
		return l.String == r.String
	}
	if l.Enum != nil && r.Enum != nil {
		return l.Enum.Name == r.Enum.Name
	}
	return l.Int == r.Int
}

// VisitConditional evaluates a ternary: both branches are pure
// expressions, so only the selected one is evaluated (§3.2).
func (e *Evaluator) VisitConditional(x *ir.Conditional) interface{} {
	cr := e.eval(x.Cond)
	if cr.fault != nil {
		return cr
	}
	if cr.value.Bool {
		return e.eval(x.Then)
	}
	return e.eval(x.Else)
}

// VisitCall invokes a user-defined FUNCTION POU: a fresh instance is
// materialized for its locals, arguments bind its input block, the
// body runs to completion, and the bound return variable (the
// function's own name, by IEC convention) becomes the result (§3.3,
// §4.6). plx never executes host-language code here — only IR already
// lowered from an authored FUNCTION body (§1 Non-goals).
func (e *Evaluator) VisitCall(x *ir.Call) interface{} {
	fn := e.proj.PouByName(x.Callee)
	if fn == nil {
		return fault(diag.FaultInternalInvariant, e.path)
	}
	callee := newInstance(fn.Name)
	pos := 0
	for _, blk := range fn.Blocks {
		if blk.Role != ir.RoleInput {
			continue
		}
		for _, v := range blk.Vars {
			var arg ir.Expr
			for _, a := range x.Args {
				if a.Name == v.Name {
					arg = a.Value
				}
			}
			if arg == nil {
				for pi, a := range x.Args {
					if a.Name == "" && pi == pos {
						arg = a.Value
					}
				}
			}
			pos++
			if arg == nil {
				callee.set(v.Name, types.Zero(v.Type))
				continue
			}
			r := e.eval(arg)
			if r.fault != nil {
				return r
			}
			callee.set(v.Name, r.value)
		}
	}
	for _, blk := range fn.Blocks {
		if blk.Role == ir.RoleInput {
			continue
		}
		for _, v := range blk.Vars {
			callee.set(v.Name, types.Zero(v.Type))
		}
	}
	callee.set(fn.Name, types.Zero(fn.ReturnType))

	exec := &Executor{Evaluator: Evaluator{proj: e.proj, clock: e.clock, cur: callee, path: e.path + "." + fn.Name}}
	if f := exec.run(fn.Body); f != nil {
		return evalResult{fault: f}
	}
	ret, _ := callee.get(fn.Name)
	return ok(ret)
}

// VisitFBInvoke is never called directly: function-block invocations
// only ever appear as FBInvokeStmt, executed by Executor.VisitFBInvokeStmt.
func (e *Evaluator) VisitFBInvoke(x *ir.FBInvoke) interface{} {
	return fault(diag.FaultInternalInvariant, e.path)
}

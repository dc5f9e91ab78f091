package sim

import (
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// execResult is the interface{} payload every ir.StmtVisitor method
// returns: a fault that aborts the scan, and/or a signal that a Return
// statement fired and the enclosing body must stop executing further
// statements (§3.2 "Return is only valid inside function bodies").
type execResult struct {
	fault    *diag.RuntimeFault
	returned bool
}

// Executor walks IR statements against one instance's live state,
// dispatching expressions to the embedded Evaluator. It implements
// ir.StmtVisitor.
type Executor struct {
	Evaluator
}

// run executes an ordered statement list in sequence, stopping early
// on the first fault or Return (§3.2, §4.6).
func (ex *Executor) run(stmts []ir.Stmt) *diag.RuntimeFault {
	for _, s := range stmts {
		r := s.Accept(ex).(execResult)
		if r.fault != nil {
			return r.fault
		}
		if r.returned {
			return nil
		}
	}
	return nil
}

// runSignaling is like run but propagates the returned signal to the
// caller instead of swallowing it, so nested blocks (if/while bodies)
// can short-circuit an enclosing function body on Return.
func (ex *Executor) runSignaling(stmts []ir.Stmt) execResult {
	for _, s := range stmts {
		r := s.Accept(ex).(execResult)
		if r.fault != nil || r.returned {
			return r
		}
	}
	return execResult{}
}

func (ex *Executor) VisitAssign(s *ir.Assign) interface{} {
	r := ex.eval(s.Value)
	if r.fault != nil {
		return execResult{fault: r.fault}
	}
	if f := ex.assign(s.Target, r.value); f != nil {
		return execResult{fault: f}
	}
	return execResult{}
}

// assign writes newVal through an l-value path, mutating in place
// through the reference semantics of Go slices/maps backing array and
// struct values, so no explicit write-back to the owning variable is
// needed once the root value has been located (§3.2).
func (ex *Executor) assign(target *ir.VarRef, newVal types.Value) *diag.RuntimeFault {
	segs := target.Segments
	if len(segs) == 0 {
		return &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}
	}
	cur := ex.cur
	i := 0
	for i < len(segs)-1 {
		fs, isField := segs[i].(*ir.FieldSegment)
		if !isField {
			break
		}
		sub := cur.sub(fs.Name)
		if sub == nil {
			break
		}
		cur = sub
		i++
	}

	fs, isField := segs[i].(*ir.FieldSegment)
	if !isField {
		return &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}
	}
	if i == len(segs)-1 {
		cur.set(fs.Name, newVal)
		return nil
	}

	val, has := cur.get(fs.Name)
	if !has {
		return &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}
	}
	for j := i + 1; j < len(segs); j++ {
		last := j == len(segs)-1
		switch s := segs[j].(type) {
		case *ir.FieldSegment:
			if val.Struct == nil {
				return &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}
			}
			if last {
				val.Struct[s.Name] = newVal
				return nil
			}
			nv, ok2 := val.Struct[s.Name]
			if !ok2 {
				return &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}
			}
			val = nv
		case *ir.IndexSegment:
			idxs := make([]int64, len(s.Indices))
			for k, ie := range s.Indices {
				r := ex.eval(ie)
				if r.fault != nil {
					return r.fault
				}
				idxs[k] = r.value.Int
			}
			flat, badKind := flattenIndex(val.Type, idxs)
			if badKind != nil {
				return &diag.RuntimeFault{Kind: *badKind}
			}
			if flat < 0 || flat >= int64(len(val.Array)) {
				return &diag.RuntimeFault{Kind: diag.IndexOutOfRange}
			}
			if last {
				val.Array[flat] = newVal
				return nil
			}
			val = val.Array[flat]
		case *ir.DerefSegment:
			if val.Pointer == nil {
				return &diag.RuntimeFault{Kind: diag.NilDereference}
			}
			if last {
				*val.Pointer = newVal
				return nil
			}
			val = *val.Pointer
		}
	}
	return nil
}

func (ex *Executor) VisitIf(s *ir.If) interface{} {
	r := ex.eval(s.Cond)
	if r.fault != nil {
		return execResult{fault: r.fault}
	}
	if r.value.Bool {
		return ex.runSignaling(s.Then)
	}
	for _, ei := range s.ElseIfs {
		cr := ex.eval(ei.Cond)
		if cr.fault != nil {
			return execResult{fault: cr.fault}
		}
		if cr.value.Bool {
			return ex.runSignaling(ei.Body)
		}
	}
	if s.Else != nil {
		return ex.runSignaling(s.Else)
	}
	return execResult{}
}

// VisitCase executes a case statement (§3.2): the first matching arm's
// body runs, falling back to Default, or to nothing if no arm matches
// and there is no default.
func (ex *Executor) VisitCase(s *ir.Case) interface{} {
	r := ex.eval(s.Selector)
	if r.fault != nil {
		return execResult{fault: r.fault}
	}
	for _, arm := range s.Arms {
		if valueSetMatches(arm.Values, r.value) {
			return ex.runSignaling(arm.Body)
		}
	}
	if s.Default != nil {
		return ex.runSignaling(s.Default)
	}
	return execResult{}
}

func valueSetMatches(vs ir.ValueSet, v types.Value) bool {
	if v.Enum != nil {
		for _, name := range vs.Enums {
			if name == v.Enum.Name {
				return true
			}
		}
		return false
	}
	for _, n := range vs.Ints {
		if n == v.Int {
			return true
		}
	}
	return false
}

func (ex *Executor) VisitWhile(s *ir.While) interface{} {
	for {
		r := ex.eval(s.Cond)
		if r.fault != nil {
			return execResult{fault: r.fault}
		}
		if !r.value.Bool {
			return execResult{}
		}
		br := ex.runSignaling(s.Body)
		if br.fault != nil || br.returned {
			return br
		}
	}
}

func (ex *Executor) VisitRepeatUntil(s *ir.RepeatUntil) interface{} {
	for {
		br := ex.runSignaling(s.Body)
		if br.fault != nil || br.returned {
			return br
		}
		r := ex.eval(s.Cond)
		if r.fault != nil {
			return execResult{fault: r.fault}
		}
		if r.value.Bool {
			return execResult{}
		}
	}
}

// VisitFor executes a counted loop with inclusive bounds and an
// optional step (§3.2); the induction variable lives in the current
// instance's variable set like any other local.
func (ex *Executor) VisitFor(s *ir.For) interface{} {
	lo := ex.eval(s.Lo)
	if lo.fault != nil {
		return execResult{fault: lo.fault}
	}
	hi := ex.eval(s.Hi)
	if hi.fault != nil {
		return execResult{fault: hi.fault}
	}
	step := int64(1)
	if s.Step != nil {
		sr := ex.eval(s.Step)
		if sr.fault != nil {
			return execResult{fault: sr.fault}
		}
		step = sr.value.Int
		if step == 0 {
			return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
		}
	}
	indType := lo.value.Type
	for i := lo.value.Int; (step > 0 && i <= hi.value.Int) || (step < 0 && i >= hi.value.Int); i += step {
		ex.cur.set(s.Induction, types.Value{Type: indType, Int: i})
		br := ex.runSignaling(s.Body)
		if br.fault != nil || br.returned {
			return br
		}
	}
	return execResult{}
}

// VisitFBInvokeStmt invokes the instance the path resolves to: a
// built-in sentinel timer/edge/counter, or a user-defined
// function-block whose own Body (or Chart) runs one scan (§3.2, §4.6).
func (ex *Executor) VisitFBInvokeStmt(s *ir.FBInvokeStmt) interface{} {
	inv := s.Invoke
	path := inv.InstancePath
	cur := ex.cur
	for _, seg := range path[:len(path)-1] {
		fs, isField := seg.(*ir.FieldSegment)
		if !isField {
			return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
		}
		sub := cur.sub(fs.Name)
		if sub == nil {
			return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
		}
		cur = sub
	}
	fs, isField := path[len(path)-1].(*ir.FieldSegment)
	if !isField {
		return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
	}
	target := cur.sub(fs.Name)
	if target == nil {
		return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
	}

	inputs := map[string]types.Value{}
	for _, a := range inv.Args {
		r := ex.eval(a.Value)
		if r.fault != nil {
			return execResult{fault: r.fault}
		}
		inputs[a.Name] = r.value
	}

	if target.runtime != nil {
		outs := runBuiltin(target.fbName, target.runtime, inputs, ex.clock.Now())
		for name, v := range inputs {
			target.set(name, v)
		}
		for name, v := range outs {
			target.set(name, v)
		}
		return execResult{}
	}

	fb := ex.proj.PouByName(target.fbName)
	if fb == nil {
		return execResult{fault: &diag.RuntimeFault{Kind: diag.FaultInternalInvariant}}
	}
	for name, v := range inputs {
		target.set(name, v)
	}
	sub := &Executor{Evaluator: Evaluator{proj: ex.proj, clock: ex.clock, cur: target, path: ex.path + "." + fs.Name}}
	var f *diag.RuntimeFault
	if fb.Chart != nil {
		f = sub.stepChart(fb.Chart)
	} else {
		f = sub.run(fb.Body)
	}
	if f != nil {
		f.Trace = append(f.Trace, diag.TraceFrame{InstancePath: ex.path})
		return execResult{fault: f}
	}
	return execResult{}
}

func (ex *Executor) VisitReturn(s *ir.Return) interface{} {
	if s.Value == nil {
		return execResult{returned: true}
	}
	r := ex.eval(s.Value)
	if r.fault != nil {
		return execResult{fault: r.fault}
	}
	// The function's return slot is a variable named after the
	// function itself, by IEC 61131-3 convention (§3.3).
	ex.cur.set(ex.cur.fbName, r.value)
	return execResult{returned: true}
}

func (ex *Executor) VisitNop(s *ir.Nop) interface{} { return execResult{} }

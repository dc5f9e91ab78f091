package sim

import (
	"plx/internal/diag"
	"plx/internal/ir"
)

// stepChart runs one scan of an SFC-authored function-block: every
// currently active step's actions execute, then, for each active step,
// the first transition leaving it (in declaration order) whose
// condition evaluates true fires, deactivating its source, activating
// its target, and running the target step's actions within that same
// scan (§4.6 "SFC execution": "if a transition fires, deactivate its
// source, activate its target, and execute target step's actions once
// this scan"). Later transitions from the same step are not evaluated
// once one has fired, so a non-branching chart keeps exactly one
// active step. A target reached by more than one firing transition in
// the same scan runs its actions only once.
func (ex *Executor) stepChart(chart *ir.Chart) *diag.RuntimeFault {
	if ex.cur.active == nil {
		ex.cur.active = map[string]bool{}
		if init := chart.InitialStep(); init != nil {
			ex.cur.active[init.Name] = true
		}
	}

	for name := range ex.cur.active {
		step := chart.StepByName(name)
		if step == nil {
			continue
		}
		if f := ex.run(step.Actions); f != nil {
			return f
		}
	}

	type firing struct{ from, to string }
	var fire []firing
	for name := range ex.cur.active {
		for _, t := range chart.TransitionsFrom(name) {
			r := ex.eval(t.Condition)
			if r.fault != nil {
				return r.fault
			}
			if r.value.Bool {
				fire = append(fire, firing{t.Source, t.Target})
				break
			}
		}
	}

	ran := map[string]bool{}
	for _, f := range fire {
		delete(ex.cur.active, f.from)
		ex.cur.active[f.to] = true
		if ran[f.to] {
			continue
		}
		ran[f.to] = true
		step := chart.StepByName(f.to)
		if step == nil {
			continue
		}
		if rf := ex.run(step.Actions); rf != nil {
			return rf
		}
	}
	return nil
}

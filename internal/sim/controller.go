// Package sim is documented in clock.go.
package sim

import (
	"fmt"
	"strings"

	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// Controller is the simulator's public handle onto one running POU
// instance: a virtual clock, the instance's live variable state, and
// the scan-cycle entry point (§4.6).
type Controller struct {
	proj  *ir.Project
	pou   *ir.POU
	clock *Clock
	top   *instance
}

// Simulate materializes a Controller for pouName, recursively building
// nested instances for every function-block-typed field (both
// synthesized sentinel instances and user-defined function-block
// instances), each initialized to its declared/zero values (§4.6
// "instantiate ... initialize all variables to declared initial
// values").
func Simulate(proj *ir.Project, pouName string) (*Controller, *diag.CompileError) {
	pou := proj.PouByName(pouName)
	if pou == nil {
		return nil, diag.New(diag.DanglingReference, "no such POU: "+pouName)
	}
	top := buildInstance(pou, proj)
	return &Controller{proj: proj, pou: pou, clock: &Clock{}, top: top}, nil
}

func buildInstance(pou *ir.POU, proj *ir.Project) *instance {
	inst := newInstance(pou.Name)
	if pou.Parent != nil {
		for _, v := range pou.Parent.AllVars() {
			seedVar(inst, v, proj)
		}
	}
	for _, v := range pou.AllVars() {
		seedVar(inst, v, proj)
	}
	return inst
}

func seedVar(inst *instance, v *ir.Variable, proj *ir.Project) {
	fbt, isFB := v.Type.(*types.FBInstance)
	if !isFB {
		if v.Initial != nil {
			inst.set(v.Name, *v.Initial)
		} else {
			inst.set(v.Name, types.Zero(v.Type))
		}
		return
	}
	if _, builtin := builtinRuntimeKinds[fbt.FBName]; builtin {
		sub := newInstance(fbt.FBName)
		sub.runtime = &builtinRuntime{}
		for name, t := range builtinIOTypes(fbt.FBName) {
			sub.set(name, types.Zero(t))
		}
		inst.subs[v.Name] = sub
		return
	}
	childPou := proj.PouByName(fbt.FBName)
	if childPou == nil {
		inst.subs[v.Name] = newInstance(fbt.FBName)
		return
	}
	inst.subs[v.Name] = buildInstance(childPou, proj)
}

var builtinRuntimeKinds = map[string]bool{
	"TON": true, "TOF": true, "TP": true, "R_TRIG": true, "F_TRIG": true, "CTU": true, "CTD": true,
}

func builtinIOTypes(fbName string) map[string]types.Type {
	switch fbName {
	case "TON", "TOF", "TP":
		return map[string]types.Type{"IN": types.Bool, "PT": types.DurationType, "Q": types.Bool, "ET": types.DurationType}
	case "R_TRIG", "F_TRIG":
		return map[string]types.Type{"CLK": types.Bool, "Q": types.Bool}
	case "CTU":
		return map[string]types.Type{"CU": types.Bool, "RESET": types.Bool, "PV": types.Int32, "Q": types.Bool, "CV": types.Int32}
	case "CTD":
		return map[string]types.Type{"CD": types.Bool, "LOAD": types.Bool, "PV": types.Int32, "Q": types.Bool, "CV": types.Int32}
	}
	return nil
}

// Now returns the controller's current virtual time.
func (c *Controller) Now() types.Duration { return c.clock.Now() }

// Tick advances the virtual clock without running a scan, for tests
// that need to observe a timer mid-delay (§4.6, §8 boundary cases).
func (c *Controller) Tick(d types.Duration) { c.clock.Advance(d) }

// Set writes a dotted variable path (e.g. "motor.__ton_0.PT") on the
// controller's top-level instance, for driving inputs between scans.
func (c *Controller) Set(path string, v types.Value) error {
	inst, name, err := c.resolve(path)
	if err != nil {
		return err
	}
	inst.set(name, v)
	return nil
}

// Get reads a dotted variable path's current value, including
// synthesized sentinel outputs (e.g. "motor.__ton_0.Q").
func (c *Controller) Get(path string) (types.Value, bool) {
	inst, name, err := c.resolve(path)
	if err != nil {
		return types.Value{}, false
	}
	return inst.get(name)
}

func (c *Controller) resolve(path string) (*instance, string, error) {
	parts := strings.Split(path, ".")
	cur := c.top
	for _, p := range parts[:len(parts)-1] {
		sub := cur.sub(p)
		if sub == nil {
			return nil, "", fmt.Errorf("no such instance path %q", path)
		}
		cur = sub
	}
	return cur, parts[len(parts)-1], nil
}

// Scan runs exactly one scan cycle of the top-level POU: its body (or
// chart) executes once against the instance's current state, in
// program order, copy-in/copy-out semantics applying only at the task
// boundary the embedding application models (§4.6). A RuntimeFault
// aborts the scan in progress; state from the prior successful scan
// remains observable.
func (c *Controller) Scan() error {
	exec := &Executor{Evaluator: Evaluator{proj: c.proj, clock: c.clock, cur: c.top, path: c.pou.Name}}
	if c.pou.Chart != nil {
		if f := exec.stepChart(c.pou.Chart); f != nil {
			return f
		}
		return nil
	}
	if f := exec.run(c.pou.Body); f != nil {
		return f
	}
	return nil
}

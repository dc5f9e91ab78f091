package sim

import (
	"fmt"
	"testing"
	"time"

	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/project"
	"plx/internal/types"
)

// Small IR-construction helpers shared by every scenario below; they
// build the node shapes internal/lowering would otherwise produce from
// authored source, letting each scenario drive the simulator directly
// against a hand-assembled Project (§8).

func ref(name string, t types.Type) *ir.VarRef {
	return &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: name}}, ResultType: t}
}

func refPath(t types.Type, names ...string) *ir.VarRef {
	segs := make([]ir.PathSegment, len(names))
	for i, n := range names {
		segs[i] = &ir.FieldSegment{Name: n}
	}
	return &ir.VarRef{Segments: segs, ResultType: t}
}

func boolLit(b bool) *ir.Literal    { return &ir.Literal{Value: types.Value{Type: types.Bool, Bool: b}} }
func durLit(d time.Duration) *ir.Literal {
	return &ir.Literal{Value: types.Value{Type: types.DurationType, Dur: types.Duration(d)}}
}
func intLit(n int64) *ir.Literal {
	return &ir.Literal{Value: types.Value{Type: types.Int32, Int: n}}
}

func invokeStmt(instance string, args ...ir.Arg) *ir.FBInvokeStmt {
	return &ir.FBInvokeStmt{Invoke: &ir.FBInvoke{
		InstancePath: []ir.PathSegment{&ir.FieldSegment{Name: instance}},
		Args:         args,
	}}
}

func assign(target *ir.VarRef, value ir.Expr) *ir.Assign {
	return &ir.Assign{Target: target, Value: value}
}

func fbVar(name, fbName string) ir.Variable {
	return ir.Variable{Name: name, Type: &types.FBInstance{FBName: fbName}}
}

// singleProgram wraps one POU as a complete, directly-simulatable
// Project — bypassing project.Compile's full invariant suite, which
// the project-validation scenario below exercises on its own terms.
func singleProgram(pou *ir.POU) *ir.Project {
	return &ir.Project{Name: "scenario", Pous: []*ir.POU{pou}}
}

// --- Scenario 1: motor on-delay (§8) ---------------------------------

func TestScenarioMotorDelay(t *testing.T) {
	pou := &ir.POU{
		Name: "MotorControl",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Start", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Q", Type: types.Bool}}},
			{Role: ir.RoleLocal, Vars: []ir.Variable{fbVar("Delayed", "TON")}},
		},
		Body: []ir.Stmt{
			invokeStmt("Delayed",
				ir.Arg{Name: "IN", Value: ref("Start", types.Bool)},
				ir.Arg{Name: "PT", Value: durLit(2 * time.Second)},
			),
			assign(ref("Q", types.Bool), refPath(types.Bool, "Delayed", "Q")),
		},
	}

	ctrl, cerr := Simulate(singleProgram(pou), "MotorControl")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}

	s := Scenario{Name: "motor-delay", Ctrl: ctrl, Steps: []Step{
		func(c *Controller) error { return c.Set("Start", types.Value{Type: types.Bool, Bool: true}) },
		func(c *Controller) error { return c.Scan() },
		func(c *Controller) error {
			q, _ := c.Get("Q")
			if q.Bool {
				return errf("Q true before PT elapsed")
			}
			return nil
		},
		func(c *Controller) error { c.Tick(types.Duration(2 * time.Second)); return nil },
		func(c *Controller) error { return c.Scan() },
		func(c *Controller) error {
			q, _ := c.Get("Q")
			if !q.Bool {
				return errf("Q false after PT elapsed")
			}
			return nil
		},
	}}
	if r := Run(s); !r.Passed {
		t.Fatalf("scenario failed at step %d: %v", r.Step, r.Err)
	}
}

// --- Scenario 2: valve fault aborts the scan, prior state survives (§7, §8) ---

func TestScenarioValveFault(t *testing.T) {
	pou := &ir.POU{
		Name: "ValveRate",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Divisor", Type: types.Int32}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Rate", Type: types.Int32}}},
		},
		Body: []ir.Stmt{
			assign(ref("Rate", types.Int32), &ir.Binary{
				Op: ir.OpDiv, Left: intLit(100), Right: ref("Divisor", types.Int32), ResultType: types.Int32,
			}),
		},
	}
	ctrl, cerr := Simulate(singleProgram(pou), "ValveRate")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}

	if err := ctrl.Set("Divisor", types.Value{Type: types.Int32, Int: 5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ctrl.Scan(); err != nil {
		t.Fatalf("first scan should not fault: %v", err)
	}
	if rate, _ := ctrl.Get("Rate"); rate.Int != 20 {
		t.Fatalf("Rate = %d, want 20", rate.Int)
	}

	if err := ctrl.Set("Divisor", types.Value{Type: types.Int32, Int: 0}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ctrl.Scan(); err == nil {
		t.Fatal("expected a RuntimeFault from division by zero")
	} else if rf, ok := asRuntimeFault(err); !ok || rf.Kind != diag.DivisionByZero {
		t.Fatalf("expected DivisionByZero fault, got %v", err)
	}

	// The faulted scan never wrote Rate; the prior successful value
	// remains observable (§4.6, §7).
	if rate, _ := ctrl.Get("Rate"); rate.Int != 20 {
		t.Fatalf("Rate after fault = %d, want unchanged 20", rate.Int)
	}
}

func asRuntimeFault(err error) (*diag.RuntimeFault, bool) {
	rf, ok := err.(*diag.RuntimeFault)
	return rf, ok
}

// --- Scenario 3: rising-edge detector (§8) ---------------------------

func TestScenarioRisingEdge(t *testing.T) {
	pou := &ir.POU{
		Name: "ButtonEdge",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Button", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Pressed", Type: types.Bool}}},
			{Role: ir.RoleLocal, Vars: []ir.Variable{fbVar("Edge", "R_TRIG")}},
		},
		Body: []ir.Stmt{
			invokeStmt("Edge", ir.Arg{Name: "CLK", Value: ref("Button", types.Bool)}),
			assign(ref("Pressed", types.Bool), refPath(types.Bool, "Edge", "Q")),
		},
	}
	ctrl, cerr := Simulate(singleProgram(pou), "ButtonEdge")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}

	set := func(v bool) Step {
		return func(c *Controller) error { return c.Set("Button", types.Value{Type: types.Bool, Bool: v}) }
	}
	expect := func(want bool) Step {
		return func(c *Controller) error {
			p, _ := c.Get("Pressed")
			if p.Bool != want {
				return errf("Pressed = %v, want %v", p.Bool, want)
			}
			return nil
		}
	}
	s := Scenario{Name: "rising-edge", Ctrl: ctrl, Steps: []Step{
		set(false), scanStep, expect(false),
		set(true), scanStep, expect(true),
		scanStep, expect(false), // Button still true, but the edge already fired
		set(false), scanStep, expect(false),
	}}
	if r := Run(s); !r.Passed {
		t.Fatalf("scenario failed at step %d: %v", r.Step, r.Err)
	}
}

func scanStep(c *Controller) error { return c.Scan() }

// --- Scenario 4: SFC batch sequencing (§3.4, §8) ---------------------

func TestScenarioSFCBatch(t *testing.T) {
	pou := &ir.POU{
		Name: "BatchChart",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Filled", Type: types.Bool}, {Name: "Mixed", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Filling", Type: types.Bool}, {Name: "Mixing", Type: types.Bool}, {Name: "Done", Type: types.Bool}}},
		},
		Chart: &ir.Chart{
			Steps: []ir.Step{
				{Name: "Fill", Initial: true, Actions: []ir.Stmt{assign(ref("Filling", types.Bool), boolLit(true))}},
				{Name: "Mix", Actions: []ir.Stmt{
					assign(ref("Filling", types.Bool), boolLit(false)),
					assign(ref("Mixing", types.Bool), boolLit(true)),
				}},
				{Name: "Complete", Actions: []ir.Stmt{
					assign(ref("Mixing", types.Bool), boolLit(false)),
					assign(ref("Done", types.Bool), boolLit(true)),
				}},
			},
			Transitions: []ir.Transition{
				{Source: "Fill", Target: "Mix", Condition: ref("Filled", types.Bool)},
				{Source: "Mix", Target: "Complete", Condition: ref("Mixed", types.Bool)},
			},
		},
	}
	ctrl, cerr := Simulate(singleProgram(pou), "BatchChart")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}

	check := func(filling, mixing, done bool) Step {
		return func(c *Controller) error {
			f, _ := c.Get("Filling")
			m, _ := c.Get("Mixing")
			d, _ := c.Get("Done")
			if f.Bool != filling || m.Bool != mixing || d.Bool != done {
				return errf("state = (%v,%v,%v), want (%v,%v,%v)", f.Bool, m.Bool, d.Bool, filling, mixing, done)
			}
			return nil
		}
	}
	setBool := func(name string, v bool) Step {
		return func(c *Controller) error { return c.Set(name, types.Value{Type: types.Bool, Bool: v}) }
	}

	// A firing transition deactivates its source, activates its
	// target, and runs the target step's actions in that same scan
	// (§4.6): Filled going true drives Filling false and Mixing true
	// within one scan, not across two.
	s := Scenario{Name: "sfc-batch", Ctrl: ctrl, Steps: []Step{
		scanStep, check(true, false, false), // Fill's actions ran; Filled still false
		setBool("Filled", true),
		scanStep, check(false, true, false), // Fill->Mix fires and Mix's actions run this scan
		setBool("Mixed", true),
		scanStep, check(false, false, true), // Mix->Complete fires and Complete's actions run this scan
	}}
	if r := Run(s); !r.Passed {
		t.Fatalf("scenario failed at step %d: %v", r.Step, r.Err)
	}
}

// --- Scenario 5: a derived function-block instance seeds both its own
// and its inherited declarations (§3.3, §4.6, §8). The flattening of
// an ancestor's executable body into the child — the other half of
// §8 scenario 5 — is exercised directly against internal/lowering.Flatten
// in that package's own test, where the super-call marker it inlines is
// constructible.

func TestScenarioInheritanceSeeding(t *testing.T) {
	base := &ir.POU{
		Name: "BaseMotor",
		Kind: ir.KindFunctionBlock,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Start", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Running", Type: types.Bool,
				Initial: &types.Value{Type: types.Bool, Bool: true}}}},
		},
	}
	child := &ir.POU{
		Name:   "PumpMotor",
		Kind:   ir.KindFunctionBlock,
		Parent: base,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "FlowAlarm", Type: types.Bool}}},
		},
	}
	program := &ir.POU{
		Name: "Plant",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleLocal, Vars: []ir.Variable{fbVar("Pump1", "PumpMotor")}},
		},
	}

	proj := &ir.Project{Name: "scenario", Pous: []*ir.POU{base, child, program}}
	ctrl, cerr := Simulate(proj, "Plant")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}
	running, ok := ctrl.Get("Pump1.Running")
	if !ok {
		t.Fatal("Pump1.Running not found — inherited output not seeded into the child instance")
	}
	if !running.Bool {
		t.Fatal("Pump1.Running = false, want true (BaseMotor's declared initial value)")
	}
	if _, ok := ctrl.Get("Pump1.FlowAlarm"); !ok {
		t.Fatal("Pump1.FlowAlarm not found — child's own declarations missing")
	}
}

// --- Scenario 6: project-level validation catches a duplicate POU name (§3.5, §4.5, §8) ---

func TestScenarioProjectValidation(t *testing.T) {
	a := &ir.POU{Name: "Dup", Kind: ir.KindProgram}
	b := &ir.POU{Name: "Dup", Kind: ir.KindProgram}

	pb := project.NewBuilder("scenario")
	pb.AddPOU(a)
	pb.AddPOU(b)
	pb.AddTask(ir.Task{Name: "Main", Schedule: ir.Schedule{Kind: ir.ScheduleContinuous}, PouRefs: []string{"Dup"}})

	_, errs := project.Compile(pb)
	if !errs.HasErrors() {
		t.Fatal("expected a DuplicateName error for two POUs sharing a name")
	}
	found := false
	for _, e := range errs.Errors {
		if e.Kind == diag.DuplicateName {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateName error, got: %v", errs.Error())
	}
}

func errf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

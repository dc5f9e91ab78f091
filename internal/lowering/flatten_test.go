package lowering

import (
	"testing"

	"plx/internal/ir"
	"plx/internal/sim"
	"plx/internal/types"
)

// TestFlattenInheritance exercises §8 scenario 5: a child function
// block's super().logic() call expands to its parent's body, ancestor
// declarations merge ahead of the child's own, and the flattened POU
// runs standalone with no remaining Parent link — the path vendors
// without native EXTENDS (L5X, SimaticML) depend on.
func TestFlattenInheritance(t *testing.T) {
	runningRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Running"}}, ResultType: types.Bool}
	startRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Start"}}, ResultType: types.Bool}
	alarmRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "FlowAlarm"}}, ResultType: types.Bool}

	base := &ir.POU{
		Name: "BaseMotor",
		Kind: ir.KindFunctionBlock,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Start", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Running", Type: types.Bool}}},
		},
		Body: []ir.Stmt{
			&ir.Assign{Target: runningRef, Value: startRef},
		},
	}
	child := &ir.POU{
		Name:   "PumpMotor",
		Kind:   ir.KindFunctionBlock,
		Parent: base,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "FlowAlarm", Type: types.Bool}}},
		},
		Body: []ir.Stmt{
			&superCallMarker{},
			&ir.Assign{Target: alarmRef, Value: runningRef},
		},
	}

	flat, err := Flatten(child)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if flat.Parent != nil {
		t.Fatal("flattened POU must not carry a Parent link")
	}
	if len(flat.Body) != 2 {
		t.Fatalf("flattened body = %d statements, want 2 (inherited assign + child's own)", len(flat.Body))
	}
	if flat.VarByName("Start") == nil || flat.VarByName("Running") == nil || flat.VarByName("FlowAlarm") == nil {
		t.Fatal("flattened POU is missing a declaration from either the ancestor or the child")
	}

	program := &ir.POU{
		Name: "Plant",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleLocal, Vars: []ir.Variable{{Name: "Pump1", Type: &types.FBInstance{FBName: "PumpMotor"}}}},
		},
		Body: []ir.Stmt{
			&ir.FBInvokeStmt{Invoke: &ir.FBInvoke{
				InstancePath: []ir.PathSegment{&ir.FieldSegment{Name: "Pump1"}},
				Args:         []ir.Arg{{Name: "Start", Value: &ir.Literal{Value: types.Value{Type: types.Bool, Bool: true}}}},
			}},
		},
	}

	proj := &ir.Project{Name: "scenario", Pous: []*ir.POU{flat, program}}
	ctrl, cerr := sim.Simulate(proj, "Plant")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}
	if err := ctrl.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	running, _ := ctrl.Get("Pump1.Running")
	if !running.Bool {
		t.Fatal("Pump1.Running = false, want true — inherited assignment did not run")
	}
	alarm, _ := ctrl.Get("Pump1.FlowAlarm")
	if !alarm.Bool {
		t.Fatal("Pump1.FlowAlarm = false, want true — child's own assignment, reading the inherited Running, did not run")
	}
}

package lowering

import (
	"testing"

	"plx/internal/ast"
	"plx/internal/ir"
	"plx/internal/sim"
	"plx/internal/types"
)

// TestSentinelDelayedConvertsSecondsToDuration exercises the authored-
// source path of §8 scenario 1: `delayed(cmd, seconds=5)` must not
// raise Q until five seconds of simulated time have elapsed. Lowering
// a bare numeric seconds= literal straight into PT without a unit
// conversion would make the timer's PT read as 5ns, firing Q on the
// very first scan.
func TestSentinelDelayedConvertsSecondsToDuration(t *testing.T) {
	body := []ast.Stmt{
		ast.ExprS(ast.CallFn(ast.Ident("delayed"),
			ast.Named("cond", ast.Ident("Cmd")),
			ast.Named("seconds", ast.Lit(5)))),
	}

	reg := NewRegistry()
	blocks := []ir.DeclBlock{
		{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Cmd", Type: types.Bool}}},
	}
	res := Lower(Input{POUName: "Main", Kind: ir.KindProgram, Blocks: blocks, Body: body}, reg)
	if res.Errors.HasErrors() {
		t.Fatalf("Lower: %v", res.Errors.Error())
	}

	proj := &ir.Project{Name: "scenario", Pous: []*ir.POU{res.POU}}
	ctrl, cerr := sim.Simulate(proj, "Main")
	if cerr != nil {
		t.Fatalf("Simulate: %v", cerr)
	}

	if err := ctrl.Set("Cmd", types.Value{Type: types.Bool, Bool: true}); err != nil {
		t.Fatalf("Set Cmd: %v", err)
	}
	if err := ctrl.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if q, ok := ctrl.Get("__ton_0.Q"); !ok || q.Bool {
		t.Fatal("timer Q fired on the first scan — seconds=5 was not converted to a 5-second duration")
	}

	ctrl.Tick(types.NewDuration(types.DurationComponents{Seconds: 5}))
	if err := ctrl.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if q, ok := ctrl.Get("__ton_0.Q"); !ok || !q.Bool {
		t.Fatal("timer Q did not fire after a 5-second tick")
	}
}

package project

import (
	"testing"

	"plx/internal/diag"
	"plx/internal/ir"
)

func TestCompileCatchesDanglingTaskReference(t *testing.T) {
	b := NewBuilder("plant")
	b.AddTask(ir.Task{
		Name:     "Main",
		Schedule: ir.Schedule{Kind: ir.ScheduleContinuous},
		PouRefs:  []string{"NoSuchPOU"},
	})

	_, errs := Compile(b)
	if !hasKind(errs, diag.DanglingReference) {
		t.Fatalf("expected a DanglingReference error, got: %v", errs.Error())
	}
}

func TestCompileCatchesInheritanceCycle(t *testing.T) {
	a := &ir.POU{Name: "A", Kind: ir.KindFunctionBlock}
	c := &ir.POU{Name: "C", Kind: ir.KindFunctionBlock}
	a.Parent = c
	c.Parent = a // A -> C -> A

	b := NewBuilder("plant")
	b.AddPOU(a)
	b.AddPOU(c)

	_, errs := Compile(b)
	if !hasKind(errs, diag.InheritanceCycle) {
		t.Fatalf("expected an InheritanceCycle error, got: %v", errs.Error())
	}
}

func TestCompileRejectsNonPositivePeriodicTask(t *testing.T) {
	b := NewBuilder("plant")
	b.AddTask(ir.Task{
		Name:     "Fast",
		Schedule: ir.Schedule{Kind: ir.SchedulePeriodic, Period: 0},
	})

	_, errs := Compile(b)
	if !hasKind(errs, diag.InvalidSchedule) {
		t.Fatalf("expected an InvalidSchedule error, got: %v", errs.Error())
	}
}

func TestCompileSucceedsOnAWellFormedProject(t *testing.T) {
	pou := &ir.POU{Name: "Main", Kind: ir.KindProgram}
	b := NewBuilder("plant")
	b.AddPOU(pou)
	b.AddTask(ir.Task{
		Name:     "Cyclic",
		Schedule: ir.Schedule{Kind: ir.SchedulePeriodic, Period: 10_000_000},
		PouRefs:  []string{"Main"},
	})

	proj, errs := Compile(b)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if proj.Name != "plant" || proj.PouByName("Main") == nil {
		t.Fatalf("compiled project missing expected name/POU: %+v", proj)
	}
}

func hasKind(errs *diag.ErrorList, kind diag.Kind) bool {
	for _, e := range errs.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

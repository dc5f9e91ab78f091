package descriptors

import (
	"testing"

	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

func TestMaterializeGroupsByFirstSeenRoleOrder(t *testing.T) {
	s := NewSet()
	if err := s.Declare(Descriptor{Name: "Q", Role: ir.RoleOutput, Type: types.Bool}); err != nil {
		t.Fatalf("Declare Q: %v", err)
	}
	if err := s.Declare(Descriptor{Name: "Start", Role: ir.RoleInput, Type: types.Bool}); err != nil {
		t.Fatalf("Declare Start: %v", err)
	}
	if err := s.Declare(Descriptor{Name: "Stop", Role: ir.RoleInput, Type: types.Bool}); err != nil {
		t.Fatalf("Declare Stop: %v", err)
	}

	blocks, err := s.Materialize()
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Role != ir.RoleOutput {
		t.Fatalf("first block role = %s, want output (first-seen order)", blocks[0].Role)
	}
	if blocks[1].Role != ir.RoleInput || len(blocks[1].Vars) != 2 {
		t.Fatalf("second block = %+v, want input block with 2 vars in declaration order", blocks[1])
	}
	if blocks[1].Vars[0].Name != "Start" || blocks[1].Vars[1].Name != "Stop" {
		t.Fatalf("input vars out of declaration order: %+v", blocks[1].Vars)
	}
}

func TestMaterializeRejectsDuplicateNameWithinRole(t *testing.T) {
	s := NewSet()
	mustDeclare(t, s, Descriptor{Name: "X", Role: ir.RoleLocal, Type: types.Int32})
	mustDeclare(t, s, Descriptor{Name: "X", Role: ir.RoleLocal, Type: types.Int32})

	if _, err := s.Materialize(); err == nil || err.Kind != diag.DuplicateName {
		t.Fatalf("expected a DuplicateName error, got %v", err)
	}
}

func TestMaterializeAllowsSameNameAcrossDifferentRoles(t *testing.T) {
	// Variable uniqueness is scoped per role here; cross-block name
	// collisions are a project/lowering-level concern, not this layer's.
	s := NewSet()
	mustDeclare(t, s, Descriptor{Name: "X", Role: ir.RoleInput, Type: types.Int32})
	mustDeclare(t, s, Descriptor{Name: "X", Role: ir.RoleOutput, Type: types.Int32})

	if _, err := s.Materialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeclareRejectsIncompatibleInitial(t *testing.T) {
	s := NewSet()
	err := s.Declare(Descriptor{
		Name: "Limit", Role: ir.RoleConstant, Type: types.Bool,
		Initial: &types.Value{Type: types.Int32, Int: 5},
	})
	if err == nil || err.Kind != diag.TypeMismatch {
		t.Fatalf("expected a TypeMismatch error for an INT initial on a BOOL, got %v", err)
	}
}

func mustDeclare(t *testing.T, s *Set, d Descriptor) {
	t.Helper()
	if err := s.Declare(d); err != nil {
		t.Fatalf("Declare(%+v): %v", d, err)
	}
}

package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"plx/internal/ir"
	"plx/internal/types"
)

// sampleProject builds a project whose POU has a non-empty statement
// body (an If with a bitwise-boolean condition and nested assigns), a
// struct and an enum data type (one carrying a defaulted field), a
// second POU driven by an SFC chart instead of a body, and a task with
// an explicit priority — enough surface to exercise every branch of
// the wire format (§6.3).
func sampleProject() *ir.Project {
	limits := &types.Struct{
		Name: "Limits",
		Fields: []types.StructField{
			{Name: "Max", Type: types.Float32, Default: types.Value{Type: types.Float32, Float: 100}},
			{Name: "Min", Type: types.Float32},
		},
	}
	mode := &types.Enum{
		Name: "Mode",
		Variants: []types.EnumVariant{
			{Name: "Auto", Value: 0},
			{Name: "Manual", Value: 1},
		},
	}
	modeInitial := types.Value{Type: mode, Enum: &mode.Variants[0]}

	startRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Start"}}, ResultType: types.Bool}
	estopRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "EStop"}}, ResultType: types.Bool}
	qRef := &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Q"}}, ResultType: types.Bool}
	limMaxRef := &ir.VarRef{
		Segments:   []ir.PathSegment{&ir.FieldSegment{Name: "Lim"}, &ir.FieldSegment{Name: "Max"}},
		ResultType: types.Float32,
	}

	priority := 10

	main := &ir.POU{
		Name: "Main",
		Kind: ir.KindProgram,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Start", Type: types.Bool}}},
			{Role: ir.RoleOutput, Vars: []ir.Variable{{Name: "Q", Type: types.Bool}}},
			{Role: ir.RoleLocal, Vars: []ir.Variable{
				{Name: "Lim", Type: limits, Description: "envelope"},
				{Name: "Mode", Type: mode, Initial: &modeInitial},
			}},
		},
		Body: []ir.Stmt{
			&ir.If{
				Cond: &ir.Binary{
					Op:         ir.OpAnd,
					Left:       startRef,
					Right:      &ir.Unary{Op: ir.OpNot, Operand: estopRef, ResultType: types.Bool},
					ResultType: types.Bool,
				},
				Then: []ir.Stmt{
					&ir.Assign{Target: qRef, Value: &ir.Literal{Value: types.Value{Type: types.Bool, Bool: true}}},
					&ir.Assign{
						Target: limMaxRef,
						Value: &ir.Binary{
							Op: ir.OpAdd, Left: limMaxRef,
							Right:      &ir.Literal{Value: types.Value{Type: types.Float32, Float: 1}},
							ResultType: types.Float32,
						},
					},
				},
				ElseIfs: []ir.ElseIf{
					{
						Cond: &ir.Binary{Op: ir.OpEq, Left: &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Mode"}}, ResultType: mode}, Right: &ir.EnumRef{EnumType: mode, Variant: "Manual"}, ResultType: types.Bool},
						Body: []ir.Stmt{&ir.Nop{}},
					},
				},
				Else: []ir.Stmt{
					&ir.Assign{Target: qRef, Value: &ir.Literal{Value: types.Value{Type: types.Bool, Bool: false}}},
				},
			},
		},
	}

	blender := &ir.POU{
		Name: "Blender",
		Kind: ir.KindFunctionBlock,
		Blocks: []ir.DeclBlock{
			{Role: ir.RoleInput, Vars: []ir.Variable{{Name: "Start", Type: types.Bool}}},
		},
		Chart: &ir.Chart{
			Steps: []ir.Step{
				{Name: "Idle", Initial: true, Actions: []ir.Stmt{&ir.Nop{}}},
				{Name: "Running", Actions: []ir.Stmt{&ir.Nop{}}},
			},
			Transitions: []ir.Transition{
				{Source: "Idle", Target: "Running", Condition: &ir.VarRef{Segments: []ir.PathSegment{&ir.FieldSegment{Name: "Start"}}, ResultType: types.Bool}},
			},
		},
	}

	return &ir.Project{
		Name: "Plant",
		Tasks: []ir.Task{
			{
				Name:     "Cyclic",
				Schedule: ir.Schedule{Kind: ir.SchedulePeriodic, Period: 10_000_000},
				Priority: &priority,
				PouRefs:  []string{"Main", "Blender"},
			},
		},
		Pous:      []*ir.POU{main, blender},
		DataTypes: []types.Type{limits, mode},
		Globals: []ir.GlobalBlock{
			{Name: "Plant", Vars: []ir.Variable{{Name: "EStop", Type: types.Bool}}},
		},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	proj := sampleProject()
	data, err := Marshal(proj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(proj, got) {
		t.Fatalf("round trip is not the identity:\n before: %#v\n after:  %#v", proj, got)
	}
}

func TestUnmarshalRejectsNewerSchemaVersion(t *testing.T) {
	data := []byte(`{"schema_version": 99, "name": "future"}`)
	if _, err := Unmarshal(data); err == nil {
		t.Fatal("expected Unmarshal to reject a schema version newer than CurrentSchemaVersion")
	}
}

func TestUnmarshalRejectsMalformedJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Fatal("expected Unmarshal to reject malformed JSON")
	}
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "projects.db")
	s, err := OpenSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer s.Close()

	proj := sampleProject()
	if err := s.Save(proj); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.LoadProject("Plant")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if !reflect.DeepEqual(proj, got) {
		t.Fatalf("loaded project is not the identity:\n before: %#v\n after:  %#v", proj, got)
	}

	names, err := s.POUNames("Plant")
	if err != nil {
		t.Fatalf("POUNames: %v", err)
	}
	if len(names) != 2 || names[0] != "Blender" || names[1] != "Main" {
		t.Fatalf("POUNames = %v, want [Blender Main]", names)
	}
}

func TestSQLiteStoreSaveOverwritesOnConflict(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "projects.db")
	s, err := OpenSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer s.Close()

	proj := sampleProject()
	if err := s.Save(proj); err != nil {
		t.Fatalf("Save 1: %v", err)
	}

	proj.Pous = append(proj.Pous, &ir.POU{Name: "Extra", Kind: ir.KindFunction})
	if err := s.Save(proj); err != nil {
		t.Fatalf("Save 2: %v", err)
	}

	names, err := s.POUNames("Plant")
	if err != nil {
		t.Fatalf("POUNames: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("POUNames after re-save = %v, want 3 entries (stale index row must not linger)", names)
	}
}

func TestSQLiteStoreLoadMissingProject(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "projects.db")
	s, err := OpenSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer s.Close()

	if _, err := s.LoadProject("NoSuchProject"); err == nil {
		t.Fatal("expected LoadProject to error for a project never saved")
	}
}

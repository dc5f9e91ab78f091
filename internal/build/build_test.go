package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"plx/internal/ast"
	"plx/internal/types"
)

// stubParser returns a fixed AST regardless of the source text handed
// to it, standing in for the embedding application's real
// host-language parser (§1 Non-goals).
type stubParser struct {
	stmts []ast.Stmt
}

func (p *stubParser) Parse(source string) ([]ast.Stmt, error) {
	return p.stmts, nil
}

func writeManifest(t *testing.T, dir string, m ProjectManifest) {
	t.Helper()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestInitWritesLoadableManifest(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "Demo"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "Demo" {
		t.Fatalf("Name = %q, want Demo", m.Name)
	}
	if len(m.Pous) != 1 || m.Pous[0].Name != "Main" {
		t.Fatalf("unexpected Pous: %+v", m.Pous)
	}
	if len(m.Tasks) != 1 || m.Tasks[0].Schedule != "periodic" {
		t.Fatalf("unexpected Tasks: %+v", m.Tasks)
	}
}

func TestLoadManifestRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(`{"pous":[]}`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := LoadManifest(dir); err == nil {
		t.Fatal("expected LoadManifest to reject a manifest with no project name")
	}
}

func TestLoadManifestRejectsMissingFile(t *testing.T) {
	if _, err := LoadManifest(t.TempDir()); err == nil {
		t.Fatal("expected LoadManifest to error when plx.json is absent")
	}
}

func TestBuilderCompileAndSimulate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.logic"), []byte("Q := Start"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	writeManifest(t, dir, ProjectManifest{
		Name:   "Plant",
		Vendor: "beckhoff-tcpou",
		Parser: "stub",
		Pous: []POUManifest{
			{
				Name:   "Main",
				Kind:   "program",
				Source: "main.logic",
				Vars: []VarManifest{
					{Name: "Start", Role: "input", Type: "BOOL"},
					{Name: "Q", Role: "output", Type: "BOOL"},
				},
			},
		},
		Tasks: []TaskManifest{
			{Name: "Cyclic", Schedule: "periodic", PeriodMs: 100, Pous: []string{"Main"}},
		},
	})

	parser := &stubParser{stmts: []ast.Stmt{
		ast.Assign(ast.Ident("Q"), ast.Ident("Start")),
	}}
	b, err := NewBuilder(dir, parser)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	proj, errs := b.Compile()
	if errs.HasErrors() {
		t.Fatalf("Compile: %v", errs.Error())
	}
	if proj.PouByName("Main") == nil {
		t.Fatal("compiled project is missing the Main POU")
	}

	ctrl, err := b.Simulate("Main")
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if err := ctrl.Set("Start", types.Value{Type: types.Bool, Bool: true}); err != nil {
		t.Fatalf("Set Start: %v", err)
	}
	if err := ctrl.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	q, ok := ctrl.Get("Q")
	if !ok {
		t.Fatal("Get Q: no such variable")
	}
	if !q.Bool {
		t.Fatal("Q = false after Start=true and one scan, want true")
	}
}

func TestBuilderEmitWritesVendorOutput(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.logic"), []byte("Q := Start"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	writeManifest(t, dir, ProjectManifest{
		Name:   "Plant",
		Vendor: "rockwell-l5x",
		Parser: "stub",
		Pous: []POUManifest{
			{
				Name:   "Main",
				Kind:   "program",
				Source: "main.logic",
				Vars: []VarManifest{
					{Name: "Start", Role: "input", Type: "BOOL"},
					{Name: "Q", Role: "output", Type: "BOOL"},
				},
			},
		},
		Tasks: []TaskManifest{
			{Name: "Cyclic", Schedule: "periodic", PeriodMs: 100, Pous: []string{"Main"}},
		},
	})

	parser := &stubParser{stmts: []ast.Stmt{
		ast.Assign(ast.Ident("Q"), ast.Ident("Start")),
	}}
	b, err := NewBuilder(dir, parser)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	outPath := filepath.Join(dir, "out.l5x")
	if err := b.Emit(outPath); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read emitted output: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Emit wrote an empty file")
	}
}

func TestBuilderCompileReportsDiagnosticsOnUnknownSource(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, ProjectManifest{
		Name:   "Plant",
		Vendor: "beckhoff-tcpou",
		Parser: "stub",
		Pous: []POUManifest{
			{Name: "Main", Kind: "program", Source: "missing.logic"},
		},
	})
	parser := &stubParser{}
	b, err := NewBuilder(dir, parser)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	_, errs := b.Compile()
	if !errs.HasErrors() {
		t.Fatal("expected Compile to report a diagnostic for an unreadable source file")
	}
}

func TestBuilderCompileWiresGlobalBlocks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.logic"), []byte("Q := Start"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	writeManifest(t, dir, ProjectManifest{
		Name:   "Plant",
		Vendor: "beckhoff-tcpou",
		Parser: "stub",
		Pous: []POUManifest{
			{
				Name:   "Main",
				Kind:   "program",
				Source: "main.logic",
				Vars: []VarManifest{
					{Name: "Start", Role: "input", Type: "BOOL"},
					{Name: "Q", Role: "output", Type: "BOOL"},
				},
			},
		},
		Globals: []GlobalManifest{
			{Name: "Plant", Vars: []VarManifest{{Name: "EStop", Type: "BOOL"}}},
		},
	})

	parser := &stubParser{stmts: []ast.Stmt{
		ast.Assign(ast.Ident("Q"), ast.Ident("Start")),
	}}
	b, err := NewBuilder(dir, parser)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	proj, errs := b.Compile()
	if errs.HasErrors() {
		t.Fatalf("Compile: %v", errs.Error())
	}
	if len(proj.Globals) != 1 || proj.Globals[0].Name != "Plant" {
		t.Fatalf("unexpected Globals: %+v", proj.Globals)
	}
	if len(proj.Globals[0].Vars) != 1 || proj.Globals[0].Vars[0].Name != "EStop" {
		t.Fatalf("global block is missing its EStop variable: %+v", proj.Globals[0].Vars)
	}
}

func TestNewBuilderForCLIRejectsUnregisteredParser(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, ProjectManifest{Name: "Plant", Parser: "no-such-parser-xyz"})
	if _, err := NewBuilderForCLI(dir); err == nil {
		t.Fatal("expected NewBuilderForCLI to reject a manifest naming an unregistered parser")
	}
}

func TestBuilderCleanRemovesOutputDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "artifact.l5x"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	b := &Builder{Manifest: &ProjectManifest{Name: "Plant"}}
	if err := b.Clean(outDir); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatal("Clean did not remove the output directory")
	}
}

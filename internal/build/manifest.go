// Package build orchestrates a plx project end to end: load its
// manifest, lower every POU's authored source, assemble and validate
// the Project IR, then simulate and/or emit vendor output (component
// I). The manifest shape and Builder/loadManifest split follow the
// teacher's internal/build/builder.go (ProjectManifest loaded from
// sentra.json); here the manifest is plx.json and points at POU source
// files instead of a single entry-point script, since plx has no
// module/import graph to resolve (§3.7).
package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// VarManifest declares one variable in a POU's declaration section, the
// manifest-level counterpart of a descriptors.Descriptor (§3.7,
// component C) for POUs whose declarations are expressed in plx.json
// rather than in the host language itself.
type VarManifest struct {
	Name    string `json:"name"`
	Role    string `json:"role"` // "input" | "output" | "inout" | "local" | "temp" | "constant"
	Type    string `json:"type"`
	Initial string `json:"initial,omitempty"`
}

// POUManifest names one POU's authored source file and the method
// used for its body (functions/programs have a single "logic" method;
// function-blocks may declare more, though plx lowers one at a time).
type POUManifest struct {
	Name       string        `json:"name"`
	Kind       string        `json:"kind"` // "function" | "function_block" | "program"
	Source     string        `json:"source"`
	Parent     string        `json:"parent,omitempty"`
	ReturnType string        `json:"return_type,omitempty"`
	Vars       []VarManifest `json:"vars,omitempty"`
}

// TaskManifest mirrors ir.Task for manifest-level declaration.
type TaskManifest struct {
	Name     string   `json:"name"`
	Schedule string   `json:"schedule"` // "periodic" | "event" | "continuous"
	PeriodMs int64    `json:"period_ms,omitempty"`
	Source   string   `json:"source,omitempty"`
	Pous     []string `json:"pous"`
}

// GlobalManifest declares one named block of global variables, the
// manifest-level counterpart of ir.GlobalBlock (§3.3).
type GlobalManifest struct {
	Name string        `json:"name"`
	Vars []VarManifest `json:"vars"`
}

// ProjectManifest is plx.json: the declarative description of a
// project's POUs, tasks, globals, and target vendor (§3.7).
type ProjectManifest struct {
	Name    string           `json:"name"`
	Vendor  string           `json:"vendor"` // "rockwell-l5x" | "siemens-simaticml" | "beckhoff-tcpou"
	Parser  string           `json:"parser"` // name a host-language Parser was lowering.RegisterParser'd under
	Pous    []POUManifest    `json:"pous"`
	Tasks   []TaskManifest   `json:"tasks"`
	Globals []GlobalManifest `json:"globals,omitempty"`
	rootDir string
}

const ManifestFileName = "plx.json"

// LoadManifest reads and parses projectRoot/plx.json.
func LoadManifest(projectRoot string) (*ProjectManifest, error) {
	path := filepath.Join(projectRoot, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("build: read manifest: %w", err)
	}
	var m ProjectManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("build: parse manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("build: manifest %s has no project name", path)
	}
	m.rootDir = projectRoot
	return &m, nil
}

// SourcePath resolves a POU's source file relative to the manifest's
// project root.
func (m *ProjectManifest) SourcePath(pou POUManifest) string {
	return filepath.Join(m.rootDir, pou.Source)
}

// Init writes a minimal starter plx.json to projectRoot, mirroring the
// teacher's `sentra init` scaffold (cmd/sentra/commands/build.go
// InitCommand), adapted to plx's manifest shape.
func Init(projectRoot, name string) error {
	m := ProjectManifest{
		Name:   name,
		Vendor: "beckhoff-tcpou",
		Pous:   []POUManifest{{Name: "Main", Kind: "program", Source: "main.logic"}},
		Tasks:  []TaskManifest{{Name: "MainTask", Schedule: "periodic", PeriodMs: 100, Pous: []string{"Main"}}},
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectRoot, ManifestFileName), data, 0o644)
}

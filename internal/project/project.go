// Package project implements project assembly (component E): composing
// POUs, data types, global variables, and tasks into a Project IR and
// validating cross-references (§4.5).
package project

import (
	"fmt"

	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// Builder accumulates the pieces of a project before Compile validates
// and freezes them into an ir.Project.
type Builder struct {
	Name      string
	Tasks     []ir.Task
	Pous      []*ir.POU
	DataTypes []types.Type
	Globals   []ir.GlobalBlock
}

// NewBuilder starts an empty project named name.
func NewBuilder(name string) *Builder { return &Builder{Name: name} }

func (b *Builder) AddTask(t ir.Task)           { b.Tasks = append(b.Tasks, t) }
func (b *Builder) AddPOU(p *ir.POU)            { b.Pous = append(b.Pous, p) }
func (b *Builder) AddDataType(t types.Type)    { b.DataTypes = append(b.DataTypes, t) }
func (b *Builder) AddGlobalBlock(g ir.GlobalBlock) { b.Globals = append(b.Globals, g) }

// Compile validates the accumulated project (§4.5) and returns a fully
// checked Project IR, or an aggregate ErrorList listing every violation
// found — compilation does not short-circuit on the first failure
// (best-effort multi-error reporting, §4.5, §7).
func Compile(b *Builder) (*ir.Project, *diag.ErrorList) {
	errs := &diag.ErrorList{}

	checkUniqueNames("POU", pouNames(b.Pous), errs)
	checkUniqueNames("task", taskNames(b.Tasks), errs)
	checkUniqueNames("data type", typeNames(b.DataTypes), errs)
	checkUniqueNames("global block", globalNames(b.Globals), errs)

	pouSet := map[string]*ir.POU{}
	for _, p := range b.Pous {
		pouSet[p.Name] = p
	}
	for _, t := range b.Tasks {
		if t.Schedule.Kind == ir.SchedulePeriodic && t.Schedule.Period <= 0 {
			errs.Add(diag.New(diag.InvalidSchedule,
				fmt.Sprintf("task %q has a non-positive period", t.Name)))
		}
		for _, ref := range t.PouRefs {
			if _, ok := pouSet[ref]; !ok {
				errs.Add(diag.New(diag.DanglingReference,
					fmt.Sprintf("task %q references missing POU %q", t.Name, ref)))
			}
		}
	}

	typeSet := map[string]types.Type{}
	for _, t := range b.DataTypes {
		typeSet[typeName(t)] = t
	}
	for _, g := range b.Globals {
		for _, v := range g.Vars {
			if s, ok := v.Type.(*types.Struct); ok {
				if _, known := typeSet[s.Name]; !known {
					errs.Add(diag.New(diag.DanglingReference,
						fmt.Sprintf("global %q references missing type %q", v.Name, s.Name)))
				}
			}
		}
	}

	if cycle := structDependencyCycle(b.DataTypes); cycle != "" {
		errs.Add(diag.New(diag.InheritanceCycle,
			"struct field type graph has a cycle at "+cycle))
	}
	if cycle := inheritanceCycle(b.Pous); cycle != "" {
		errs.Add(diag.New(diag.InheritanceCycle,
			"function-block inheritance graph has a cycle at "+cycle))
	}

	for _, p := range b.Pous {
		checkResolvedTypeRefs(p, typeSet, errs)
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &ir.Project{
		Name:      b.Name,
		Tasks:     b.Tasks,
		Pous:      b.Pous,
		DataTypes: b.DataTypes,
		Globals:   b.Globals,
	}, errs
}

func pouNames(pous []*ir.POU) []string {
	out := make([]string, len(pous))
	for i, p := range pous {
		out[i] = p.Name
	}
	return out
}

func taskNames(tasks []ir.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func typeName(t types.Type) string {
	switch tt := t.(type) {
	case *types.Struct:
		return tt.Name
	case *types.Enum:
		return tt.Name
	default:
		return t.String()
	}
}

func typeNames(types_ []types.Type) []string {
	out := make([]string, len(types_))
	for i, t := range types_ {
		out[i] = typeName(t)
	}
	return out
}

func globalNames(globals []ir.GlobalBlock) []string {
	out := make([]string, len(globals))
	for i, g := range globals {
		out[i] = g.Name
	}
	return out
}

func checkUniqueNames(kind string, names []string, errs *diag.ErrorList) {
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			errs.Add(diag.New(diag.DuplicateName, fmt.Sprintf("duplicate %s name %q", kind, n)))
			continue
		}
		seen[n] = true
	}
}

// inheritanceCycle detects a cycle in the function-block parent graph
// and returns the POU name it was found at, or "" if acyclic (§3.5,
// §4.5). internal/lowering.Flatten separately rejects cycles at
// flatten time; this check lets project assembly catch one even for a
// vendor (TcPOU) that never runs the flattening pass.
func inheritanceCycle(pous []*ir.POU) string {
	for _, p := range pous {
		seen := map[*ir.POU]bool{p: true}
		cur := p.Parent
		for cur != nil {
			if seen[cur] {
				return p.Name
			}
			seen[cur] = true
			cur = cur.Parent
		}
	}
	return ""
}

// structDependencyCycle detects a cycle in struct field types and
// returns the struct name it was found at, or "" if the graph is a DAG
// (§3.5).
func structDependencyCycle(dataTypes []types.Type) string {
	structs := map[string]*types.Struct{}
	for _, t := range dataTypes {
		if s, ok := t.(*types.Struct); ok {
			structs[s.Name] = s
		}
	}
	state := map[string]int{} // 0=unvisited, 1=in-progress, 2=done
	var visit func(name string) bool
	visit = func(name string) bool {
		s, ok := structs[name]
		if !ok {
			return false
		}
		if state[name] == 1 {
			return true
		}
		if state[name] == 2 {
			return false
		}
		state[name] = 1
		for _, f := range s.Fields {
			if fs, ok := f.Type.(*types.Struct); ok {
				if visit(fs.Name) {
					return true
				}
			}
		}
		state[name] = 2
		return false
	}
	for name := range structs {
		if visit(name) {
			return name
		}
	}
	return ""
}

// checkResolvedTypeRefs confirms every variable's struct/enum type
// reference resolves against the project's declared data types (§4.5
// "every POU's type references resolve").
func checkResolvedTypeRefs(p *ir.POU, typeSet map[string]types.Type, errs *diag.ErrorList) {
	for _, v := range p.AllVars() {
		switch t := v.Type.(type) {
		case *types.Struct:
			if _, ok := typeSet[t.Name]; !ok {
				errs.Add(diag.New(diag.DanglingReference,
					fmt.Sprintf("%s.%s references undeclared type %q", p.Name, v.Name, t.Name)))
			}
		case *types.Enum:
			if _, ok := typeSet[t.Name]; !ok {
				errs.Add(diag.New(diag.DanglingReference,
					fmt.Sprintf("%s.%s references undeclared type %q", p.Name, v.Name, t.Name)))
			}
		}
	}
}

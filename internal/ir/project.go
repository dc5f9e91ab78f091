package ir

import "plx/internal/types"

// GlobalBlock is a named, role-tagged block of project-level global
// variables (§3.5).
type GlobalBlock struct {
	Name string
	Vars []Variable
}

// Project is the top-level container: tasks, POUs, user types, and
// global blocks (§3.5). Projects own their constituent POUs and types
// (§3.6); a Project returned by internal/project.Compile has already
// passed every invariant check in §3.5/§4.5 and is safe to simulate or
// hand to a vendor emitter.
type Project struct {
	Name      string
	Tasks     []Task
	Pous      []*POU
	DataTypes []types.Type
	Globals   []GlobalBlock
}

// PouByName looks up a POU by name.
func (p *Project) PouByName(name string) *POU {
	for _, pou := range p.Pous {
		if pou.Name == name {
			return pou
		}
	}
	return nil
}

// TaskByName looks up a task by name.
func (p *Project) TaskByName(name string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].Name == name {
			return &p.Tasks[i]
		}
	}
	return nil
}

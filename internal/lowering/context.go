package lowering

import (
	"fmt"

	"plx/internal/ast"
	"plx/internal/diag"
	"plx/internal/types"
)

// Context carries everything lowering one POU's body needs: the
// enclosing POU's flat variable namespace (`self.X` resolves into it,
// §4.2 step 3), the project-wide Registry of callables, and the
// per-call-site synthetic-instance allocator (§4.2 step 5).
type Context struct {
	POUName   string
	Vars      map[string]types.Type
	Writable  map[string]bool // false for input/constant blocks
	Registry  *Registry
	Synth     *SynthAllocator
	Errors    *diag.ErrorList
	inFunction bool // true when lowering a function body (enables `return`)
}

// NewContext builds a lowering Context for a POU named pouName.
func NewContext(pouName string, reg *Registry, inFunction bool) *Context {
	return &Context{
		POUName:    pouName,
		Vars:       map[string]types.Type{},
		Writable:   map[string]bool{},
		Registry:   reg,
		Synth:      NewSynthAllocator(),
		Errors:     &diag.ErrorList{},
		inFunction: inFunction,
	}
}

// DeclareVar registers a variable visible to `self.X`/bare-name
// resolution within the POU being lowered.
func (c *Context) DeclareVar(name string, t types.Type, writable bool) {
	c.Vars[name] = t
	c.Writable[name] = writable
}

func (c *Context) spanOf(p ast.Position) diag.Span {
	return diag.Span{File: p.File, Line: p.Line, Column: p.Column}
}

func (c *Context) errorf(kind diag.Kind, at ast.Position, format string, args ...interface{}) {
	c.Errors.Add(diag.At(kind, c.spanOf(at), fmt.Sprintf(format, args...)))
}

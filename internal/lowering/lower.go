package lowering

import (
	"plx/internal/ast"
	"plx/internal/descriptors"
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// SourceProvider retrieves the verbatim source text of a POU's
// logic/chart/method body (§4.2 step 1). The textual source-parser of
// the authoring language is an external collaborator (§1); plx only
// depends on this narrow retrieval contract.
type SourceProvider interface {
	// Source returns the method's source text, or ok=false if it
	// cannot be retrieved (e.g. the method body is generated).
	Source(pouName, methodName string) (text string, ok bool)
}

// Parser performs the purely syntactic parse of a method's source text
// into the authored-source AST (§4.2 step 2); no host-language
// execution occurs. Implementations are supplied by the embedding
// application (the real textual parser), never by plx itself.
type Parser interface {
	Parse(source string) ([]ast.Stmt, error)
}

// Input bundles everything needed to lower one POU's body: its
// declared variables (already grouped into blocks by
// internal/descriptors), the project-wide callable Registry, and
// either a pre-parsed authored-source body or a (SourceProvider,
// Parser, method name) triple to retrieve and parse it from.
type Input struct {
	POUName    string
	Kind       ir.Kind
	Blocks     []ir.DeclBlock
	Parent     *ir.POU
	ReturnType types.Type

	// Body is used directly when set (e.g. tests using
	// internal/ast/build.go); otherwise MethodName + the decorated
	// Source/Parser fields below are used.
	Body []ast.Stmt

	MethodName string
	Source     SourceProvider
	Parse      Parser
}

// Result is everything lowering a single POU produces: the POU IR
// (including synthesized timer/edge/counter static variables appended
// to its local block) and the accumulated, non-fatal diagnostics
// (§4.2: "lowering collects errors per POU and reports them together").
type Result struct {
	POU    *ir.POU
	Errors *diag.ErrorList
}

// Lower runs the full AST -> IR lowering procedure for one POU (§4.2).
func Lower(in Input, reg *Registry) Result {
	errs := &diag.ErrorList{}

	body := in.Body
	if body == nil {
		if in.Source == nil || in.Parse == nil {
			errs.Add(diag.New(diag.SourceUnavailable,
				"no source body, SourceProvider, or Parser supplied for "+in.POUName))
			return Result{POU: nil, Errors: errs}
		}
		text, ok := in.Source.Source(in.POUName, in.MethodName)
		if !ok {
			errs.Add(diag.New(diag.SourceUnavailable,
				"source unavailable for "+in.POUName+"."+in.MethodName))
			return Result{POU: nil, Errors: errs}
		}
		parsed, err := in.Parse.Parse(text)
		if err != nil {
			errs.Add(diag.New(diag.SyntaxUnsupported, err.Error()))
			return Result{POU: nil, Errors: errs}
		}
		body = parsed
	}

	ctx := NewContext(in.POUName, reg, in.Kind == ir.KindFunction)
	for _, blk := range in.Blocks {
		writable := blk.Role != ir.RoleInput && blk.Role != ir.RoleConstant
		for _, v := range blk.Vars {
			ctx.DeclareVar(v.Name, v.Type, writable)
		}
	}
	if in.Parent != nil {
		for _, v := range in.Parent.AllVars() {
			if _, already := ctx.Vars[v.Name]; already {
				errs.Add(diag.New(diag.DuplicateName,
					"child POU "+in.POUName+" redeclares parent variable "+v.Name))
				continue
			}
			role := roleOf(in.Parent, v.Name)
			writable := role != ir.RoleInput && role != ir.RoleConstant
			ctx.DeclareVar(v.Name, v.Type, writable)
		}
	}

	lowered := ctx.lowerBody(body)
	errs.Extend(ctx.Errors)

	blocks := appendSynthInstances(in.Blocks, ctx.Synth.Instances)

	pou := &ir.POU{
		Name:       in.POUName,
		Kind:       in.Kind,
		Blocks:     blocks,
		Parent:     in.Parent,
		Body:       lowered,
		ReturnType: in.ReturnType,
	}
	return Result{POU: pou, Errors: errs}
}

func roleOf(pou *ir.POU, name string) ir.Role {
	for _, b := range pou.Blocks {
		if b.VarByName(name) != nil {
			return b.Role
		}
	}
	return ir.RoleLocal
}

// appendSynthInstances appends one static variable per synthesized
// sentinel instance to the POU's static/local declaration block (§4.2
// step 5: "Instances are appended to the POU's static block").
func appendSynthInstances(blocks []ir.DeclBlock, instances []SynthInstance) []ir.DeclBlock {
	if len(instances) == 0 {
		return blocks
	}
	out := make([]ir.DeclBlock, len(blocks))
	copy(out, blocks)

	localIdx := -1
	for i, b := range out {
		if b.Role == ir.RoleLocal {
			localIdx = i
			break
		}
	}
	vars := make([]ir.Variable, len(instances))
	for i, inst := range instances {
		vars[i] = ir.Variable{Name: inst.Name, Type: &types.FBInstance{FBName: inst.FBName}}
	}
	if localIdx == -1 {
		out = append(out, ir.DeclBlock{Role: ir.RoleLocal, Vars: vars})
	} else {
		merged := make([]ir.Variable, 0, len(out[localIdx].Vars)+len(vars))
		merged = append(merged, out[localIdx].Vars...)
		merged = append(merged, vars...)
		out[localIdx] = ir.DeclBlock{Role: ir.RoleLocal, Vars: merged}
	}
	return out
}

// DescriptorsToBlocks is a convenience wrapper around
// descriptors.Set.Materialize for callers assembling Input.Blocks from
// a descriptor set (§4.1).
func DescriptorsToBlocks(set *descriptors.Set) ([]ir.DeclBlock, *diag.CompileError) {
	return set.Materialize()
}

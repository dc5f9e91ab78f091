package build

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"plx/internal/descriptors"
	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/lowering"
	"plx/internal/project"
	"plx/internal/sim"
	"plx/internal/types"
	"plx/internal/vendor"
)

// fileSource reads a POU method's source text straight from disk,
// honoring internal/lowering.SourceProvider; the textual parse itself
// is supplied separately by the embedding application (§1 Non-goals:
// the textual source parser is an external collaborator, not part of
// plx).
type fileSource struct{ manifest *ProjectManifest }

func (s *fileSource) Source(pouName, methodName string) (string, bool) {
	for _, p := range s.manifest.Pous {
		if p.Name == pouName {
			data, err := os.ReadFile(s.manifest.SourcePath(p))
			if err != nil {
				return "", false
			}
			return string(data), true
		}
	}
	return "", false
}

// Builder orchestrates one project's full pipeline: load the manifest,
// lower every declared POU, assemble and validate the Project IR, then
// simulate or emit (§4.10). Grounded on the teacher's
// internal/build.Builder (manifest-driven, NewBuilder(root)
// constructor, Build/Watch/Clean surface) — Compile here runs the
// lower-assemble pipeline instead of linking and bundling bytecode.
type Builder struct {
	Manifest *ProjectManifest
	Parser   lowering.Parser
	Registry *lowering.Registry
}

// NewBuilder loads projectRoot's manifest and returns a Builder ready
// to compile it, given a textual Parser supplied by the embedding
// application.
func NewBuilder(projectRoot string, parser lowering.Parser) (*Builder, error) {
	m, err := LoadManifest(projectRoot)
	if err != nil {
		return nil, err
	}
	return &Builder{Manifest: m, Parser: parser, Registry: lowering.NewRegistry()}, nil
}

// NewBuilderForCLI loads projectRoot's manifest and resolves its
// declared Parser name against the process-wide parser registry
// (internal/lowering.RegisterParser), the path cmd/plx uses since it
// has no compile-time dependency on any particular host-language
// parser (§1 Non-goals).
func NewBuilderForCLI(projectRoot string) (*Builder, error) {
	m, err := LoadManifest(projectRoot)
	if err != nil {
		return nil, err
	}
	p, ok := lowering.LookupParser(m.Parser)
	if !ok {
		return nil, fmt.Errorf(
			"build: no parser registered under %q (registered: %v) — link a host-language parser package that calls lowering.RegisterParser in its init()",
			m.Parser, lowering.RegisteredParserNames())
	}
	return &Builder{Manifest: m, Parser: p, Registry: lowering.NewRegistry()}, nil
}

// Compile lowers every manifest POU and assembles them into a
// validated Project IR, aggregating every diagnostic found rather than
// stopping at the first (§4.2, §4.5). POUs are lowered in manifest
// order, so a function-block must be declared before any POU that
// instantiates it (its signature must already be registered).
func (b *Builder) Compile() (*ir.Project, *diag.ErrorList) {
	errs := &diag.ErrorList{}
	src := &fileSource{manifest: b.Manifest}
	pouByName := map[string]*ir.POU{}

	for _, pm := range b.Manifest.Pous {
		kind := ir.KindProgram
		switch pm.Kind {
		case "function":
			kind = ir.KindFunction
		case "function_block":
			kind = ir.KindFunctionBlock
		}
		var parent *ir.POU
		if pm.Parent != "" {
			parent = pouByName[pm.Parent]
		}
		var retType types.Type
		if pm.ReturnType != "" {
			retType = resolveBuiltinType(pm.ReturnType)
		}
		blocks, derr := declBlocks(pm, b.Registry)
		if derr != nil {
			errs.Add(derr)
			continue
		}
		res := lowering.Lower(lowering.Input{
			POUName:    pm.Name,
			Kind:       kind,
			Blocks:     blocks,
			Parent:     parent,
			ReturnType: retType,
			MethodName: "logic",
			Source:     src,
			Parse:      b.Parser,
		}, b.Registry)
		errs.Extend(res.Errors)
		if res.POU == nil {
			continue
		}
		pouByName[pm.Name] = res.POU
		if kind == ir.KindFunctionBlock {
			inputs, outputs := signatureOf(res.POU)
			b.Registry.AddUserFB(pm.Name, inputs, outputs)
		}
		if kind == ir.KindFunction {
			b.Registry.AddFunction(pm.Name, retType)
		}
	}

	pb := project.NewBuilder(b.Manifest.Name)
	for _, p := range pouByName {
		pb.AddPOU(p)
	}
	for _, gm := range b.Manifest.Globals {
		vars := make([]ir.Variable, 0, len(gm.Vars))
		for _, vm := range gm.Vars {
			vars = append(vars, ir.Variable{Name: vm.Name, Type: resolveType(vm.Type, b.Registry)})
		}
		pb.AddGlobalBlock(ir.GlobalBlock{Name: gm.Name, Vars: vars})
	}
	for _, tm := range b.Manifest.Tasks {
		t := ir.Task{Name: tm.Name, PouRefs: tm.Pous}
		switch tm.Schedule {
		case "periodic":
			t.Schedule = ir.Schedule{Kind: ir.SchedulePeriodic, Period: types.Duration(tm.PeriodMs * 1_000_000)}
		case "event":
			t.Schedule = ir.Schedule{Kind: ir.ScheduleEvent, Source: tm.Source}
		default:
			t.Schedule = ir.Schedule{Kind: ir.ScheduleContinuous}
		}
		pb.AddTask(t)
	}

	proj, projErrs := project.Compile(pb)
	errs.Extend(projErrs)
	if errs.HasErrors() {
		return nil, errs
	}
	return proj, errs
}

// Simulate compiles the project and returns a ready-to-run Controller
// for pouName (§4.6).
func (b *Builder) Simulate(pouName string) (*sim.Controller, error) {
	proj, errs := b.Compile()
	if errs.HasErrors() {
		return nil, fmt.Errorf("build: %s", errs.Error())
	}
	ctrl, cerr := sim.Simulate(proj, pouName)
	if cerr != nil {
		return nil, cerr
	}
	return ctrl, nil
}

// Emit compiles the project and writes the target vendor's project
// document to outputPath, flattening inheritance first for vendors
// without native EXTENDS (§4.2 step 3, §4.8).
func (b *Builder) Emit(outputPath string) error {
	proj, errs := b.Compile()
	if errs.HasErrors() {
		return fmt.Errorf("build: %s", errs.Error())
	}
	emitter, ok := vendor.ForVendor(vendor.Vendor(b.Manifest.Vendor))
	if !ok {
		return fmt.Errorf("build: unknown vendor %q", b.Manifest.Vendor)
	}
	if emitter.FlattensInheritance() {
		for i, p := range proj.Pous {
			if p.Parent == nil {
				continue
			}
			flat, ferr := lowering.Flatten(p)
			if ferr != nil {
				return fmt.Errorf("build: flatten %s: %w", p.Name, ferr)
			}
			proj.Pous[i] = flat
		}
	}
	data, err := emitter.Emit(proj)
	if err != nil {
		return fmt.Errorf("build: emit: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// Clean removes plx's build output directory.
func (b *Builder) Clean(outputDir string) error {
	return os.RemoveAll(outputDir)
}

// declBlocks builds a POU's declaration blocks from its manifest
// variable list via the descriptor layer (component C), the manifest
// standing in for a host-language declaration section (§3.7,
// internal/descriptors.Set).
func declBlocks(pm POUManifest, reg *lowering.Registry) ([]ir.DeclBlock, *diag.CompileError) {
	set := descriptors.NewSet()
	for _, vm := range pm.Vars {
		t := resolveType(vm.Type, reg)
		var initial *types.Value
		if vm.Initial != "" {
			iv, err := parseInitial(t, vm.Initial)
			if err != nil {
				return nil, diag.New(diag.TypeMismatch,
					fmt.Sprintf("POU %s: variable %s: %v", pm.Name, vm.Name, err))
			}
			initial = &iv
		}
		if derr := set.Declare(descriptors.Descriptor{
			Name:    vm.Name,
			Role:    resolveRole(vm.Role),
			Type:    t,
			Initial: initial,
		}); derr != nil {
			return nil, derr
		}
	}
	return set.Materialize()
}

// resolveRole maps a manifest role string to its ir.Role, defaulting
// to a local (static) variable when unspecified.
func resolveRole(name string) ir.Role {
	switch name {
	case "input":
		return ir.RoleInput
	case "output":
		return ir.RoleOutput
	case "inout":
		return ir.RoleInOut
	case "temp":
		return ir.RoleTemp
	case "constant":
		return ir.RoleConstant
	}
	return ir.RoleLocal
}

// parseInitial renders a manifest's textual initial value as a
// types.Value of t, covering the primitive kinds a project manifest
// can plausibly declare defaults for; structured defaults are left to
// the host language itself.
func parseInitial(t types.Type, raw string) (types.Value, error) {
	switch {
	case types.IsBoolean(t):
		b, err := strconv.ParseBool(raw)
		return types.Value{Type: t, Bool: b}, err
	case t == types.Float32 || t == types.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		return types.Value{Type: t, Float: f}, err
	case t == types.DurationType:
		d, err := time.ParseDuration(raw)
		return types.Value{Type: t, Dur: types.Duration(d)}, err
	case t == types.Uint8 || t == types.Uint16 || t == types.Uint32 || t == types.Uint64:
		u, err := strconv.ParseUint(raw, 10, 64)
		return types.Value{Type: t, Uint: u}, err
	default:
		i, err := strconv.ParseInt(raw, 10, 64)
		return types.Value{Type: t, Int: i}, err
	}
}

// signatureOf derives a function-block's input/output Signature maps
// from its own declaration blocks, so later POUs instantiating it can
// be type-checked while lowering (internal/lowering.Registry.AddUserFB).
func signatureOf(p *ir.POU) (inputs, outputs map[string]types.Type) {
	inputs = map[string]types.Type{}
	outputs = map[string]types.Type{}
	for _, blk := range p.Blocks {
		switch blk.Role {
		case ir.RoleInput:
			for _, v := range blk.Vars {
				inputs[v.Name] = v.Type
			}
		case ir.RoleOutput:
			for _, v := range blk.Vars {
				outputs[v.Name] = v.Type
			}
		}
	}
	return inputs, outputs
}

var builtinTypeNames = map[string]types.Type{
	"BOOL":  types.Bool,
	"SINT":  types.Int8,
	"INT":   types.Int16,
	"DINT":  types.Int32,
	"LINT":  types.Int64,
	"USINT": types.Uint8,
	"UINT":  types.Uint16,
	"UDINT": types.Uint32,
	"ULINT": types.Uint64,
	"REAL":  types.Float32,
	"LREAL": types.Float64,
	"TIME":  types.DurationType,
}

// resolveType resolves a manifest variable's declared type name,
// trying the built-in primitives first and falling back to the
// function-block registry so fields typed as a timer/edge/counter
// sentinel or an already-declared user function-block lower to a
// types.FBInstance (§4.1, §4.6); an unrecognized name defaults to
// DINT, matching resolveBuiltinType's own fallback.
func resolveType(name string, reg *lowering.Registry) types.Type {
	if t, ok := builtinTypeNames[name]; ok {
		return t
	}
	if _, ok := reg.FB(name); ok {
		return &types.FBInstance{FBName: name}
	}
	return types.Int32
}

// resolveBuiltinType maps a manifest-declared primitive type name to
// its types.Type singleton, defaulting to DINT; composite and
// function-block types are resolved only through resolveType, which
// has access to the project's callable Registry.
func resolveBuiltinType(name string) types.Type {
	if t, ok := builtinTypeNames[name]; ok {
		return t
	}
	return types.Int32
}

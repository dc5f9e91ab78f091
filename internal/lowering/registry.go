package lowering

import "plx/internal/types"

// Registry is the set of known callables and function-block signatures
// visible while lowering one POU: built-in sentinel FBs, user-defined
// function-blocks already compiled earlier in the project, and plain
// function return types. It is read-only from the lowering pass's
// point of view; internal/build's Builder.Compile populates it as POUs
// compile.
type Registry struct {
	fbs       map[string]Signature
	functions map[string]types.Type
	enums     map[string]*types.Enum
	structs   map[string]*types.Struct
}

// NewRegistry returns a Registry pre-seeded with the seven built-in
// sentinel function-blocks.
func NewRegistry() *Registry {
	r := &Registry{
		fbs:       map[string]Signature{},
		functions: map[string]types.Type{},
		enums:     map[string]*types.Enum{},
		structs:   map[string]*types.Struct{},
	}
	for name, sig := range builtinSignatures {
		r.fbs[name] = sig
	}
	return r
}

// AddUserFB registers a user-defined function-block's signature,
// derived from its own input/output declaration blocks, so that
// instances of it can be field-accessed while lowering other POUs.
func (r *Registry) AddUserFB(name string, inputs, outputs map[string]types.Type) {
	r.fbs[name] = Signature{FBName: name, Inputs: inputs, Outputs: outputs}
}

func (r *Registry) FB(name string) (Signature, bool) {
	s, ok := r.fbs[name]
	return s, ok
}

func (r *Registry) AddFunction(name string, returnType types.Type) {
	r.functions[name] = returnType
}

func (r *Registry) Function(name string) (types.Type, bool) {
	t, ok := r.functions[name]
	return t, ok
}

func (r *Registry) AddEnum(e *types.Enum) { r.enums[e.Name] = e }

func (r *Registry) Enum(name string) (*types.Enum, bool) {
	e, ok := r.enums[name]
	return e, ok
}

func (r *Registry) AddStruct(s *types.Struct) { r.structs[s.Name] = s }

func (r *Registry) Struct(name string) (*types.Struct, bool) {
	s, ok := r.structs[name]
	return s, ok
}

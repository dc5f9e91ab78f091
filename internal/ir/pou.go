package ir

import "plx/internal/types"

// Role tags which declaration block a variable belongs to; direction
// and scope are determined solely by the block containing the
// variable, never by an attribute on the variable itself (§3.3).
type Role int

const (
	RoleInput Role = iota
	RoleOutput
	RoleInOut
	RoleLocal // static, persists across scans in a function-block
	RoleTemp
	RoleConstant
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	case RoleInOut:
		return "inout"
	case RoleLocal:
		return "local"
	case RoleTemp:
		return "temp"
	case RoleConstant:
		return "constant"
	}
	return "unknown"
}

// Variable is one declared variable: typed, optionally defaulted,
// optionally documented.
type Variable struct {
	Name        string
	Type        types.Type
	Initial     *types.Value // nil if unspecified (zero value applies)
	Description string
}

// DeclBlock is one ordered, role-tagged block of uniquely-named
// variables (§3.3).
type DeclBlock struct {
	Role Role
	Vars []Variable
}

// VarByName looks up a variable by name within the block.
func (b *DeclBlock) VarByName(name string) *Variable {
	for i := range b.Vars {
		if b.Vars[i].Name == name {
			return &b.Vars[i]
		}
	}
	return nil
}

// Kind tags the three POU kinds (§3.3).
type Kind int

const (
	KindFunction Kind = iota
	KindFunctionBlock
	KindProgram
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "FUNCTION"
	case KindFunctionBlock:
		return "FUNCTION_BLOCK"
	case KindProgram:
		return "PROGRAM"
	}
	return "UNKNOWN"
}

// POU is a Program Organization Unit: function, function-block, or
// program (§3.3). POU IR nodes are constructed once and are immutable
// thereafter (§3.6).
type POU struct {
	Name        string
	Kind        Kind
	Blocks      []DeclBlock // ordered declaration blocks
	Parent      *POU        // function-block inheritance only; nil otherwise
	Body        []Stmt      // nil when Chart is set
	Chart       *Chart      // set instead of Body for SFC-authored function-blocks
	Methods     []*POU      // function-block method children (function kind only)
	ReturnType  types.Type  // function kind only
}

// BlockByRole returns the declaration block tagged with role, or nil.
func (p *POU) BlockByRole(role Role) *DeclBlock {
	for i := range p.Blocks {
		if p.Blocks[i].Role == role {
			return &p.Blocks[i]
		}
	}
	return nil
}

// AllVars iterates every variable across every block, in block-then-
// declaration order.
func (p *POU) AllVars() []*Variable {
	var out []*Variable
	for i := range p.Blocks {
		for j := range p.Blocks[i].Vars {
			out = append(out, &p.Blocks[i].Vars[j])
		}
	}
	return out
}

// VarByName searches every block for a variable named name.
func (p *POU) VarByName(name string) *Variable {
	for i := range p.Blocks {
		if v := p.Blocks[i].VarByName(name); v != nil {
			return v
		}
	}
	return nil
}

// Ancestors returns the linearized parent chain, nearest first,
// excluding p itself; on a cycle it stops at the first repeated POU
// without reporting it. Cycles are reported by internal/lowering's
// flattening pass and by internal/project's assembly checks.
func (p *POU) Ancestors() []*POU {
	var out []*POU
	seen := map[*POU]bool{p: true}
	cur := p.Parent
	for cur != nil && !seen[cur] {
		out = append(out, cur)
		seen[cur] = true
		cur = cur.Parent
	}
	return out
}

// Package descriptors implements the variable descriptor layer
// (component C): a compile-time declaration of a POU's inputs,
// outputs, locals (and other roles) with types, defaults, and
// documentation, consumed by internal/lowering when it materializes a
// POU's declaration blocks (§4.1).
package descriptors

import (
	"fmt"

	"plx/internal/diag"
	"plx/internal/ir"
	"plx/internal/types"
)

// Descriptor is a lightweight record captured at POU class-body time,
// in declaration order; it is discarded once the POU's declaration
// blocks are grouped by role (§4.1).
type Descriptor struct {
	Name        string
	Role        ir.Role
	Type        types.Type
	Initial     *types.Value // must be a compile-time constant, §4.1
	Description string
}

// Set collects a POU's descriptors in declaration order, across
// whatever interleaving of roles the authoring layer produced them in.
type Set struct {
	entries []Descriptor
}

// NewSet creates an empty descriptor set.
func NewSet() *Set { return &Set{} }

// Declare appends one descriptor, validating that any initial value is
// assignable to the declared type (§4.1).
func (s *Set) Declare(d Descriptor) *diag.CompileError {
	if d.Initial != nil && !types.AssignableFrom(d.Type, d.Initial.Type) {
		return diag.New(diag.TypeMismatch,
			fmt.Sprintf("initial value for %q has type %s, not assignable to %s",
				d.Name, d.Initial.Type, d.Type))
	}
	s.entries = append(s.entries, d)
	return nil
}

// Materialize groups the set's descriptors by role into ordered
// DeclBlocks, in first-seen role order, preserving per-role declaration
// order (§4.1 "On POU materialization, descriptors are grouped by role
// into ordered blocks"). Duplicate names within a role are rejected.
func (s *Set) Materialize() ([]ir.DeclBlock, *diag.CompileError) {
	order := []ir.Role{}
	byRole := map[ir.Role][]ir.Variable{}
	seenNames := map[ir.Role]map[string]bool{}

	for _, d := range s.entries {
		if _, ok := byRole[d.Role]; !ok {
			order = append(order, d.Role)
			seenNames[d.Role] = map[string]bool{}
		}
		if seenNames[d.Role][d.Name] {
			return nil, diag.New(diag.DuplicateName,
				fmt.Sprintf("duplicate variable %q in %s block", d.Name, d.Role))
		}
		seenNames[d.Role][d.Name] = true
		byRole[d.Role] = append(byRole[d.Role], ir.Variable{
			Name:        d.Name,
			Type:        d.Type,
			Initial:     d.Initial,
			Description: d.Description,
		})
	}

	blocks := make([]ir.DeclBlock, 0, len(order))
	for _, role := range order {
		blocks = append(blocks, ir.DeclBlock{Role: role, Vars: byRole[role]})
	}
	return blocks, nil
}

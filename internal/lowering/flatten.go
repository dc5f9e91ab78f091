// Flattening (§4.4): for vendors without function-block inheritance
// (L5X, SimaticML; see internal/vendor), this pass computes the
// linearized ancestor chain, merges ancestor declaration blocks into
// the child, and inlines ancestor bodies wherever `super().logic()`
// appears. Vendors with native EXTENDS (TcPOU) skip the pass and keep
// the parent link on the IR POU.
package lowering

import (
	"fmt"

	"plx/internal/diag"
	"plx/internal/ir"
)

// Flatten returns a new POU with the same observable body as pou but
// with its ancestor chain inlined: no parent link, no super-call
// markers, and every ancestor's declarations merged ahead of pou's own
// (§4.4, §8 scenario 5). pou itself, and the IR reachable from it, is
// never mutated (§3.6 immutability).
func Flatten(pou *ir.POU) (*ir.POU, *diag.CompileError) {
	chain, err := ancestorChain(pou)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return pou, nil
	}

	blocks, err := mergeDeclBlocks(chain, pou)
	if err != nil {
		return nil, err
	}

	// chain is ordered nearest-ancestor-first; bodies must be inlined
	// oldest-ancestor-first so `super().logic()` in a grandparent
	// expands before the parent's own additions are appended, per
	// §8 scenario 5 ("parent's body concatenated with the child's
	// additions").
	flattenedParentBody := []ir.Stmt{}
	for i := len(chain) - 1; i >= 0; i-- {
		flattenedParentBody = inlineSuperCalls(chain[i].Body, flattenedParentBody)
	}
	body := inlineSuperCalls(pou.Body, flattenedParentBody)

	return &ir.POU{
		Name:       pou.Name,
		Kind:       pou.Kind,
		Blocks:     blocks,
		Parent:     nil,
		Body:       body,
		Chart:      pou.Chart,
		Methods:    pou.Methods,
		ReturnType: pou.ReturnType,
	}, nil
}

// ancestorChain walks pou.Parent, nearest first, rejecting cycles
// (§4.4 InheritanceCycle).
func ancestorChain(pou *ir.POU) ([]*ir.POU, *diag.CompileError) {
	var chain []*ir.POU
	seen := map[*ir.POU]bool{pou: true}
	cur := pou.Parent
	for cur != nil {
		if seen[cur] {
			return nil, diag.New(diag.InheritanceCycle,
				fmt.Sprintf("inheritance cycle detected at %s", cur.Name))
		}
		seen[cur] = true
		chain = append(chain, cur)
		cur = cur.Parent
	}
	return chain, nil
}

// mergeDeclBlocks merges ancestor declaration blocks into the child's,
// oldest ancestor first, then the child's own declarations, rejecting
// duplicate names across the merged set (§3.3, §4.4).
func mergeDeclBlocks(chain []*ir.POU, pou *ir.POU) ([]ir.DeclBlock, *diag.CompileError) {
	order := []ir.Role{}
	byRole := map[ir.Role][]ir.Variable{}
	seen := map[string]bool{}

	addBlocks := func(blocks []ir.DeclBlock) *diag.CompileError {
		for _, b := range blocks {
			if _, ok := byRole[b.Role]; !ok {
				order = append(order, b.Role)
			}
			for _, v := range b.Vars {
				if seen[v.Name] {
					return diag.New(diag.DuplicateName,
						fmt.Sprintf("variable %q is declared more than once across the inheritance chain", v.Name))
				}
				seen[v.Name] = true
				byRole[b.Role] = append(byRole[b.Role], v)
			}
		}
		return nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if err := addBlocks(chain[i].Blocks); err != nil {
			return nil, err
		}
	}
	if err := addBlocks(pou.Blocks); err != nil {
		return nil, err
	}

	out := make([]ir.DeclBlock, 0, len(order))
	for _, role := range order {
		out = append(out, ir.DeclBlock{Role: role, Vars: byRole[role]})
	}
	return out, nil
}

// inlineSuperCalls replaces every superCallMarker in body with a copy
// of parentBody, in place (§4.2 step 3).
func inlineSuperCalls(body []ir.Stmt, parentBody []ir.Stmt) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range body {
		if _, ok := s.(*superCallMarker); ok {
			out = append(out, parentBody...)
			continue
		}
		out = append(out, s)
	}
	return out
}

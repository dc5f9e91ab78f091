package ir

import (
	"fmt"

	"plx/internal/diag"
	"plx/internal/types"
)

// NewCase builds a Case statement, rejecting non-disjoint arms (§3.2,
// §4.3 "IR core ... constructors ... that enforce local invariants").
func NewCase(selector Expr, arms []CaseArm, def []Stmt) (*Case, *diag.CompileError) {
	seenInt := map[int64]int{}
	seenEnum := map[string]int{}
	for i, arm := range arms {
		for _, v := range arm.Values.Ints {
			if prev, ok := seenInt[v]; ok {
				return nil, diag.New(diag.CaseOverlap,
					fmt.Sprintf("case value %d in arm %d overlaps arm %d", v, i, prev))
			}
			seenInt[v] = i
		}
		for _, v := range arm.Values.Enums {
			if prev, ok := seenEnum[v]; ok {
				return nil, diag.New(diag.CaseOverlap,
					fmt.Sprintf("case value %s in arm %d overlaps arm %d", v, i, prev))
			}
			seenEnum[v] = i
		}
	}
	return &Case{Selector: selector, Arms: arms, Default: def}, nil
}

// NewArrayType validates an array bounds list (lo <= hi for every
// dimension; lo == hi is accepted as a one-element dimension, §3.1,
// §8 boundary behavior) and constructs the Array type.
func NewArrayType(element types.Type, bounds []types.Bound) (*types.Array, *diag.CompileError) {
	for _, b := range bounds {
		if b.Lo > b.Hi {
			return nil, diag.New(diag.InvalidLiteral,
				fmt.Sprintf("array bound lo=%d exceeds hi=%d", b.Lo, b.Hi))
		}
	}
	return &types.Array{Element: element, Bounds: bounds}, nil
}

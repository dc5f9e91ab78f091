// Package lowering implements component D: translating authored-source
// syntax trees (internal/ast) into IR (internal/ir), expanding
// timing/edge/counter sentinel helpers into synthesized function-block
// invocations, and flattening function-block inheritance for vendors
// without native EXTENDS.
//
// The visitor-dispatch shape mirrors the teacher's
// internal/compiler/compiler.go (a Compiler implementing
// parser.ExprVisitor/StmtVisitor, recursively lowering one node at a
// time into target instructions) — here the "target instructions" are
// IR expressions/statements instead of bytecode.
package lowering

import (
	"fmt"

	"plx/internal/types"
)

// Signature describes a function-block's input/output surface, enough
// for the lowering pass to type-check field access on an instance and
// for project assembly to materialize instance declarations. Built-in
// sentinel function-blocks have a fixed Signature (§4.2 step 5); user
// function-blocks contribute one derived from their own declaration
// blocks (see Registry.AddUserFB).
type Signature struct {
	FBName  string
	Inputs  map[string]types.Type
	Outputs map[string]types.Type
}

// FieldType returns the type of an input or output field, or nil if
// unknown.
func (s Signature) FieldType(name string) types.Type {
	if t, ok := s.Outputs[name]; ok {
		return t
	}
	if t, ok := s.Inputs[name]; ok {
		return t
	}
	return nil
}

// SentinelKind tags one of the seven fixed compile-time helpers
// (§4.2 step 5).
type SentinelKind string

const (
	SentinelDelayed   SentinelKind = "delayed"   // TON
	SentinelSustained SentinelKind = "sustained" // TOF
	SentinelPulse     SentinelKind = "pulse"     // TP
	SentinelRising    SentinelKind = "rising"    // R_TRIG
	SentinelFalling   SentinelKind = "falling"   // F_TRIG
	SentinelCountUp   SentinelKind = "count_up"  // CTU
	SentinelCountDown SentinelKind = "count_down" // CTD
)

// sentinelFB maps a sentinel name to the synthesized instance's
// function-block type name and the instance-name prefix used when
// generating stable synthetic identifiers (§4.2 step 5: "__ton_0,
// __ton_1 in source order").
var sentinelFB = map[SentinelKind]struct {
	FB     string
	Prefix string
}{
	SentinelDelayed:   {"TON", "__ton_"},
	SentinelSustained: {"TOF", "__tof_"},
	SentinelPulse:     {"TP", "__tp_"},
	SentinelRising:    {"R_TRIG", "__rtrig_"},
	SentinelFalling:   {"F_TRIG", "__ftrig_"},
	SentinelCountUp:   {"CTU", "__ctu_"},
	SentinelCountDown: {"CTD", "__ctd_"},
}

// IsSentinel reports whether name is one of the seven fixed sentinel
// helpers.
func IsSentinel(name string) (SentinelKind, bool) {
	k := SentinelKind(name)
	_, ok := sentinelFB[k]
	return k, ok
}

// builtinSignatures is the fixed IEC 61131-3 signature for each
// sentinel-backing function-block (§4.2 step 5, §4.6 timer/edge/
// counter semantics).
var builtinSignatures = map[string]Signature{
	"TON": {FBName: "TON", Inputs: map[string]types.Type{"IN": types.Bool, "PT": types.DurationType},
		Outputs: map[string]types.Type{"Q": types.Bool, "ET": types.DurationType}},
	"TOF": {FBName: "TOF", Inputs: map[string]types.Type{"IN": types.Bool, "PT": types.DurationType},
		Outputs: map[string]types.Type{"Q": types.Bool, "ET": types.DurationType}},
	"TP": {FBName: "TP", Inputs: map[string]types.Type{"IN": types.Bool, "PT": types.DurationType},
		Outputs: map[string]types.Type{"Q": types.Bool, "ET": types.DurationType}},
	"R_TRIG": {FBName: "R_TRIG", Inputs: map[string]types.Type{"CLK": types.Bool},
		Outputs: map[string]types.Type{"Q": types.Bool}},
	"F_TRIG": {FBName: "F_TRIG", Inputs: map[string]types.Type{"CLK": types.Bool},
		Outputs: map[string]types.Type{"Q": types.Bool}},
	"CTU": {FBName: "CTU", Inputs: map[string]types.Type{"CU": types.Bool, "RESET": types.Bool, "PV": types.Int32},
		Outputs: map[string]types.Type{"Q": types.Bool, "CV": types.Int32}},
	"CTD": {FBName: "CTD", Inputs: map[string]types.Type{"CD": types.Bool, "LOAD": types.Bool, "PV": types.Int32},
		Outputs: map[string]types.Type{"Q": types.Bool, "CV": types.Int32}},
}

// sentinelOutput is the single output field read as the sentinel
// expression's value (§4.2 step 5: "value is Q output").
func sentinelOutput(k SentinelKind) string {
	switch k {
	case SentinelCountUp, SentinelCountDown:
		return "Q"
	default:
		return "Q"
	}
}

// sentinelInputNames lists, in the fixed positional order the sentinel
// helper accepts them, the call's argument names mapped to the backing
// function-block's input fields.
func sentinelInputNames(k SentinelKind) []string {
	switch k {
	case SentinelDelayed, SentinelSustained, SentinelPulse:
		return []string{"cond", "seconds"}
	case SentinelRising, SentinelFalling:
		return []string{"x"}
	case SentinelCountUp:
		return []string{"clk", "reset", "preset"}
	case SentinelCountDown:
		return []string{"clk", "load", "preset"}
	}
	return nil
}

// sentinelFieldOrder is the fixed field order used when emitting a
// synthesized FBInvoke's named argument list, so that re-lowering the
// same source produces a structurally identical IR (§8 universal
// invariant 2) instead of depending on Go's randomized map iteration.
func sentinelFieldOrder(k SentinelKind) []string {
	switch k {
	case SentinelDelayed, SentinelSustained, SentinelPulse:
		return []string{"IN", "PT"}
	case SentinelRising, SentinelFalling:
		return []string{"CLK"}
	case SentinelCountUp:
		return []string{"CU", "RESET", "PV"}
	case SentinelCountDown:
		return []string{"CD", "LOAD", "PV"}
	}
	return nil
}

// sentinelFieldFor maps a sentinel call argument name to the backing
// function-block's input field name.
func sentinelFieldFor(k SentinelKind, argName string) (string, error) {
	switch k {
	case SentinelDelayed, SentinelSustained, SentinelPulse:
		switch argName {
		case "cond":
			return "IN", nil
		case "seconds":
			return "PT", nil
		}
	case SentinelRising, SentinelFalling:
		if argName == "x" {
			return "CLK", nil
		}
	case SentinelCountUp:
		switch argName {
		case "clk":
			return "CU", nil
		case "reset":
			return "RESET", nil
		case "preset":
			return "PV", nil
		}
	case SentinelCountDown:
		switch argName {
		case "clk":
			return "CD", nil
		case "load":
			return "LOAD", nil
		case "preset":
			return "PV", nil
		}
	}
	return "", fmt.Errorf("sentinel %s has no argument %q", k, argName)
}

package sim

import "plx/internal/types"

// runBuiltin evaluates one scan of a built-in sentinel-backed
// function-block (TON, TOF, TP, R_TRIG, F_TRIG, CTU, CTD) against its
// staged inputs and persistent runtime memory, sampling now once per
// call (§4.6 "Timers read the virtual clock at scan start.
// Re-evaluation during the same scan uses the same clock sample").
func runBuiltin(fbName string, rt *builtinRuntime, in map[string]types.Value, now types.Duration) map[string]types.Value {
	switch fbName {
	case "TON":
		return runTON(rt, in, now)
	case "TOF":
		return runTOF(rt, in, now)
	case "TP":
		return runTP(rt, in, now)
	case "R_TRIG":
		return runRTrig(rt, in)
	case "F_TRIG":
		return runFTrig(rt, in)
	case "CTU":
		return runCTU(rt, in)
	case "CTD":
		return runCTD(rt, in)
	}
	return nil
}

func boolIn(in map[string]types.Value, name string) bool {
	v, ok := in[name]
	return ok && v.Bool
}

func durIn(in map[string]types.Value, name string) types.Duration {
	v, ok := in[name]
	if !ok {
		return 0
	}
	return v.Dur
}

func intIn(in map[string]types.Value, name string) int64 {
	v, ok := in[name]
	if !ok {
		return 0
	}
	return v.Int
}

func boolVal(b bool) types.Value    { return types.Value{Type: types.Bool, Bool: b} }
func durVal(d types.Duration) types.Value { return types.Value{Type: types.DurationType, Dur: d} }
func intVal(n int64) types.Value    { return types.Value{Type: types.Int32, Int: n} }

// runTON: on-delay timer. Q transitions true on the first scan where
// IN has been continuously true for at least PT of virtual time since
// its last false-to-true edge (§4.6; PT=0 fires the same scan IN
// rises, §8 boundary behavior).
func runTON(rt *builtinRuntime, in map[string]types.Value, now types.Duration) map[string]types.Value {
	inVal := boolIn(in, "IN")
	pt := durIn(in, "PT")
	if inVal && !rt.prevIn {
		rt.startAt = now
	}
	rt.prevIn = inVal

	var et types.Duration
	var q bool
	if inVal {
		et = now.Sub(rt.startAt)
		if et > pt {
			et = pt
		}
		q = et >= pt
	}
	return map[string]types.Value{"Q": boolVal(q), "ET": durVal(et)}
}

// runTOF: off-delay timer. Q stays true until PT has elapsed since IN
// fell.
func runTOF(rt *builtinRuntime, in map[string]types.Value, now types.Duration) map[string]types.Value {
	inVal := boolIn(in, "IN")
	pt := durIn(in, "PT")

	if !inVal && rt.prevIn {
		rt.timing = true
		rt.startAt = now
	}
	if inVal {
		rt.timing = false
	}
	rt.prevIn = inVal

	if inVal {
		return map[string]types.Value{"Q": boolVal(true), "ET": durVal(0)}
	}
	if !rt.timing {
		return map[string]types.Value{"Q": boolVal(false), "ET": durVal(pt)}
	}
	et := now.Sub(rt.startAt)
	if et >= pt {
		rt.timing = false
		return map[string]types.Value{"Q": boolVal(false), "ET": durVal(pt)}
	}
	return map[string]types.Value{"Q": boolVal(true), "ET": durVal(et)}
}

// runTP: pulse timer. A rising edge of IN starts a pulse of length PT
// on Q, independent of further changes to IN during the pulse.
func runTP(rt *builtinRuntime, in map[string]types.Value, now types.Duration) map[string]types.Value {
	inVal := boolIn(in, "IN")
	pt := durIn(in, "PT")

	if inVal && !rt.prevIn && !rt.timing {
		rt.timing = true
		rt.startAt = now
	}
	rt.prevIn = inVal

	if !rt.timing {
		return map[string]types.Value{"Q": boolVal(false), "ET": durVal(0)}
	}
	et := now.Sub(rt.startAt)
	if et >= pt {
		rt.timing = false
		return map[string]types.Value{"Q": boolVal(false), "ET": durVal(pt)}
	}
	return map[string]types.Value{"Q": boolVal(true), "ET": durVal(et)}
}

// runRTrig: Q true for exactly one scan after a false->true transition
// of CLK.
func runRTrig(rt *builtinRuntime, in map[string]types.Value) map[string]types.Value {
	clk := boolIn(in, "CLK")
	q := clk && !rt.prevIn
	rt.prevIn = clk
	return map[string]types.Value{"Q": boolVal(q)}
}

// runFTrig: Q true for exactly one scan after a true->false transition
// of CLK.
func runFTrig(rt *builtinRuntime, in map[string]types.Value) map[string]types.Value {
	clk := boolIn(in, "CLK")
	q := !clk && rt.prevIn
	rt.prevIn = clk
	return map[string]types.Value{"Q": boolVal(q)}
}

// runCTU: counts up on rising edges of CU, clamped at PV; RESET
// dominates (§4.6).
func runCTU(rt *builtinRuntime, in map[string]types.Value) map[string]types.Value {
	cu := boolIn(in, "CU")
	reset := boolIn(in, "RESET")
	pv := intIn(in, "PV")

	if reset {
		rt.cv = 0
	} else if cu && !rt.prevIn && rt.cv < pv {
		rt.cv++
	}
	rt.prevIn = cu
	return map[string]types.Value{"Q": boolVal(rt.cv >= pv), "CV": intVal(rt.cv)}
}

// runCTD: counts down on rising edges of CD, clamped at zero; LOAD
// dominates (§4.6).
func runCTD(rt *builtinRuntime, in map[string]types.Value) map[string]types.Value {
	cd := boolIn(in, "CD")
	load := boolIn(in, "LOAD")
	pv := intIn(in, "PV")

	if load {
		rt.cv = pv
	} else if cd && !rt.prevIn && rt.cv > 0 {
		rt.cv--
	}
	rt.prevIn = cd
	return map[string]types.Value{"Q": boolVal(rt.cv <= 0), "CV": intVal(rt.cv)}
}

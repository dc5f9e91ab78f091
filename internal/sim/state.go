package sim

import "plx/internal/types"

// builtinRuntime holds the hidden timer/edge/counter memory a
// synthesized sentinel instance needs across scans (§4.6 "Internal
// previous-value memory persists across scans"). It is never visible
// through Controller.Get.
type builtinRuntime struct {
	prevIn  bool // previous scan's primary input (IN / CLK / CU / CD)
	prevAux bool // not read or written by any built-in
	timing  bool // TOF/TP: a delayed transition is currently in flight
	startAt types.Duration
	cv      int64 // CTU/CTD accumulated count
}

// instance is one live POU/function-block instance: its named
// variables plus nested instances for FB-typed fields (§3.6, §4.6
// "per-POU-instance record ... nested records for function-block
// instance fields").
type instance struct {
	fbName  string // name of the POU or built-in FB this instance runs; the top-level instance holds its own POU's name
	vars    map[string]types.Value
	subs    map[string]*instance
	runtime *builtinRuntime // non-nil only for built-in sentinel-backed instances
	active  map[string]bool // SFC active-step set; nil unless this instance's POU has a Chart
}

func newInstance(fbName string) *instance {
	return &instance{fbName: fbName, vars: map[string]types.Value{}, subs: map[string]*instance{}}
}

func (i *instance) get(name string) (types.Value, bool) {
	v, ok := i.vars[name]
	return v, ok
}

func (i *instance) set(name string, v types.Value) {
	i.vars[name] = v
}

func (i *instance) sub(name string) *instance {
	s, ok := i.subs[name]
	if !ok {
		return nil
	}
	return s
}

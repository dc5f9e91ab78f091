package lowering

import "fmt"

// SynthAllocator assigns stable synthetic instance names to sentinel
// call sites, keyed on lexical position within the POU (source order),
// not on any runtime invocation count (§4.2 step 5, §8 universal
// invariant 2: re-lowering the same source yields the same names).
type SynthAllocator struct {
	counts map[SentinelKind]int
	// Instances records every synthesized static variable this
	// allocator has produced, in allocation order, so the caller can
	// append them to the POU's static declaration block.
	Instances []SynthInstance
}

// SynthInstance is one synthesized static variable backing a sentinel
// call site.
type SynthInstance struct {
	Name   string
	FBName string
}

func NewSynthAllocator() *SynthAllocator {
	return &SynthAllocator{counts: map[SentinelKind]int{}}
}

// Allocate returns the next stable name for a sentinel call site
// encountered in source order (one per call site: "__ton_0", "__ton_1",
// ...).
func (a *SynthAllocator) Allocate(k SentinelKind) SynthInstance {
	fb := sentinelFB[k].FB
	prefix := sentinelFB[k].Prefix
	n := a.counts[k]
	a.counts[k] = n + 1
	inst := SynthInstance{Name: fmt.Sprintf("%s%d", prefix, n), FBName: fb}
	a.Instances = append(a.Instances, inst)
	return inst
}

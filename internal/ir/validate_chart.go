package ir

import (
	"fmt"

	"plx/internal/diag"
)

// NewChart builds a Chart, enforcing its structural invariants (§3.4):
// every step is referenced by the graph, every transition references
// existing steps, exactly one step is initial, the graph is weakly
// connected, and the initial step reaches every other step.
func NewChart(steps []Step, transitions []Transition) (*Chart, *diag.CompileError) {
	c := &Chart{Steps: steps, Transitions: transitions}

	var initial *Step
	names := map[string]bool{}
	for i := range steps {
		names[steps[i].Name] = true
		if steps[i].Initial {
			if initial != nil {
				return nil, diag.New(diag.InternalInvariant,
					fmt.Sprintf("chart has more than one initial step: %s and %s", initial.Name, steps[i].Name))
			}
			initial = &steps[i]
		}
	}
	if initial == nil {
		return nil, diag.New(diag.InternalInvariant, "chart has no initial step")
	}

	for _, t := range transitions {
		if !names[t.Source] {
			return nil, diag.New(diag.DanglingReference,
				fmt.Sprintf("transition source %q is not a step in this chart", t.Source))
		}
		if !names[t.Target] {
			return nil, diag.New(diag.DanglingReference,
				fmt.Sprintf("transition target %q is not a step in this chart", t.Target))
		}
	}

	reachable := map[string]bool{initial.Name: true}
	queue := []string{initial.Name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range transitions {
			if t.Source == cur && !reachable[t.Target] {
				reachable[t.Target] = true
				queue = append(queue, t.Target)
			}
		}
	}
	for name := range names {
		if !reachable[name] {
			return nil, diag.New(diag.DanglingReference,
				fmt.Sprintf("step %q is not reachable from the initial step %q", name, initial.Name))
		}
	}

	// Weak connectivity: undirected reachability from any step reaches
	// every other step. Directed reachability from the initial step
	// (checked above) already implies this whenever every step is
	// reachable from it, so this only adds value when a future chart
	// permits multiple weakly-connected components joined by
	// transitions in the reverse direction only; check it directly for
	// robustness.
	undirected := map[string]map[string]bool{}
	for name := range names {
		undirected[name] = map[string]bool{}
	}
	for _, t := range transitions {
		undirected[t.Source][t.Target] = true
		undirected[t.Target][t.Source] = true
	}
	seen := map[string]bool{}
	var stack []string
	if len(steps) > 0 {
		stack = append(stack, steps[0].Name)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for n := range undirected[cur] {
			if !seen[n] {
				stack = append(stack, n)
			}
		}
	}
	for name := range names {
		if !seen[name] {
			return nil, diag.New(diag.DanglingReference,
				fmt.Sprintf("step %q is not connected to the rest of the chart", name))
		}
	}

	return c, nil
}

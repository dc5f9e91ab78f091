package sim

import "fmt"

// Scenario is one scripted end-to-end run of the simulator (§8
// end-to-end scenarios): a named sequence of Steps executed in order
// against a single Controller. Adapted from the teacher's
// internal/testing/framework.go TestSuite/TestCase/TestContext shape,
// collapsed to plx's domain: no suite nesting, no skip/only flags, no
// parallelism — a scenario either runs straight through or stops at
// its first failing Step.
type Scenario struct {
	Name  string
	Ctrl  *Controller
	Steps []Step
}

// Step is one action or assertion against a scenario's Controller.
type Step func(c *Controller) error

// Result records one scenario's outcome, the plx-domain analogue of
// the teacher's TestResult.
type Result struct {
	Name   string
	Passed bool
	Step   int // index of the first failing Step; -1 if Passed
	Err    error
}

// Run executes every Step of s in order, stopping at the first error
// (§8: scenarios are a fixed script, not an exploratory search).
func Run(s Scenario) Result {
	for i, step := range s.Steps {
		if err := step(s.Ctrl); err != nil {
			return Result{Name: s.Name, Passed: false, Step: i, Err: err}
		}
	}
	return Result{Name: s.Name, Passed: true, Step: -1}
}

// RunAll runs every scenario and returns one Result per scenario, in
// order, the plx-domain analogue of the teacher's TestStats
// aggregation (here a caller just ranges the results; plx has no
// parallel runner to coordinate).
func RunAll(scenarios []Scenario) []Result {
	results := make([]Result, len(scenarios))
	for i, s := range scenarios {
		results[i] = Run(s)
	}
	return results
}

// Failures filters results down to the ones that did not pass,
// formatting each as a single line for a test failure message.
func Failures(results []Result) []string {
	var out []string
	for _, r := range results {
		if !r.Passed {
			out = append(out, fmt.Sprintf("%s: step %d: %v", r.Name, r.Step, r.Err))
		}
	}
	return out
}

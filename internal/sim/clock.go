// Package sim implements the scan-cycle simulator (component F): a
// deterministic tree-walking evaluator over the IR with a simulated
// virtual clock, per-instance state, and observable variable snapshots
// (§4.6).
//
// The evaluator dispatches over ir.Expr/ir.Stmt the same way the
// teacher's internal/vm executes parser.Expr — here by implementing
// ir.ExprVisitor/ir.StmtVisitor directly against live instance state
// instead of compiling to bytecode first, since §4.6 specifies a
// tree-walking evaluator, not a VM.
package sim

import "plx/internal/types"

// Clock is the simulator's virtual time source: integer nanoseconds,
// monotonic, advanced only by Controller.Tick (§4.6).
type Clock struct {
	now types.Duration
}

func (c *Clock) Now() types.Duration { return c.now }

func (c *Clock) Advance(d types.Duration) { c.now = c.now.Add(d) }

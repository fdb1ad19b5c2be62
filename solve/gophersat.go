package solve

import (
	"context"

	"github.com/crillab/gophersat/solver"
)

// gopherOracle wraps github.com/crillab/gophersat/solver, the second Oracle
// backend (proving the Driver is solver-agnostic, per the teacher's own
// dual gini/gophersat wiring in its deleted marco package). Unlike gini,
// gophersat's Solver exposes no incremental Add and no native interrupt
// hook in this pack, so clauses are buffered and the CNF is built once, at
// Solve time; on cancellation Solve returns Cancelled at once, but the search
// keeps running on its background goroutine and its result is dropped when
// it arrives — documented as a limitation in SPEC_FULL.md §4.D.
type gopherOracle struct {
	clauses [][]int
	model   []bool
}

// NewGopherOracle returns an Oracle backed by github.com/crillab/gophersat.
func NewGopherOracle() Oracle {
	return &gopherOracle{}
}

func (o *gopherOracle) AddClause(lits []int) {
	clause := make([]int, len(lits))
	copy(clause, lits)
	o.clauses = append(o.clauses, clause)
}

func (o *gopherOracle) Solve(ctx context.Context) (Status, error) {
	type outcome struct {
		status Status
		model  []bool
	}
	done := make(chan outcome, 1)

	go func() {
		pb := solver.ParseSlice(o.clauses)
		s := solver.New(pb)
		switch s.Solve() {
		case solver.Sat:
			done <- outcome{status: Sat, model: s.Model()}
		default:
			done <- outcome{status: Unsat}
		}
	}()

	select {
	case <-ctx.Done():
		return Cancelled, ctx.Err()
	case r := <-done:
		o.model = r.model
		return r.status, nil
	}
}

func (o *gopherOracle) Value(v int) bool {
	if v-1 < 0 || v-1 >= len(o.model) {
		return false
	}
	return o.model[v-1]
}

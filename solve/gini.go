package solve

import (
	"context"
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/inter"
	"github.com/irifrance/gini/z"
)

// giniOracle wraps *gini.Gini, the primary Oracle backend. Clause
// submission follows the teacher's own Add/z.Var(...).Pos()/.Neg()/Add(0)
// pattern (see the deleted marco.GiniSolver); cancellation uses gini's
// GoSolve()/Test()/Stop() handle so a context cancellation interrupts the
// search in progress rather than merely discarding a result once Solve()
// eventually returns.
type giniOracle struct {
	s *gini.Gini
}

// NewGiniOracle returns an Oracle backed by github.com/irifrance/gini, with
// nHint variables pre-sized.
func NewGiniOracle(nHint int) Oracle {
	return &giniOracle{s: gini.NewV(nHint)}
}

func (o *giniOracle) AddClause(lits []int) {
	for _, lit := range lits {
		if lit > 0 {
			o.s.Add(z.Var(lit).Pos())
		} else {
			o.s.Add(z.Var(-lit).Neg())
		}
	}
	o.s.Add(0)
}

func (o *giniOracle) Solve(ctx context.Context) (Status, error) {
	handle := o.s.GoSolve()

	for {
		select {
		case <-ctx.Done():
			handle.Stop()
			return Cancelled, ctx.Err()
		default:
		}

		if r, ok := pollGiniHandle(handle); ok {
			switch r {
			case 1:
				return Sat, nil
			case -1:
				return Unsat, nil
			default:
				handle.Stop()
				return Cancelled, ctx.Err()
			}
		}

		time.Sleep(5 * time.Millisecond)
	}
}

func pollGiniHandle(handle inter.Solve) (int, bool) {
	return handle.Test()
}

func (o *giniOracle) Value(v int) bool {
	return o.s.Value(z.Var(v).Pos())
}

// Package analyzer orchestrates a single end-to-end quorum-intersection
// analysis: build the graph, allocate variables, encode the CNF, and run
// it through a SAT oracle, under a time and clause-count ceiling
// (SPEC_FULL.md §5).
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stellar/stellar-quorum-analyzer/allocator"
	"github.com/stellar/stellar-quorum-analyzer/encode"
	"github.com/stellar/stellar-quorum-analyzer/fbas"
	"github.com/stellar/stellar-quorum-analyzer/solve"
)

// Backend names the SAT oracle implementation an Analyzer should use.
type Backend int

const (
	// Gini selects github.com/irifrance/gini, the default backend.
	Gini Backend = iota
	// Gophersat selects github.com/crillab/gophersat.
	Gophersat
)

// Limits bounds the cost of a single analysis. This is the Go equivalent
// of the original's ResourceLimiter/LimitedAllocator: Go has no
// swappable global allocator to intercept, so the memory ceiling becomes
// a clause-count ceiling instead.
type Limits struct {
	// MaxDuration bounds wall-clock time. Zero means unlimited.
	MaxDuration time.Duration
	// MaxClauses bounds the number of CNF clauses emitted. Zero or
	// negative means unlimited.
	MaxClauses int
}

// VerdictKind and Verdict re-export the Driver's outcome types: the
// outward-facing contract named in SPEC_FULL.md §6 lives in this package,
// while the decoding logic it wraps lives in package solve.
type VerdictKind = solve.VerdictKind
type Verdict = solve.Verdict

const (
	Intersects = solve.Intersects
	Disjoint   = solve.Disjoint
)

// Analyzer runs analyses against a chosen backend and logger. An Analyzer
// holds no mutable state between calls to Analyze; a fresh Oracle is
// constructed per call.
type Analyzer struct {
	backend Backend
	log     *zap.Logger
}

// New returns an Analyzer using backend, logging through log (a no-op
// logger if nil).
func New(backend Backend, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{backend: backend, log: log.With(zap.String("component", "SCP"))}
}

// Analyze builds g's graph-derived CNF and decides quorum intersection,
// under limits. A MaxDuration of zero means no deadline is imposed beyond
// ctx's own cancellation.
func (a *Analyzer) Analyze(ctx context.Context, g *fbas.Graph, limits Limits) (Verdict, error) {
	if limits.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MaxDuration)
		defer cancel()
	}

	va := allocator.New(g)
	oracle := a.newOracle(va)
	driver := solve.NewDriver(oracle)

	a.log.Debug("starting analysis",
		zap.Int("vertices", g.NumVertices()),
		zap.Int("validators", g.NumValidators()),
		zap.Int("backend", int(a.backend)),
	)

	verdict, err := driver.Run(ctx, g, va, encode.Limits{MaxClauses: limits.MaxClauses})
	if err != nil {
		a.log.Warn("analysis failed", zap.Error(err))
		return Verdict{}, err
	}

	a.log.Debug("analysis complete", zap.Int("verdict", int(verdict.Kind)))
	return verdict, nil
}

func (a *Analyzer) newOracle(va *allocator.Allocator) solve.Oracle {
	switch a.backend {
	case Gophersat:
		return solve.NewGopherOracle()
	default:
		return solve.NewGiniOracle(va.NumVars())
	}
}

// Package solve implements the Solver Driver & Witness Decoder
// (SPEC_FULL.md §4.D): it submits the CNF produced by package encode to a
// pluggable SAT oracle, turns UNSAT into Intersects and SAT into a
// witness pair of disjoint quorums, and supports cancellation.
package solve

import "context"

// Status is the outcome of a single Solve call.
type Status int

const (
	// Unsat means the problem has no satisfying assignment: the quorum
	// intersection property holds.
	Unsat Status = iota
	// Sat means a satisfying assignment was found: two disjoint quorums
	// exist.
	Sat
	// Cancelled means the context was cancelled before a verdict was
	// reached.
	Cancelled
)

// Oracle is the outbound SAT contract described in SPEC_FULL.md §6. Two
// concrete implementations are provided: giniOracle (github.com/irifrance/gini)
// and gopherOracle (github.com/crillab/gophersat).
type Oracle interface {
	// AddClause adds a single clause, as signed 1-based variable ids.
	AddClause(lits []int)
	// Solve blocks until the oracle reaches SAT, UNSAT, or ctx is
	// cancelled.
	Solve(ctx context.Context) (Status, error)
	// Value reports the truth value assigned to variable v by the most
	// recent Sat result.
	Value(v int) bool
}

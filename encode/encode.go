// Package encode implements the CNF encoder (SPEC_FULL.md §4.C): it emits
// the non-emptiness, disjointness, and quorum-closure clause families,
// Tseitin-expanding each vertex's slice combinations, streaming clauses to
// a solver rather than materializing them.
package encode

import (
	"github.com/stellar/stellar-quorum-analyzer/allocator"
	"github.com/stellar/stellar-quorum-analyzer/fbas"
)

// Limits bounds the combinatorial cost of encoding.
type Limits struct {
	// MaxClauses caps the total number of clauses emitted. Zero or
	// negative means unlimited.
	MaxClauses int
}

// Clause is a CNF clause: signed 1-based variable ids, positive meaning
// positive literal, negative meaning negated literal.
type Clause []int

type emitter struct {
	emit    func(Clause) error
	limits  Limits
	emitted int
}

func (e *emitter) push(c Clause) error {
	if e.limits.MaxClauses > 0 && e.emitted+1 > e.limits.MaxClauses {
		return fbas.Newf(fbas.EncodingOverflow, "clause count exceeds configured ceiling %d", e.limits.MaxClauses)
	}
	if err := e.emit(c); err != nil {
		return err
	}
	e.emitted++
	return nil
}

// Encode emits every clause required to decide quorum intersection for g,
// using va to name variables, calling emit once per clause in streaming
// fashion. Returns an *fbas.Error{Kind: EncodingOverflow} if the
// combinatorial cost would exceed limits.MaxClauses.
func Encode(g *fbas.Graph, va *allocator.Allocator, limits Limits, emit func(Clause) error) error {
	e := &emitter{emit: emit, limits: limits}

	if err := encodeNonEmptiness(g, va, e); err != nil {
		return err
	}
	if err := encodeDisjointness(g, va, e); err != nil {
		return err
	}
	if err := encodeQuorumClosure(g, va, limits, e, va.AVar, va.AlphaVar); err != nil {
		return err
	}
	if err := encodeQuorumClosure(g, va, limits, e, va.BVar, va.BetaVar); err != nil {
		return err
	}
	return nil
}

// (i) non-emptiness: A_1 v ... v A_N, and B_1 v ... v B_N, validator range
// only (SPEC_FULL.md/spec.md §9 "validator-only non-emptiness").
func encodeNonEmptiness(g *fbas.Graph, va *allocator.Allocator, e *emitter) error {
	validators := g.Validators()

	a := make(Clause, 0, len(validators))
	for _, i := range validators {
		a = append(a, va.AVar(i))
	}
	if err := e.push(a); err != nil {
		return err
	}

	b := make(Clause, 0, len(validators))
	for _, i := range validators {
		b = append(b, va.BVar(i))
	}
	return e.push(b)
}

// (ii) disjointness over validators only (spec.md §9 "disjointness scope").
func encodeDisjointness(g *fbas.Graph, va *allocator.Allocator, e *emitter) error {
	for _, i := range g.Validators() {
		if err := e.push(Clause{-va.AVar(i), -va.BVar(i)}); err != nil {
			return err
		}
	}
	return nil
}

// (iii) quorum-closure, for one quorum label X (A or B) identified by
// xVar, with Tseitin auxiliaries produced by auxVar.
func encodeQuorumClosure(
	g *fbas.Graph,
	va *allocator.Allocator,
	limits Limits,
	e *emitter,
	xVar func(int) int,
	auxVar func(vertex, slice int) int,
) error {
	for i := 0; i < g.NumVertices(); i++ {
		if err := encodeVertexClosure(g, i, limits, e, xVar, auxVar); err != nil {
			return err
		}
	}
	return nil
}

func encodeVertexClosure(
	g *fbas.Graph,
	i int,
	limits Limits,
	e *emitter,
	xVar func(int) int,
	auxVar func(vertex, slice int) int,
) error {
	xi := xVar(i)
	threshold := g.Threshold(i)
	successors := g.Successors(i)

	if limits.MaxClauses > 0 {
		remaining := limits.MaxClauses - e.emitted
		if _, ok := binomial(len(successors), threshold, remaining); !ok {
			return fbas.Newf(fbas.EncodingOverflow,
				"vertex %d has too many slices (C(%d,%d)) for the configured clause ceiling %d",
				i, len(successors), threshold, limits.MaxClauses)
		}
	}

	atLeastOne := Clause{-xi}
	comb := newCombinations(successors, threshold)
	slice := 0
	for s, ok := comb.next(); ok; s, ok = comb.next() {
		xij := auxVar(i, slice)

		negPiJ := Clause{xij}
		for _, k := range s {
			elit := xVar(k)
			negPiJ = append(negPiJ, -elit)
			if err := e.push(Clause{-xij, elit}); err != nil {
				return err
			}
		}
		if err := e.push(negPiJ); err != nil {
			return err
		}

		atLeastOne = append(atLeastOne, xij)
		slice++
	}

	return e.push(atLeastOne)
}

// Package allocator assigns distinct, deterministic SAT variable
// identifiers to the three disjoint proposition families used by the CNF
// encoder: A_i/B_i (one pair per FBAS vertex) and the Tseitin auxiliaries
// alpha_i^j/beta_i^j (one pair per vertex/slice-index), per SPEC_FULL.md
// §4.B.
package allocator

import "github.com/stellar/stellar-quorum-analyzer/fbas"

type auxKey struct {
	vertex int
	slice  int
}

// Allocator hands out 1-based SAT variable ids. A_i/B_i are allocated
// eagerly over a contiguous prefix at construction time; auxiliaries are
// allocated lazily, on first request, as the CNF encoder enumerates
// slices — preserving the encoder's lazy-enumeration resource guarantee
// (SPEC_FULL.md §4.C).
type Allocator struct {
	g *fbas.Graph

	alpha map[auxKey]int
	beta  map[auxKey]int
	next  int
}

// New returns an Allocator for g, with A_i/B_i already assigned.
func New(g *fbas.Graph) *Allocator {
	n := g.NumVertices()
	return &Allocator{
		g:     g,
		alpha: make(map[auxKey]int),
		beta:  make(map[auxKey]int),
		// A_1..A_n occupy [1, n], B_1..B_n occupy [n+1, 2n].
		next: 2*n + 1,
	}
}

// AVar returns the variable id for A_i, vertex i belongs to quorum A.
func (a *Allocator) AVar(i int) int { return i + 1 }

// BVar returns the variable id for B_i, vertex i belongs to quorum B.
func (a *Allocator) BVar(i int) int { return a.g.NumVertices() + i + 1 }

// AlphaVar returns the variable id for alpha_i^slice, the Tseitin
// auxiliary for "slice `slice` of vertex i is fully contained in quorum
// A", allocating it on first use.
func (a *Allocator) AlphaVar(i, slice int) int {
	return a.auxVar(a.alpha, i, slice)
}

// BetaVar is AlphaVar's quorum-B counterpart.
func (a *Allocator) BetaVar(i, slice int) int {
	return a.auxVar(a.beta, i, slice)
}

func (a *Allocator) auxVar(table map[auxKey]int, vertex, slice int) int {
	key := auxKey{vertex: vertex, slice: slice}
	if v, ok := table[key]; ok {
		return v
	}
	v := a.next
	a.next++
	table[key] = v
	return v
}

// NumVars returns the count of variables allocated so far.
func (a *Allocator) NumVars() int { return a.next - 1 }

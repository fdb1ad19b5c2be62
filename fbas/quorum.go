package fbas

import mapset "github.com/deckarep/golang-set/v2"

// IsQuorum reports whether the vertex set members satisfies the quorum
// definition against g: every vertex in members has at least one slice
// (a threshold-sized subset of its successors) fully contained in members.
// Because a slice is *any* subset of successors of size exactly t_i, this
// reduces to a cardinality check: i qualifies iff at least t_i of its
// successors are themselves in members.
func IsQuorum(g *Graph, members mapset.Set[int]) bool {
	if members.Cardinality() == 0 {
		return false
	}
	for i := range members.Iter() {
		count := 0
		for _, s := range g.Successors(i) {
			if members.Contains(s) {
				count++
			}
		}
		if count < g.Threshold(i) {
			return false
		}
	}
	return true
}

// ValidatorSet converts a set of validator vertex indices into their string
// identities, in the same order as indices.
func ValidatorSet(g *Graph, indices []int) []string {
	names := make([]string, 0, len(indices))
	for _, i := range indices {
		names = append(names, g.ValidatorName(i))
	}
	return names
}

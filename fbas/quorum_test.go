package fbas

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQuorumEmptySetIsNotAQuorum(t *testing.T) {
	g, err := FromQuorumSetMap(map[string]*QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
	}, nil)
	require.NoError(t, err)

	assert.False(t, IsQuorum(g, mapset.NewThreadUnsafeSet[int]()))
}

func TestIsQuorumSimpleMajority(t *testing.T) {
	g, err := FromQuorumSetMap(map[string]*QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"B": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"C": {Threshold: 2, Validators: []string{"A", "B", "C"}},
	}, nil)
	require.NoError(t, err)

	// IsQuorum walks the closure over the whole vertex space (validators
	// and quorum-set vertices alike), matching how the solved model
	// assigns membership in package solve: a validator's successor is
	// its quorum-set vertex, so both must be present for the closure to
	// hold.
	everything := mapset.NewThreadUnsafeSet[int]()
	for i := 0; i < g.NumVertices(); i++ {
		everything.Add(i)
	}
	assert.True(t, IsQuorum(g, everything))

	// Two validators alone, without their quorum-set vertex, do not form
	// a quorum: each validator's threshold-1 closure requires its
	// quorum-set successor to also be a member.
	two := mapset.NewThreadUnsafeSet[int](g.Validators()[0], g.Validators()[1])
	assert.False(t, IsQuorum(g, two))
}

func TestValidatorSetMapsIndicesToNames(t *testing.T) {
	g, err := FromQuorumSetMap(map[string]*QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
	}, nil)
	require.NoError(t, err)

	names := ValidatorSet(g, g.Validators())
	assert.Equal(t, []string{"A"}, names)
}

package fbas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleMajority(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"B": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"C": {Threshold: 2, Validators: []string{"A", "B", "C"}},
	}

	g, err := FromQuorumSetMap(qsm, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumValidators())
	// One quorum-set vertex per validator, hash-consed to a single
	// vertex since every slice is structurally identical.
	assert.Equal(t, 4, g.NumVertices())
}

func TestBuildHashConsing(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"B": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"C": {Threshold: 2, Validators: []string{"A", "B", "C"}},
	}

	g, err := FromQuorumSetMap(qsm, nil)
	require.NoError(t, err)

	qsetVertices := 0
	for i := 0; i < g.NumVertices(); i++ {
		if g.Kind(i) == QuorumSetVertex {
			qsetVertices++
		}
	}
	assert.Equal(t, 1, qsetVertices, "identical quorum sets should collapse to one vertex")
}

func TestBuildUnknownValidatorReferenceIsHardError(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {Threshold: 1, Validators: []string{"NOPE"}},
	}

	_, err := FromQuorumSetMap(qsm, nil)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MalformedGraph, fe.Kind)
}

func TestBuildThresholdOutOfRange(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {Threshold: 4, Validators: []string{"A", "B"}},
		"B": {Threshold: 1, Validators: []string{"A", "B"}},
	}

	_, err := FromQuorumSetMap(qsm, nil)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MalformedGraph, fe.Kind)
}

func TestBuildOutdegreeZeroRejected(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {Threshold: 1},
	}

	_, err := FromQuorumSetMap(qsm, nil)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MalformedGraph, fe.Kind)
}

func TestBuildMaxDepthExceeded(t *testing.T) {
	inner := &QuorumSet{Threshold: 1, Validators: []string{"A"}}
	for i := 0; i < QuorumSetMaxDepth; i++ {
		inner = &QuorumSet{Threshold: 1, InnerSets: []*QuorumSet{inner}}
	}

	qsm := map[string]*QuorumSet{"A": inner}
	_, err := FromQuorumSetMap(qsm, nil)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MalformedGraph, fe.Kind)
}

func TestBuildNestedQuorumSets(t *testing.T) {
	qsm := map[string]*QuorumSet{
		"A": {
			Threshold:  1,
			Validators: []string{"A"},
			InnerSets: []*QuorumSet{
				{Threshold: 2, Validators: []string{"B", "C"}},
			},
		},
		"B": {Threshold: 1, Validators: []string{"B"}},
		"C": {Threshold: 1, Validators: []string{"C"}},
	}

	g, err := FromQuorumSetMap(qsm, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumValidators())
}

package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar/stellar-quorum-analyzer/fbas"
)

// S1: a single validator whose sole slice is itself intersects trivially.
func TestAnalyzeSingleValidatorIntersects(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Intersects, v.Kind)
}

// S2: two validators with disjoint singleton slices never intersect.
func TestAnalyzeTwoIndependentValidatorsAreDisjoint(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
		"B": {Threshold: 1, Validators: []string{"B"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Disjoint, v.Kind)
}

// S3: a 2-of-3 majority intersects (any two majorities share a member).
func TestAnalyzeTwoOfThreeMajorityIntersects(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"B": {Threshold: 2, Validators: []string{"A", "B", "C"}},
		"C": {Threshold: 2, Validators: []string{"A", "B", "C"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Intersects, v.Kind)
}

// S4: two disjoint 2-of-2 cliques never intersect.
func TestAnalyzeTwoDisjointCliquesAreDisjoint(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "B"}},
		"B": {Threshold: 2, Validators: []string{"A", "B"}},
		"C": {Threshold: 2, Validators: []string{"C", "D"}},
		"D": {Threshold: 2, Validators: []string{"C", "D"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Disjoint, v.Kind)
	assert.NotEmpty(t, v.QuorumA)
	assert.NotEmpty(t, v.QuorumB)
}

// S5: two validators that each require both themselves and a shared bridge
// validator (2-of-2) intersect, since every quorum contains the bridge.
func TestAnalyzeSharedBridgeValidatorForcesIntersection(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 2, Validators: []string{"A", "Bridge"}},
		"B": {Threshold: 2, Validators: []string{"B", "Bridge"}},
		"Bridge": {Threshold: 1, Validators: []string{"Bridge"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Intersects, v.Kind)
}

// S6: nested inner quorum sets are still subject to disjointness.
func TestAnalyzeNestedQuorumSetsDisjoint(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {
			Threshold:  1,
			Validators: []string{"A"},
			InnerSets: []*fbas.QuorumSet{
				{Threshold: 2, Validators: []string{"X", "Y"}},
			},
		},
		"X": {Threshold: 1, Validators: []string{"X"}},
		"Y": {Threshold: 1, Validators: []string{"Y"}},
		"B": {Threshold: 1, Validators: []string{"B"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Disjoint, v.Kind)
}

// S6b: two validators whose sole slice is the very same quorum-set vertex
// Q. Every satisfying model forces that shared Q vertex true on both sides,
// but the two witness quorums still share no validator, so the verdict
// must be Disjoint: disjointness is scoped to validators, not all vertices.
func TestAnalyzeSharedInnerQuorumSetVertexIsStillDisjoint(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 1, InnerSets: []*fbas.QuorumSet{
			{Threshold: 1, Validators: []string{"A", "B"}},
		}},
		"B": {Threshold: 1, InnerSets: []*fbas.QuorumSet{
			{Threshold: 1, Validators: []string{"A", "B"}},
		}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	v, err := a.Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)
	assert.Equal(t, Disjoint, v.Kind)
	assert.NotEmpty(t, v.QuorumA)
	assert.NotEmpty(t, v.QuorumB)
}

func TestAnalyzeRespectsMaxDuration(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
	}, nil)
	require.NoError(t, err)

	a := New(Gini, nil)
	_, err = a.Analyze(context.Background(), g, Limits{MaxDuration: time.Nanosecond})
	// A one-nanosecond budget on even the smallest graph should either
	// surface a cancellation or, if the solve finishes first, no error
	// at all — it must never hang.
	if err != nil {
		var fe *fbas.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fbas.Cancelled, fe.Kind)
	}
}

func TestAnalyzeGopherBackendAgreesWithGini(t *testing.T) {
	g, err := fbas.FromQuorumSetMap(map[string]*fbas.QuorumSet{
		"A": {Threshold: 1, Validators: []string{"A"}},
		"B": {Threshold: 1, Validators: []string{"B"}},
	}, nil)
	require.NoError(t, err)

	giniVerdict, err := New(Gini, nil).Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)

	gopherVerdict, err := New(Gophersat, nil).Analyze(context.Background(), g, Limits{})
	require.NoError(t, err)

	assert.Equal(t, giniVerdict.Kind, gopherVerdict.Kind)
}

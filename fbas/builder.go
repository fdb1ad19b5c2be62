package fbas

import (
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// QuorumSetMaxDepth bounds how deeply a QuorumSet tree may nest, mirroring
// the original's QUORUM_SET_MAX_DEPTH.
const QuorumSetMaxDepth = 4

// Builder constructs a Graph from a validator->quorum-set map. It performs
// quorum-set subtree hash-consing (SPEC_FULL.md §4.A): structurally
// identical QuorumSet subtrees collapse to a single vertex.
type Builder struct {
	log *zap.Logger

	vertices   []vertex
	successors [][]int
	validators []int

	knownValidators map[string]int
	knownQsets      map[string]int
}

// NewBuilder returns a Builder that logs to log (or a no-op logger if nil).
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		log:             log.With(zap.String("component", "SCP")),
		knownValidators: make(map[string]int),
		knownQsets:      make(map[string]int),
	}
}

// Build constructs a *Graph from a map of validator identity to its
// quorum-set specification.
func (b *Builder) Build(qsm map[string]*QuorumSet) (*Graph, error) {
	names := make([]string, 0, len(qsm))
	for name := range qsm {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		idx := b.addValidator(name)
		b.knownValidators[name] = idx
	}

	for _, name := range names {
		vIdx := b.knownValidators[name]
		qIdx, err := b.processQuorumSet(qsm[name], 0)
		if err != nil {
			return nil, err
		}
		b.successors[vIdx] = []int{qIdx}
	}

	b.log.Debug("built FBAS graph",
		zap.Int("validators", len(b.validators)),
		zap.Int("vertices", len(b.vertices)),
	)

	return &Graph{
		vertices:   b.vertices,
		successors: b.successors,
		validators: b.validators,
	}, nil
}

func (b *Builder) addValidator(name string) int {
	idx := len(b.vertices)
	b.vertices = append(b.vertices, vertex{kind: ValidatorVertex, validator: name})
	b.successors = append(b.successors, nil)
	b.validators = append(b.validators, idx)
	return idx
}

func (b *Builder) addQuorumSetVertex(threshold int, successors []int) int {
	idx := len(b.vertices)
	b.vertices = append(b.vertices, vertex{kind: QuorumSetVertex, threshold: threshold})
	b.successors = append(b.successors, successors)
	return idx
}

func (b *Builder) processQuorumSet(qs *QuorumSet, depth int) (int, error) {
	if depth >= QuorumSetMaxDepth {
		return 0, Newf(MalformedGraph, "quorum set nesting exceeds max depth %d", QuorumSetMaxDepth)
	}

	validatorIdx := make([]int, 0, len(qs.Validators))
	for _, name := range qs.Validators {
		idx, ok := b.knownValidators[name]
		if !ok {
			return 0, Newf(MalformedGraph, "unknown validator reference %q", name)
		}
		validatorIdx = append(validatorIdx, idx)
	}

	innerIdx := make([]int, 0, len(qs.InnerSets))
	for _, inner := range qs.InnerSets {
		idx, err := b.processQuorumSet(inner, depth+1)
		if err != nil {
			return 0, err
		}
		innerIdx = append(innerIdx, idx)
	}

	successors := dedupSorted(mapset.NewSet[int](append(validatorIdx, innerIdx...)...))
	outdegree := len(successors)
	if outdegree == 0 {
		return 0, Newf(MalformedGraph, "quorum set with threshold %d has no successors", qs.Threshold)
	}
	if qs.Threshold < 1 || qs.Threshold > outdegree {
		return 0, Newf(MalformedGraph, "threshold %d out of range [1, %d]", qs.Threshold, outdegree)
	}

	key := qsetKey(qs.Threshold, successors)
	if idx, ok := b.knownQsets[key]; ok {
		return idx, nil
	}

	idx := b.addQuorumSetVertex(qs.Threshold, successors)
	b.knownQsets[key] = idx
	return idx, nil
}

// dedupSorted collapses a successor set (deduplicated via mapset, since a
// quorum set may reference the same inner vertex through more than one
// path) into ascending order for deterministic clause generation.
func dedupSorted(ids mapset.Set[int]) []int {
	out := ids.ToSlice()
	sort.Ints(out)
	return out
}

func qsetKey(threshold int, successors []int) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(threshold))
	sb.WriteByte('|')
	for _, s := range successors {
		sb.WriteString(strconv.Itoa(s))
		sb.WriteByte(',')
	}
	return sb.String()
}

// FromQuorumSetMap is the shared entry point both the XDR and JSON input
// paths funnel into.
func FromQuorumSetMap(qsm map[string]*QuorumSet, log *zap.Logger) (*Graph, error) {
	return NewBuilder(log).Build(qsm)
}

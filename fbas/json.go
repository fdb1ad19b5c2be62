package fbas

import (
	"encoding/json"
	"io"

	"go.uber.org/zap"
)

// FromJSON builds a Graph from the JSON quorum-set map described in
// SPEC_FULL.md §4.A/§6. Two schemas are auto-detected from the JSON root
// shape: a top-level object with a "nodes" array (the "regular" schema),
// or a top-level array of stellarbeat-style node records.
func FromJSON(r io.Reader, log *zap.Logger) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Wrap(InputParse, err, "failed to read JSON input")
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, Wrap(InputParse, err, "failed to parse JSON")
	}

	switch probe.(type) {
	case map[string]any:
		qsm, err := parseRegularSchema(raw)
		if err != nil {
			return nil, err
		}
		return FromQuorumSetMap(qsm, log)
	case []any:
		qsm, err := parseStellarbeatSchema(raw)
		if err != nil {
			return nil, err
		}
		return FromQuorumSetMap(qsm, log)
	default:
		return nil, Newf(InputParse, "JSON root is neither an object nor an array")
	}
}

type regularRoot struct {
	Nodes []regularNode `json:"nodes"`
}

type regularNode struct {
	Node string      `json:"node"`
	Qset regularQset `json:"qset"`
}

type regularQset struct {
	T int               `json:"t"`
	V []json.RawMessage `json:"v"`
}

func parseRegularSchema(raw []byte) (map[string]*QuorumSet, error) {
	var root regularRoot
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, Wrap(InputParse, err, "failed to parse regular JSON schema")
	}

	qsm := make(map[string]*QuorumSet, len(root.Nodes))
	for _, n := range root.Nodes {
		if n.Node == "" {
			return nil, Newf(InputParse, "node field missing or not a string")
		}
		qs, err := parseRegularQset(n.Qset)
		if err != nil {
			return nil, err
		}
		qsm[n.Node] = qs
	}
	return qsm, nil
}

func parseRegularQset(raw regularQset) (*QuorumSet, error) {
	qs := &QuorumSet{Threshold: raw.T}
	for _, item := range raw.V {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			qs.Validators = append(qs.Validators, s)
			continue
		}
		var inner regularQset
		if err := json.Unmarshal(item, &inner); err != nil {
			return nil, Newf(InputParse, "v entry is neither a validator string nor a quorum set object")
		}
		innerQs, err := parseRegularQset(inner)
		if err != nil {
			return nil, err
		}
		qs.InnerSets = append(qs.InnerSets, innerQs)
	}
	return qs, nil
}

type sbNode struct {
	PublicKey string `json:"publicKey"`
	QuorumSet sbQset `json:"quorumSet"`
}

type sbQset struct {
	Threshold       int      `json:"threshold"`
	Validators      []string `json:"validators"`
	InnerQuorumSets []sbQset `json:"innerQuorumSets"`
}

func parseStellarbeatSchema(raw []byte) (map[string]*QuorumSet, error) {
	var nodes []sbNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, Wrap(InputParse, err, "failed to parse stellarbeat JSON schema")
	}

	qsm := make(map[string]*QuorumSet, len(nodes))
	for _, n := range nodes {
		if n.PublicKey == "" {
			return nil, Newf(InputParse, "publicKey field missing or not a string")
		}
		qsm[n.PublicKey] = convertSBQset(n.QuorumSet)
	}
	return qsm, nil
}

func convertSBQset(raw sbQset) *QuorumSet {
	qs := &QuorumSet{
		Threshold:  raw.Threshold,
		Validators: append([]string(nil), raw.Validators...),
	}
	for _, inner := range raw.InnerQuorumSets {
		qs.InnerSets = append(qs.InnerSets, convertSBQset(inner))
	}
	return qs
}

package fbas

import (
	"encoding/base32"
	"encoding/binary"

	"go.uber.org/zap"
)

// FromXDR builds a Graph from parallel arrays of XDR-encoded NodeID and
// ScpQuorumSet buffers, as delivered by a consensus node (SPEC_FULL.md §6).
// No XDR library exists in this module's dependency set (none was found in
// the examples this module was grounded on), so decoding is done directly
// against the wire format with encoding/binary — see DESIGN.md.
func FromXDR(nodes, quorumSets [][]byte, log *zap.Logger) (*Graph, error) {
	if len(nodes) != len(quorumSets) {
		return nil, Newf(InputParse, "length of nodes (%d) and quorum_sets (%d) do not match", len(nodes), len(quorumSets))
	}

	qsm := make(map[string]*QuorumSet, len(nodes))
	for i := range nodes {
		name, err := decodeNodeID(nodes[i])
		if err != nil {
			return nil, Wrap(InputParse, err, "NodeId cannot be decoded from xdr")
		}
		if len(quorumSets[i]) == 0 {
			continue
		}
		qs, _, err := decodeScpQuorumSet(quorumSets[i], 0)
		if err != nil {
			return nil, Wrap(InputParse, err, "ScpQuorumSet cannot be decoded from xdr")
		}
		qsm[name] = qs
	}

	return FromQuorumSetMap(qsm, log)
}

// publicKeyTypeEd25519 is the PublicKeyType discriminant for
// PUBLIC_KEY_TYPE_ED25519 in the Stellar XDR schema.
const publicKeyTypeEd25519 = int32(0)

type xdrReader struct {
	buf []byte
	pos int
}

func (r *xdrReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, Newf(InputParse, "unexpected end of XDR buffer reading uint32")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *xdrReader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *xdrReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, Newf(InputParse, "unexpected end of XDR buffer reading %d bytes", n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// decodeNodeID decodes a NodeID (a PublicKey union) and returns its
// strkey-encoded string form, matching the original's use of
// stellar_strkey::ed25519::PublicKey for display/identity purposes.
func decodeNodeID(buf []byte) (string, error) {
	r := &xdrReader{buf: buf}
	kind, err := r.i32()
	if err != nil {
		return "", err
	}
	if kind != publicKeyTypeEd25519 {
		return "", Newf(InputParse, "unsupported PublicKeyType %d", kind)
	}
	key, err := r.bytes(32)
	if err != nil {
		return "", err
	}
	return encodeEd25519PublicKey(key), nil
}

// decodeScpQuorumSet decodes a ScpQuorumSet { threshold: uint32,
// validators: NodeID<>, innerSets: ScpQuorumSet<> } from buf starting at
// depth, enforcing QuorumSetMaxDepth the way the original's
// process_scp_quorum_set does.
func decodeScpQuorumSet(buf []byte, depth int) (*QuorumSet, int, error) {
	if depth >= QuorumSetMaxDepth {
		return nil, 0, Newf(MalformedGraph, "quorum set nesting exceeds max depth %d", QuorumSetMaxDepth)
	}

	r := &xdrReader{buf: buf}
	threshold, err := r.u32()
	if err != nil {
		return nil, 0, err
	}

	numValidators, err := r.u32()
	if err != nil {
		return nil, 0, err
	}
	validators := make([]string, 0, numValidators)
	for i := uint32(0); i < numValidators; i++ {
		nodeBuf, err := r.bytes(4 + 32) // discriminant + raw ed25519 key
		if err != nil {
			return nil, 0, err
		}
		name, err := decodeNodeID(nodeBuf)
		if err != nil {
			return nil, 0, err
		}
		validators = append(validators, name)
	}

	numInner, err := r.u32()
	if err != nil {
		return nil, 0, err
	}
	inner := make([]*QuorumSet, 0, numInner)
	for i := uint32(0); i < numInner; i++ {
		innerQs, consumed, err := decodeScpQuorumSet(r.buf[r.pos:], depth+1)
		if err != nil {
			return nil, 0, err
		}
		r.pos += consumed
		inner = append(inner, innerQs)
	}

	return &QuorumSet{Threshold: int(threshold), Validators: validators, InnerSets: inner}, r.pos, nil
}

// strkey encoding for an ed25519 public key ("G..." address), per the
// Stellar strkey format: version byte || 32-byte payload || 2-byte CRC16
// (XMODEM, little-endian), base32-encoded without padding.
const strkeyVersionByteEd25519PublicKey byte = 6 << 3

func encodeEd25519PublicKey(key []byte) string {
	payload := make([]byte, 0, 1+len(key)+2)
	payload = append(payload, strkeyVersionByteEd25519PublicKey)
	payload = append(payload, key...)
	checksum := crc16XModem(payload)
	payload = append(payload, byte(checksum), byte(checksum>>8))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(payload)
}

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Package types holds the small value types shared across the simulator:
// peer identifiers, the simulator's abstract block/tx hashes, and the
// trivial "public key"/"signature" integers described by the simulated
// protocol's data model. None of these carry real cryptographic weight —
// see pkg/keys for the real secp256k1 path used by the offline wallet demo.
package types

import "fmt"

// Hash is the simulator's abstract block/transaction identifier: a small
// integer assigned by whichever node first created the object, not a real
// cryptographic digest.
type Hash int64

// NullHash is the sentinel hash: the parent of the genesis block, and the
// "no common point yet" locator value.
const NullHash Hash = 0

// IsNull reports whether h is the sentinel hash.
func (h Hash) IsNull() bool {
	return h == NullHash
}

func (h Hash) String() string {
	return fmt.Sprintf("#%d", int64(h))
}

// PeerID is an opaque small integer, globally unique within a simulation run.
type PeerID int

func (p PeerID) String() string {
	return fmt.Sprintf("peer%d", int(p))
}

// PublicKey is the simulator's abstract public key: an integer, conventionally
// 2*PeerID for a miner's coinbase output (see pkg/node's new_block workload
// handler).
type PublicKey int64

// Signature is the simulator's trivial "signature": by definition it is only
// valid when it equals PublicKey+1 (see pkg/node's mine handler, spec §4.4).
type Signature int64

// Valid reports whether sig is the valid signature for pub under the
// simulator's trivial scheme.
func (sig Signature) Valid(pub PublicKey) bool {
	return int64(sig) == int64(pub)+1
}

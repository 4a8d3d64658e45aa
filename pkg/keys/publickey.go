// Package keys wraps the secp256k1 keypair pkg/wallet uses to sign and
// verify digests on behalf of a simulated peer, entirely outside the
// simulator's own trivial integer "signature" scheme (see pkg/types.Signature).
package keys

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"

	"github.com/chain-sim/powsim/pkg/encoding"
)

// mainnetP2PKH is the Base58Check version byte for a Pay-to-PubKey-Hash
// address, the only address shape the wallet demo needs.
const mainnetP2PKH byte = 0x00

// PublicKey is a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Bytes returns the compressed serialized public key.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Hash160 returns RIPEMD160(SHA256(pubkey)), the basis of a P2PKH address.
func (pub *PublicKey) Hash160() []byte {
	sha := sha256.Sum256(pub.Bytes())

	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}

// Address renders the public key as a Base58Check P2PKH address. A wallet
// keys each address to the simulated peer that owns it (see pkg/wallet).
func (pub *PublicKey) Address() string {
	return encoding.EncodeBase58Check(mainnetP2PKH, pub.Hash160())
}

// String returns the hex-encoded compressed public key.
func (pub *PublicKey) String() string {
	return fmt.Sprintf("%x", pub.Bytes())
}

// Verify verifies a signature against a 32-byte digest.
func (pub *PublicKey) Verify(digest []byte, sig *Signature) bool {
	if len(digest) != 32 {
		return false
	}
	return sig.sig.Verify(digest, pub.key)
}

package keys

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature is an ECDSA signature over a 32-byte digest.
type Signature struct {
	sig *ecdsa.Signature
}

// String returns the DER-encoded signature as hex.
func (s *Signature) String() string {
	return hex.EncodeToString(s.sig.Serialize())
}

// Package wallet ties a real secp256k1 keypair to a simulated peer's
// identity.
//
// It is not part of the simulated protocol: peers inside a run exchange the
// trivial integer "signatures" described by the simulator's data model (see
// pkg/types.Signature), never real ECDSA ones. This package exists so cmd/powsim's
// wallet-demo subcommand can show what a real signing path for a simulated
// peer's identity would look like, built on top of pkg/keys.
package wallet

import (
	"fmt"
	"sync"

	"github.com/chain-sim/powsim/pkg/keys"
	"github.com/chain-sim/powsim/pkg/types"
)

// Wallet holds one generated keypair per simulated peer it has onboarded.
type Wallet struct {
	mu     sync.RWMutex
	byPeer map[types.PeerID]*keys.PrivateKey
	byAddr map[string]types.PeerID
}

// New creates an empty wallet.
func New() *Wallet {
	return &Wallet{
		byPeer: make(map[types.PeerID]*keys.PrivateKey),
		byAddr: make(map[string]types.PeerID),
	}
}

// GenerateAddressForPeer creates a new keypair for id and returns its
// address. Calling it again for the same id replaces its key.
func (w *Wallet) GenerateAddressForPeer(id types.PeerID) (string, error) {
	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		return "", err
	}
	addr := priv.PublicKey().Address()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.byPeer[id] = priv
	w.byAddr[addr] = id
	return addr, nil
}

// PeerForAddress reports which simulated peer, if any, a wallet address was
// generated for.
func (w *Wallet) PeerForAddress(address string) (types.PeerID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	id, ok := w.byAddr[address]
	return id, ok
}

// SignDigest signs an arbitrary 32-byte digest with peer id's key. Used to
// demonstrate a real signature over a digest derived from a simulated peer's
// identity (see cmd/powsim's wallet-demo), entirely outside the simulation
// loop.
func (w *Wallet) SignDigest(id types.PeerID, digest [32]byte) (*keys.Signature, error) {
	w.mu.RLock()
	priv, ok := w.byPeer[id]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("wallet: no key for peer %v", id)
	}
	return priv.Sign(digest[:])
}

// VerifyDigest verifies a signature produced by SignDigest for peer id.
func (w *Wallet) VerifyDigest(id types.PeerID, digest [32]byte, sig *keys.Signature) (bool, error) {
	w.mu.RLock()
	priv, ok := w.byPeer[id]
	w.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("wallet: no key for peer %v", id)
	}
	return priv.PublicKey().Verify(digest[:], sig), nil
}

package node

import (
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// Dialer lets a node ask something outside itself to open a new connection,
// used by the addrs handler's "connect to the first half of the new
// addresses" behavior (spec §4.5), which needs visibility into every other
// node in the run that a single Node doesn't have.
type Dialer interface {
	Dial(from, to types.PeerID)
}

// Registry holds every node in a run and acts as their shared Dialer.
type Registry struct {
	Nodes map[types.PeerID]*Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{Nodes: make(map[types.PeerID]*Node)}
}

// Add registers n and makes the registry its dialer.
func (r *Registry) Add(n *Node) {
	r.Nodes[n.ID] = n
	n.dialer = r
}

// EstablishConnections wires up the initial topology (spec §4.5): every
// online node that is not itself in the default-node list iterates its
// known addresses and, for each distinct online peer, opens a bidirectional
// gate pair, then announces its chain height to every outbound peer it
// gained. Call once, after every node has been added and seeded with its
// initial address book.
func (r *Registry) EstablishConnections() {
	for _, n := range r.Nodes {
		if !n.online || n.isDefaultNode {
			continue
		}
		for _, addr := range n.Addrs.All() {
			r.Dial(n.ID, addr)
		}
	}
}

// Dial opens a bidirectional gate pair between from and to if neither side
// already has a record of the other, then has from announce its chain
// height to to (spec §4.5's "node then broadcasts nodeversion to every
// outbound peer" — applied here to the one peer just connected to).
func (r *Registry) Dial(from, to types.PeerID) {
	if from == to {
		return
	}
	n, ok := r.Nodes[from]
	if !ok {
		return
	}
	if _, exists := n.peers[to]; exists {
		return
	}
	target, ok := r.Nodes[to]
	if !ok || !target.online {
		return
	}

	connectPair(n, target)
	n.send(to, protocol.NewNodeVersion(n.ID, n.run.Version, n.Chain.ChainHeight()))
}

// connectPair opens the outbound gate from n to target and from target back
// to n, and inserts matching peer records on each side. The initiator's
// record of target is outbound; target's record of the initiator is inbound.
func connectPair(n, target *Node) {
	n.outGates[target.ID] = n.kernel.OpenGate(n.ID, target.ID)
	n.addPeerRecord(target.ID, false)
	if n.metrics != nil {
		n.metrics.IncrementPeerCount(false)
	}

	target.outGates[n.ID] = target.kernel.OpenGate(target.ID, n.ID)
	target.addPeerRecord(n.ID, true)
	if target.metrics != nil {
		target.metrics.IncrementPeerCount(true)
	}
}

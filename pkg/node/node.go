// Package node implements the node scheduler and protocol handlers (spec
// components C6 and C7): the cooperative, single-threaded per-node state
// machine that drives the handshake, address gossip, header-first sync,
// and tx/mining behavior described by spec.md §4.4-§4.5.
package node

import (
	"github.com/chain-sim/powsim/pkg/addrmgr"
	"github.com/chain-sim/powsim/pkg/chain"
	"github.com/chain-sim/powsim/pkg/config"
	"github.com/chain-sim/powsim/pkg/monitoring"
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/simkernel"
	"github.com/chain-sim/powsim/pkg/types"
)

// spentOutput identifies one output this node has already used as an input
// to a transaction it built, so the tx workload handler never double-spends
// its own tip outputs.
type spentOutput struct {
	TxHash types.Hash
	Index  int
}

// Node is one simulated peer: its chain, address book, per-peer connection
// state, and mempool halves.
type Node struct {
	ID  types.PeerID
	run *config.RunConfig

	Chain *chain.Chain
	Addrs *addrmgr.Manager

	kernel  simkernel.Kernel
	metrics *monitoring.Metrics
	log     *monitoring.Logger

	peers    map[types.PeerID]*peer.Peer
	ring     []types.PeerID
	outGates map[types.PeerID]simkernel.Gate
	dialer   Dialer

	online        bool
	miner         bool
	isDefaultNode bool

	bestPeerHeight int
	numSyncs       int

	unverifiedTxs []types.Transaction
	verifiedTxs   []types.Transaction
	outputsSpent  map[spentOutput]bool

	// nextTxHash tracks the next hash this node will assign to a tx it
	// originates (coinbase or payment). Chain.MaxTxHash alone isn't enough:
	// it only sees confirmed transactions, so a payment tx built against
	// the current tip and a coinbase built for the next block would
	// otherwise both claim Chain.MaxTxHash()+1 before either confirms.
	nextTxHash types.Hash

	pendingAnnouncements []types.BlockHeader

	selfHandlers map[protocol.Command]func(*Node, protocol.Message)
	peerHandlers map[protocol.Command]func(*Node, *peer.Peer, protocol.Message)
}

// New constructs a node. seed fixes this node's address-sampling order.
func New(id types.PeerID, run *config.RunConfig, kernel simkernel.Kernel, metrics *monitoring.Metrics, seed int64, online, miner, isDefaultNode bool) *Node {
	n := &Node{
		ID:            id,
		run:           run,
		Chain:         chain.Empty(run.BlocksPerFile),
		Addrs:         addrmgr.New(seed),
		kernel:        kernel,
		metrics:       metrics,
		log:           monitoring.Component("node").WithField("peer", id),
		peers:         make(map[types.PeerID]*peer.Peer),
		outGates:      make(map[types.PeerID]simkernel.Gate),
		online:        online,
		miner:         miner,
		isDefaultNode: isDefaultNode,
		outputsSpent:  make(map[spentOutput]bool),
	}
	n.selfHandlers = selfDispatchTable()
	n.peerHandlers = peerDispatchTable()
	return n
}

// IsMiner reports whether this node mines new blocks.
func (n *Node) IsMiner() bool { return n.miner }

// IsOnline reports whether this node is participating in the run.
func (n *Node) IsOnline() bool { return n.online }

// Peer returns the peer record for id, if any.
func (n *Node) Peer(id types.PeerID) (*peer.Peer, bool) {
	p, ok := n.peers[id]
	return p, ok
}

// Peers returns every peer record this node currently holds, keyed by id.
func (n *Node) Peers() map[types.PeerID]*peer.Peer {
	return n.peers
}

// Start schedules the node's periodic self-events. Connection establishment
// happens separately, via EstablishConnections, once every node in the run
// has been constructed.
func (n *Node) Start() {
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdCheckQueues, n.ID), n.run.ThreadScheduleInterval)
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdPollAddrs, n.ID), n.run.ThreadScheduleInterval)
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdDumpAddr, n.ID), n.run.DumpAddressesInterval)
	if n.miner {
		n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdMine, n.ID), n.run.ThreadScheduleInterval)
	}
}

// Deliver is the entry point the simulation driver calls for every kernel
// delivery addressed to this node. It classifies the message (spec §2's
// data-flow description) and either dispatches it immediately (self
// messages) or enqueues it onto the sender's inbound queue (peer messages).
func (n *Node) Deliver(msg protocol.Message) {
	if msg.SelfMessage {
		handler, ok := n.selfHandlers[msg.Command]
		if !ok {
			n.log.Warnf("node: no self handler for %s", msg.Command)
			return
		}
		handler(n, msg)
		return
	}

	p, ok := n.peers[msg.Source]
	if !ok {
		n.log.Warnf("node: message from unknown peer %v, dropped", msg.Source)
		return
	}
	p.Enqueue(msg)
}

// addPeerRecord inserts a new peer record and enqueues it onto the service
// ring (connection establishment, spec §4.5).
func (n *Node) addPeerRecord(id types.PeerID, inbound bool) *peer.Peer {
	p := peer.New(id, inbound)
	n.peers[id] = p
	n.ring = append(n.ring, id)
	return p
}

// allocTxHash assigns the next tx hash this node will originate, staying
// ahead of both the confirmed chain and any tx this node has already built
// but not yet seen confirmed.
func (n *Node) allocTxHash() types.Hash {
	if n.nextTxHash <= n.Chain.MaxTxHash() {
		n.nextTxHash = n.Chain.MaxTxHash() + 1
	}
	h := n.nextTxHash
	n.nextTxHash++
	return h
}

// send delivers msg to peer id through this node's outbound gate, if one is
// open. A missing gate (peer unknown or disconnected) is a silent no-op,
// matching spec §7's "missing peer: log, no-op" and §5's "sends to a
// disconnected peer are no-ops" policies.
func (n *Node) send(to types.PeerID, msg protocol.Message) {
	gate, ok := n.outGates[to]
	if !ok {
		return
	}
	n.kernel.Send(gate, msg, 0)
	if n.metrics != nil {
		n.metrics.RecordMessageSent()
	}
}

// broadcast sends msg to every SuccessfullyConnected peer.
func (n *Node) broadcast(build func(to types.PeerID) protocol.Message) {
	for id, p := range n.peers {
		if p.SuccessfullyConnected() && !p.Disconnect {
			n.send(id, build(id))
		}
	}
}

// disconnectPeer sets Disconnect on the record, closes the outbound gate,
// drops the peer record, and records the metric. The ring drops the id
// lazily on its next dequeue (spec §5: "removes it from the service ring on
// its next dequeue"); n.peers is cleared immediately so a later address
// gossip or dial attempt sees the peer as unknown again instead of
// permanently skipping it as already-connected.
func (n *Node) disconnectPeer(id types.PeerID) {
	p, ok := n.peers[id]
	if !ok {
		return
	}
	p.Disconnect = true
	if gate, ok := n.outGates[id]; ok {
		n.kernel.CloseGate(gate)
		delete(n.outGates, id)
	}
	delete(n.peers, id)
	if n.metrics != nil {
		n.metrics.RecordDisconnect()
		n.metrics.DecrementPeerCount(p.Inbound)
	}
}

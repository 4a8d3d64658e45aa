// Package peer implements the per-connection state a node keeps about one
// remote peer (spec component C5): handshake flags, the inbound message
// queue, and the header-first sync bookkeeping the node's scheduler drives.
package peer

import (
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// Peer is one node's view of a connection to a remote peer.
type Peer struct {
	ID types.PeerID

	Inbound bool

	HasGetAddr            bool
	successfullyConnected bool
	HasSentAddr           bool
	Disconnect            bool
	PauseSend             bool
	PauseReceive          bool
	RequestHeaders        bool

	version int

	// KnownHeight is the chain height the remote peer last advertised in
	// its nodeversion message.
	KnownHeight int

	// SyncStarted tracks whether a header-first sync toward this peer is
	// already in flight (spec §4.5). The node keeps the num_syncs counter,
	// since it is a per-node total, not per-peer.
	SyncStarted bool

	// BlocksToSend queues blocks accumulated by a getblocks request,
	// flushed as a single blocks message on the next send_outgoing pass.
	BlocksToSend []types.Block

	inbox []protocol.Message
}

// New creates a fresh peer record for id.
func New(id types.PeerID, inbound bool) *Peer {
	return &Peer{ID: id, Inbound: inbound}
}

// Version returns the peer's advertised protocol version, or 0 if no
// nodeversion has been received yet. Satisfies protocol.PeerState.
func (p *Peer) Version() int { return p.version }

// SetVersion records the peer's advertised protocol version.
func (p *Peer) SetVersion(v int) { p.version = v }

// SuccessfullyConnected reports whether the verack handshake has completed.
// Satisfies protocol.PeerState.
func (p *Peer) SuccessfullyConnected() bool { return p.successfullyConnected }

// MarkConnected sets the SuccessfullyConnected flag.
func (p *Peer) MarkConnected() { p.successfullyConnected = true }

// Enqueue appends an inbound message to this peer's queue.
func (p *Peer) Enqueue(msg protocol.Message) {
	p.inbox = append(p.inbox, msg)
}

// HasPending reports whether the inbound queue holds any message.
func (p *Peer) HasPending() bool {
	return len(p.inbox) > 0
}

// PopPending removes and returns the oldest queued inbound message.
func (p *Peer) PopPending() (protocol.Message, bool) {
	if len(p.inbox) == 0 {
		return protocol.Message{}, false
	}
	msg := p.inbox[0]
	p.inbox = p.inbox[1:]
	return msg, true
}

// QueueBlocksToSend appends blocks to this peer's pending-send queue,
// populated by a getblocks handler and flushed by send_outgoing.
func (p *Peer) QueueBlocksToSend(blocks []types.Block) {
	p.BlocksToSend = append(p.BlocksToSend, blocks...)
}

// DrainBlocksToSend removes and returns every block queued for this peer.
func (p *Peer) DrainBlocksToSend() []types.Block {
	out := p.BlocksToSend
	p.BlocksToSend = nil
	return out
}

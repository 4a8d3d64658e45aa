package node

import (
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// handleCheckQueues implements the round-robin scheduler tick (spec §4.4):
// up to MaxMessageProcess peers are serviced per pass, each getting at most
// one inbound message processed and its outgoing state (block sync,
// queued blocks) flushed. Disconnected peers are dropped from the ring;
// everyone else is pushed to the back, preserving fairness.
func (n *Node) handleCheckQueues(_ protocol.Message) {
	serviced := 0
	for serviced < n.run.MaxMessageProcess && len(n.ring) > 0 {
		id := n.ring[0]
		n.ring = n.ring[1:]

		p, ok := n.peers[id]
		if !ok || p.Disconnect {
			continue
		}

		n.processIncoming(p)
		n.sendOutgoing(p)
		n.ring = append(n.ring, id)
		serviced++
	}

	n.broadcastAnnouncements()
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdCheckQueues, n.ID), n.run.ThreadScheduleInterval)
}

// processIncoming pops and dispatches at most one queued message for p
// (spec §4.4).
func (n *Node) processIncoming(p *peer.Peer) {
	if p.Disconnect || p.PauseSend || !p.HasPending() {
		return
	}

	msg, ok := p.PopPending()
	if !ok {
		return
	}
	p.PauseReceive = false

	if n.metrics != nil {
		n.metrics.RecordMessageReceived()
	}
	n.processMessage(p, msg)
}

// processMessage looks up the handler, runs the scope gate, and dispatches
// (spec §4.4/§9).
func (n *Node) processMessage(p *peer.Peer, msg protocol.Message) {
	handler, ok := n.peerHandlers[msg.Command]
	if !ok {
		n.log.Warnf("node: no handler for %s from %v", msg.Command, p.ID)
		return
	}
	if !protocol.ScopeCheck(msg, p) {
		n.log.Warnf("node: %s from %v violates scope, dropped", msg.Command, p.ID)
		return
	}
	handler(n, p, msg)
}

// sendOutgoing drives block sync and flushes any blocks queued for p by a
// getblocks request (spec §4.4/§4.5).
func (n *Node) sendOutgoing(p *peer.Peer) {
	if p.SuccessfullyConnected() && !p.Disconnect {
		n.startBlockSync(p)
	}

	if blocks := p.DrainBlocksToSend(); len(blocks) > 0 {
		n.send(p.ID, protocol.NewBlocks(n.ID, blocks))
	}
}

// broadcastAnnouncements flushes any headers queued by a new_block workload
// event to
// every connected peer (spec §4.5: "push the new header into
// blocks_to_announce for broadcast at the next scheduler tick").
func (n *Node) broadcastAnnouncements() {
	if len(n.pendingAnnouncements) == 0 {
		return
	}
	headers := n.pendingAnnouncements
	n.pendingAnnouncements = nil

	n.broadcast(func(types.PeerID) protocol.Message {
		return protocol.NewHeaders(n.ID, headers)
	})
}

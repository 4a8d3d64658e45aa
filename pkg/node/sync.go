package node

import (
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// startBlockSync implements spec §4.5's start_block_sync(peer), called from
// send_outgoing on every successfully-connected, non-disconnected peer.
func (n *Node) startBlockSync(p *peer.Peer) {
	if p.SyncStarted {
		return
	}

	now := n.kernel.Now()
	tip, haveTip := n.Chain.Tip()
	stale := !haveTip || (now-tip.Header.CreationTime) > n.run.BlockSyncRecency

	if n.numSyncs != 0 && !stale {
		return
	}

	p.SyncStarted = true
	n.numSyncs++
	if n.metrics != nil {
		n.metrics.RecordSync()
	}

	locator := types.NullHash
	if haveTip {
		locator = tip.Header.ParentHash
	}
	n.send(p.ID, protocol.NewGetHeaders(n.ID, locator))
}

// handleGetHeaders replies with the headers of every block after h (spec
// §4.5).
func (n *Node) handleGetHeaders(p *peer.Peer, msg protocol.Message) {
	blocks := n.Chain.BlocksAfter(msg.LocatorHash)
	headers := make([]types.BlockHeader, len(blocks))
	for i, b := range blocks {
		headers[i] = b.Header
	}
	n.send(p.ID, protocol.NewHeaders(n.ID, headers))
}

// handleHeaders validates chain continuity, then requests the blocks
// starting at the oldest header we don't already have (spec §4.5).
func (n *Node) handleHeaders(p *peer.Peer, msg protocol.Message) {
	if !headersConsecutive(msg.Headers) {
		return
	}

	tip, haveTip := n.Chain.Tip()

	var target types.Hash
	found := false
	if !haveTip {
		if len(msg.Headers) == 0 {
			return
		}
		target = msg.Headers[0].Hash
		found = true
	} else {
		for _, h := range msg.Headers {
			if h.ParentHash == tip.Header.Hash {
				target = h.Hash
				found = true
				break
			}
		}
	}
	if !found {
		return
	}

	n.send(p.ID, protocol.NewGetBlocks(n.ID, target))
}

// headersConsecutive reports whether each header's parent hash matches the
// previous header's hash (spec §4.5/§8 property 6).
func headersConsecutive(headers []types.BlockHeader) bool {
	for k := 1; k < len(headers); k++ {
		if headers[k].ParentHash != headers[k-1].Hash {
			return false
		}
	}
	return true
}

// handleGetBlocks queues the requested blocks for delivery on the next
// send_outgoing pass (spec §4.5).
func (n *Node) handleGetBlocks(p *peer.Peer, msg protocol.Message) {
	p.QueueBlocksToSend(n.Chain.BlocksAfter(msg.LocatorHash))
}

// handleBlocks appends each block in order, then allows this peer to be
// resynced again once it falls stale (spec §4.5).
func (n *Node) handleBlocks(p *peer.Peer, msg protocol.Message) {
	for _, b := range msg.Blocks {
		if n.Chain.AddBlock(b) && n.metrics != nil {
			n.metrics.RecordBlockProcessed()
		}
	}
	p.SyncStarted = false
}

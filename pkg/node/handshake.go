package node

import (
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// handleNodeVersion implements spec §4.5's version handshake.
func (n *Node) handleNodeVersion(p *peer.Peer, msg protocol.Message) {
	if msg.VersionNo < n.run.MinAcceptedVersion {
		n.send(p.ID, protocol.NewReject(n.ID, protocol.RejectObsolete, true))
		n.disconnectPeer(p.ID)
		return
	}

	p.SetVersion(msg.VersionNo)
	p.KnownHeight = msg.ChainHeight

	if p.Inbound {
		n.send(p.ID, protocol.NewNodeVersion(n.ID, n.run.Version, n.Chain.ChainHeight()))
	}
	n.send(p.ID, protocol.NewVerack(n.ID))

	if msg.ChainHeight > n.bestPeerHeight {
		n.bestPeerHeight = msg.ChainHeight
	}
	if msg.ChainHeight > n.Chain.ChainHeight() {
		p.RequestHeaders = true
	}
}

// handleVerack implements spec §4.5's verack handler.
func (n *Node) handleVerack(p *peer.Peer, _ protocol.Message) {
	p.MarkConnected()
	if p.Inbound {
		n.Addrs.Add(p.ID)
	}
	if p.RequestHeaders && p.KnownHeight == n.bestPeerHeight {
		tip, ok := n.Chain.Tip()
		locator := types.NullHash
		if ok {
			locator = tip.Header.Hash
		}
		n.send(p.ID, protocol.NewGetHeaders(n.ID, locator))
	}
}

// handleReject implements spec §4.5's reject handler.
func (n *Node) handleReject(p *peer.Peer, msg protocol.Message) {
	n.log.Infof("received reject from %v: %s", p.ID, msg.Reason)
	if msg.Disconnect {
		n.disconnectPeer(p.ID)
	}
}

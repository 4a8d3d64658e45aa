package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// handleGetAddr replies immediately with a random sample of the address
// book (spec §4.5: the original's deferred-send/fingerprinting machinery is
// replaced by an unconditional, poll-rate-limited reply).
func (n *Node) handleGetAddr(p *peer.Peer, _ protocol.Message) {
	sampleSize := n.Addrs.DefaultSampleSize(n.run.RandomAddressFraction)
	n.send(p.ID, protocol.NewAddrs(n.ID, n.Addrs.Sample(sampleSize)))
}

// handleAddrs merges a received address list into the local book and
// attempts to connect to the first half (truncated division) of the
// ids that were not already connected (spec §4.5).
func (n *Node) handleAddrs(p *peer.Peer, msg protocol.Message) {
	var fresh []types.PeerID
	for _, id := range msg.Addrs {
		if id == n.ID {
			continue
		}
		if _, known := n.peers[id]; !known {
			fresh = append(fresh, id)
		}
	}

	if n.dialer != nil {
		half := len(fresh) / 2
		for _, id := range fresh[:half] {
			n.dialer.Dial(n.ID, id)
		}
	}

	n.Addrs.AddMany(msg.Addrs)
}

// handlePollAddrs broadcasts getaddr to every connected peer and
// reschedules itself (spec §4.4).
func (n *Node) handlePollAddrs(_ protocol.Message) {
	n.broadcast(func(types.PeerID) protocol.Message {
		return protocol.NewGetAddr(n.ID)
	})
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdPollAddrs, n.ID), n.run.ThreadScheduleInterval)
}

// handleDumpAddr persists the address set to disk as a comma-separated
// list and reschedules itself (spec §6: "<data_dir>/peers<self_id>.txt:
// a single comma-separated list of address ids, rewritten in full on each
// dumpaddr").
func (n *Node) handleDumpAddr(_ protocol.Message) {
	if err := n.dumpAddrsToDisk(); err != nil {
		n.log.Warnf("node: dumpaddr: %v", err)
	}
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdDumpAddr, n.ID), n.run.DumpAddressesInterval)
}

// dumpAddrsToDisk rewrites this node's peer file in full.
func (n *Node) dumpAddrsToDisk() error {
	if n.run.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(n.run.DataDir, 0o755); err != nil {
		return err
	}

	ids := n.Addrs.All()
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = fmt.Sprintf("%d", int(id))
	}

	path := filepath.Join(n.run.DataDir, fmt.Sprintf("peers%d.txt", int(n.ID)))
	return os.WriteFile(path, []byte(strings.Join(tokens, ",")), 0o644)
}

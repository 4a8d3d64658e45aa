package node

import (
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
)

// peerDispatchTable maps a peer-originated command to its handler. Kept
// separate from selfDispatchTable because self-messages bypass the scope
// gate and the per-peer inbound queue (spec §9).
func peerDispatchTable() map[protocol.Command]func(*Node, *peer.Peer, protocol.Message) {
	return map[protocol.Command]func(*Node, *peer.Peer, protocol.Message){
		protocol.CmdNodeVersion: (*Node).handleNodeVersion,
		protocol.CmdVerack:      (*Node).handleVerack,
		protocol.CmdReject:      (*Node).handleReject,
		protocol.CmdGetAddr:     (*Node).handleGetAddr,
		protocol.CmdAddrs:       (*Node).handleAddrs,
		protocol.CmdGetHeaders:  (*Node).handleGetHeaders,
		protocol.CmdHeaders:     (*Node).handleHeaders,
		protocol.CmdGetBlocks:   (*Node).handleGetBlocks,
		protocol.CmdBlocks:      (*Node).handleBlocks,
		protocol.CmdTx:          (*Node).handleTx,
	}
}

// selfDispatchTable maps a self-addressed command (periodic ticks and
// workload-injected events) to its handler.
func selfDispatchTable() map[protocol.Command]func(*Node, protocol.Message) {
	return map[protocol.Command]func(*Node, protocol.Message){
		protocol.CmdCheckQueues:      (*Node).handleCheckQueues,
		protocol.CmdPollAddrs:        (*Node).handlePollAddrs,
		protocol.CmdDumpAddr:         (*Node).handleDumpAddr,
		protocol.CmdMine:             (*Node).handleMine,
		protocol.CmdWorkloadTx:       (*Node).handleWorkloadTx,
		protocol.CmdWorkloadNewBlock: (*Node).handleWorkloadNewBlock,
	}
}

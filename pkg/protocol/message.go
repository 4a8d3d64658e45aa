// Package protocol defines the simulated wire protocol (spec components C3
// and C4): message envelopes, per-command payloads, and the scope gate that
// decides whether a peer is allowed to send a given command yet.
//
// Unlike the teacher's network layer, there is no framing or checksum here:
// the event kernel delivers envelopes directly between simulated nodes, so
// Message is one tagged struct rather than a serialized byte payload.
package protocol

import "github.com/chain-sim/powsim/pkg/types"

// Command names the message variant. Self-events reuse the same type so the
// node's dispatch table can treat them uniformly.
type Command string

const (
	CmdNodeVersion Command = "nodeversion"
	CmdVerack      Command = "verack"
	CmdReject      Command = "reject"
	CmdGetAddr     Command = "getaddr"
	CmdAddrs       Command = "addrs"
	CmdGetHeaders  Command = "getheaders"
	CmdHeaders     Command = "headers"
	CmdGetBlocks   Command = "getblocks"
	CmdBlocks      Command = "blocks"
	CmdTx          Command = "tx"

	// Self-events: delivered by a node to itself through the kernel.
	CmdCheckQueues Command = "checkqueues"
	CmdPollAddrs   Command = "polladdrs"
	CmdDumpAddr    Command = "dumpaddr"
	CmdMine        Command = "mine"

	// Workload-injected self-events (spec §4.6): distinct command names
	// from the peer-to-peer "tx" command, since a workload tx event
	// carries (target_peer, amount) parameters rather than a built
	// Transaction.
	CmdWorkloadTx       Command = "workload_tx"
	CmdWorkloadNewBlock Command = "workload_new_block"
)

// RejectReason is a closed enum of reasons a message can be rejected for,
// mirroring the original source's reject_reason enum (POWNode.h) rather
// than spec.md's bare "reason" string field.
type RejectReason int

const (
	RejectObsolete RejectReason = iota
	RejectMalformed
	RejectDuplicate
)

func (r RejectReason) String() string {
	switch r {
	case RejectObsolete:
		return "obsolete"
	case RejectMalformed:
		return "malformed"
	case RejectDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Message is the envelope common to every command, plus the payload fields
// used by whichever command it carries. Unused fields for a given command
// are left at their zero value.
type Message struct {
	Command     Command
	Source      types.PeerID
	VersionNo   int
	SelfMessage bool

	// nodeversion
	ChainHeight int

	// reject
	Reason     RejectReason
	Disconnect bool

	// addrs
	Addrs []types.PeerID

	// getheaders, getblocks
	LocatorHash types.Hash

	// headers
	Headers []types.BlockHeader

	// blocks
	Blocks []types.Block

	// tx
	Tx types.Transaction

	// workload_tx
	Params []int
}

// NewSelfEvent builds a self-addressed message for the node's periodic
// ticks, mirroring the original source's MessageGenerator factory functions
// so call sites never construct a self-event struct literal ad hoc.
func NewSelfEvent(cmd Command, source types.PeerID) Message {
	switch cmd {
	case CmdCheckQueues, CmdPollAddrs, CmdDumpAddr, CmdMine:
		return Message{Command: cmd, Source: source, SelfMessage: true}
	default:
		panic("protocol: NewSelfEvent called with a non-self command " + string(cmd))
	}
}

// NewNodeVersion builds a nodeversion message advertising chainHeight.
func NewNodeVersion(source types.PeerID, versionNo, chainHeight int) Message {
	return Message{Command: CmdNodeVersion, Source: source, VersionNo: versionNo, ChainHeight: chainHeight}
}

// NewVerack builds a verack message.
func NewVerack(source types.PeerID) Message {
	return Message{Command: CmdVerack, Source: source}
}

// NewReject builds a reject message.
func NewReject(source types.PeerID, reason RejectReason, disconnect bool) Message {
	return Message{Command: CmdReject, Source: source, Reason: reason, Disconnect: disconnect}
}

// NewGetAddr builds a getaddr message.
func NewGetAddr(source types.PeerID) Message {
	return Message{Command: CmdGetAddr, Source: source}
}

// NewAddrs builds an addrs message carrying ids.
func NewAddrs(source types.PeerID, ids []types.PeerID) Message {
	return Message{Command: CmdAddrs, Source: source, Addrs: ids}
}

// NewGetHeaders builds a getheaders message.
func NewGetHeaders(source types.PeerID, locator types.Hash) Message {
	return Message{Command: CmdGetHeaders, Source: source, LocatorHash: locator}
}

// NewHeaders builds a headers message carrying an ordered header list.
func NewHeaders(source types.PeerID, headers []types.BlockHeader) Message {
	return Message{Command: CmdHeaders, Source: source, Headers: headers}
}

// NewGetBlocks builds a getblocks message.
func NewGetBlocks(source types.PeerID, locator types.Hash) Message {
	return Message{Command: CmdGetBlocks, Source: source, LocatorHash: locator}
}

// NewBlocks builds a blocks message carrying an ordered block list.
func NewBlocks(source types.PeerID, blocks []types.Block) Message {
	return Message{Command: CmdBlocks, Source: source, Blocks: blocks}
}

// NewTx builds a tx message carrying a single transaction.
func NewTx(source types.PeerID, tx types.Transaction) Message {
	return Message{Command: CmdTx, Source: source, Tx: tx}
}

// NewWorkloadTx builds a self-addressed workload tx event: target is the
// node the event fires at, and params is the schedule line's raw
// (peer, amount) integer vector.
func NewWorkloadTx(target types.PeerID, params []int) Message {
	return Message{Command: CmdWorkloadTx, Source: target, SelfMessage: true, Params: params}
}

// NewWorkloadNewBlock builds a self-addressed workload new_block event.
func NewWorkloadNewBlock(target types.PeerID) Message {
	return Message{Command: CmdWorkloadNewBlock, Source: target, SelfMessage: true}
}

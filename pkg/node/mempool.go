package node

import (
	"github.com/chain-sim/powsim/pkg/peer"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// selfPublicKey is the convention used throughout the simulated protocol:
// a node's own public key is twice its peer id (spec §4.5's coinbase
// output, generalized to every output this node owns).
func (n *Node) selfPublicKey() types.PublicKey {
	return types.PublicKey(2 * int64(n.ID))
}

// handleTx implements spec §4.5: miners queue the transaction for
// validation; non-miners discard it.
func (n *Node) handleTx(_ *peer.Peer, msg protocol.Message) {
	if !n.miner {
		return
	}
	n.unverifiedTxs = append(n.unverifiedTxs, msg.Tx)
	if n.metrics != nil {
		n.metrics.SetMempoolSize(len(n.unverifiedTxs) + len(n.verifiedTxs))
	}
}

// handleMine validates every queued unverified transaction against the
// tip's outputs and promotes the ones that pass (spec §4.4).
func (n *Node) handleMine(_ protocol.Message) {
	for _, tx := range n.unverifiedTxs {
		if n.txValidAgainstTip(tx) {
			n.verifiedTxs = append(n.verifiedTxs, tx)
		}
	}
	n.unverifiedTxs = nil

	if n.metrics != nil {
		n.metrics.SetMempoolSize(len(n.verifiedTxs))
	}
	n.kernel.ScheduleSelf(n.ID, protocol.NewSelfEvent(protocol.CmdMine, n.ID), n.run.ThreadScheduleInterval)
}

// txValidAgainstTip checks that every input's signature is valid for the
// output it spends (spec §4.4: "input.signature == prev_output.public_key + 1").
func (n *Node) txValidAgainstTip(tx types.Transaction) bool {
	tip, haveTip := n.Chain.Tip()
	for _, in := range tx.Inputs {
		if in.IsCoinbase() {
			continue
		}
		if !haveTip {
			return false
		}
		prevTx, ok := tip.Txs[in.PrevTxHash]
		if !ok || in.PrevTxN < 0 || in.PrevTxN >= len(prevTx.Outputs) {
			return false
		}
		if !in.Signature.Valid(prevTx.Outputs[in.PrevTxN].PublicKey) {
			return false
		}
	}
	return true
}

// handleWorkloadTx implements the workload `tx` event (spec §4.5): fund
// amount from this node's unspent tip outputs, build and broadcast a
// transaction, or drop the event silently if it cannot be funded.
func (n *Node) handleWorkloadTx(msg protocol.Message) {
	if len(msg.Params) < 2 {
		n.log.Warnf("node: workload tx event missing (peer, amount) params")
		return
	}
	target := types.PeerID(msg.Params[0])
	amount := int64(msg.Params[1])

	inputs, excess, funded := n.fundAmount(amount)
	if !funded {
		return
	}

	outputs := []types.TxOutput{{Value: amount, PublicKey: types.PublicKey(2 * int64(target))}}
	if excess > 0 {
		outputs = append(outputs, types.TxOutput{Value: excess, PublicKey: n.selfPublicKey()})
	}

	tx := types.Transaction{
		Hash:    n.allocTxHash(),
		Inputs:  inputs,
		Outputs: outputs,
	}

	// The originating node already funded this tx from its own confirmed
	// tip outputs, so there's nothing left to validate: a miner that
	// originates a tx queues it directly rather than waiting on its own
	// broadcast to come back through handleTx.
	if n.miner {
		n.verifiedTxs = append(n.verifiedTxs, tx)
		if n.metrics != nil {
			n.metrics.SetMempoolSize(len(n.unverifiedTxs) + len(n.verifiedTxs))
		}
	}

	n.broadcast(func(types.PeerID) protocol.Message {
		return protocol.NewTx(n.ID, tx)
	})
}

// fundAmount walks the tip's outputs owned by this node, selecting unspent
// ones until amount is covered (spec §4.5: "drains outputs_spent until
// amount is fully funded"). Reports ok=false if the tip can't cover amount,
// in which case no outputs are marked spent.
func (n *Node) fundAmount(amount int64) (inputs []types.TxInput, excess int64, ok bool) {
	tip, haveTip := n.Chain.Tip()
	if !haveTip {
		return nil, 0, false
	}

	var collected int64
	for _, tx := range tip.TxList() {
		for idx, out := range tx.Outputs {
			if collected >= amount {
				break
			}
			if out.PublicKey != n.selfPublicKey() {
				continue
			}
			key := spentOutput{TxHash: tx.Hash, Index: idx}
			if n.outputsSpent[key] {
				continue
			}
			n.outputsSpent[key] = true
			inputs = append(inputs, types.TxInput{
				PrevTxHash: tx.Hash,
				PrevTxN:    idx,
				Signature:  types.Signature(int64(out.PublicKey) + 1),
			})
			collected += out.Value
		}
	}

	if collected < amount {
		for _, in := range inputs {
			delete(n.outputsSpent, spentOutput{TxHash: in.PrevTxHash, Index: in.PrevTxN})
		}
		return nil, 0, false
	}

	return inputs, collected - amount, true
}

// handleWorkloadNewBlock implements the workload `new_block` event (spec
// §4.5). A non-miner receiving this event is a role violation: a fatal
// programming error in the schedule file (spec §7).
func (n *Node) handleWorkloadNewBlock(_ protocol.Message) {
	if !n.miner {
		n.log.Fatalf("node: new_block workload event delivered to non-miner %v", n.ID)
		return
	}

	parent := types.NullHash
	if tip, ok := n.Chain.Tip(); ok {
		parent = tip.Header.Hash
	}

	coinbase := types.Transaction{
		Hash: n.allocTxHash(),
		Inputs: []types.TxInput{
			{PrevTxHash: types.NullHash, PrevTxN: -1, Signature: 0},
		},
		Outputs: []types.TxOutput{
			{Value: n.run.CoinbaseOutput, PublicKey: n.selfPublicKey()},
		},
	}

	txs := append([]types.Transaction{coinbase}, n.verifiedTxs...)
	n.verifiedTxs = nil

	header := types.BlockHeader{
		Hash:         nextBlockHash(parent),
		ParentHash:   parent,
		CreationTime: n.kernel.Now(),
	}
	block := types.NewBlock(header, txs)

	if n.Chain.AddBlock(block) {
		n.pendingAnnouncements = append(n.pendingAnnouncements, block.Header)
		if n.metrics != nil {
			n.metrics.RecordBlockProcessed()
		}
	}
}

// nextBlockHash assigns the new block's hash from its parent. There is no
// real hashing in this model (spec §1): hashes are simulator-assigned small
// integers, so each miner simply continues the integer sequence from its
// own tip.
func nextBlockHash(parent types.Hash) types.Hash {
	return parent + 1
}

package node

import (
	"testing"

	"github.com/chain-sim/powsim/pkg/config"
	"github.com/chain-sim/powsim/pkg/monitoring"
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/simkernel"
	"github.com/chain-sim/powsim/pkg/types"
	"github.com/chain-sim/powsim/pkg/workload"
)

func newTestRun() *config.RunConfig {
	r := config.DefaultRunConfig()
	r.ThreadScheduleInterval = 1.0
	r.DumpAddressesInterval = 1000
	r.DataDir = ""
	r.RandomAddressFraction = 1.0
	r.BlockSyncRecency = 1000
	return r
}

// Scenario A — handshake success: two online nodes, default_node_list=[0],
// both at version=1, min_accepted_version=1.
func TestScenarioA_HandshakeSuccess(t *testing.T) {
	run := newTestRun()
	run.Version = 1
	run.MinAcceptedVersion = 1

	kernel := simkernel.NewReference()
	reg := NewRegistry()

	n0 := New(0, run, kernel, monitoring.Noop(), 1, true, false, true) // default node: doesn't initiate
	n1 := New(1, run, kernel, monitoring.Noop(), 2, true, false, false)
	n1.Addrs.Add(0)
	reg.Add(n0)
	reg.Add(n1)

	reg.EstablishConnections()
	runner := NewRunner(reg, kernel)
	runner.Run(1000)

	p0, ok := n0.Peer(1)
	if !ok || !p0.SuccessfullyConnected() {
		t.Fatalf("node 0's record of node 1 not SuccessfullyConnected: %+v", p0)
	}
	p1, ok := n1.Peer(0)
	if !ok || !p1.SuccessfullyConnected() {
		t.Fatalf("node 1's record of node 0 not SuccessfullyConnected: %+v", p1)
	}
	if p0.Disconnect || p1.Disconnect {
		t.Fatal("expected no disconnects")
	}
	if !n1.Addrs.Has(0) || !n0.Addrs.Has(1) {
		t.Fatal("expected both nodes to know of each other after handshake/gossip")
	}
}

// Scenario B — obsolete rejection: node 0 runs version=2, min_accepted=2;
// node 1 runs version=1.
func TestScenarioB_ObsoleteRejection(t *testing.T) {
	base := newTestRun()
	base.MinAcceptedVersion = 2

	kernel := simkernel.NewReference()
	reg := NewRegistry()

	run0 := *base
	run0.Version = 2
	n0 := New(0, &run0, kernel, monitoring.Noop(), 1, true, false, true)

	run1 := *base
	run1.Version = 1
	n1 := New(1, &run1, kernel, monitoring.Noop(), 2, true, false, false)
	n1.Addrs.Add(0)

	reg.Add(n0)
	reg.Add(n1)
	reg.EstablishConnections()

	runner := NewRunner(reg, kernel)
	runner.Run(1000)

	if p0, ok := n0.Peer(1); ok {
		t.Fatalf("expected node 0 to disconnect node 1 for obsolete version and drop its record, got %+v", p0)
	}
	if _, stillOpen := n0.outGates[1]; stillOpen {
		t.Fatal("expected node 0's gate to node 1 to be closed")
	}
}

// Scenario C — header-first sync: node 0 has 3 blocks, node 1 is empty.
func TestScenarioC_HeaderFirstSync(t *testing.T) {
	run := newTestRun()

	kernel := simkernel.NewReference()
	reg := NewRegistry()

	n0 := New(0, run, kernel, monitoring.Noop(), 1, true, false, true)
	seedChain(n0, 1, 2, 3)

	n1 := New(1, run, kernel, monitoring.Noop(), 2, true, false, false)
	n1.Addrs.Add(0)

	reg.Add(n0)
	reg.Add(n1)
	reg.EstablishConnections()

	runner := NewRunner(reg, kernel)
	runner.Run(1000)

	tip, ok := n1.Chain.Tip()
	if !ok || tip.Header.Hash != 3 {
		t.Fatalf("node 1's tip = %+v, want hash 3", tip)
	}
	if n1.Chain.ChainHeight() != 3 {
		t.Fatalf("node 1 chain height = %d, want 3", n1.Chain.ChainHeight())
	}
}

// Scenario D — non-continuous headers: a malicious headers message with a
// broken parent chain must be discarded, with no getblocks sent and no
// state change.
func TestScenarioD_NonContinuousHeadersDiscarded(t *testing.T) {
	run := newTestRun()
	kernel := simkernel.NewReference()

	n1 := New(1, run, kernel, monitoring.Noop(), 1, true, false, false)
	p0 := n1.addPeerRecord(0, false)
	p0.SetVersion(1)
	p0.MarkConnected()
	n1.outGates[0] = kernel.OpenGate(1, 0)

	badHeaders := []types.BlockHeader{
		{Hash: 1, ParentHash: 0},
		{Hash: 3, ParentHash: 2}, // parent should be 1, not 2
	}
	n1.handleHeaders(p0, protocol.NewHeaders(0, badHeaders))

	if n1.Chain.ChainHeight() != 0 {
		t.Fatalf("expected no state change, chain height = %d", n1.Chain.ChainHeight())
	}
}

// Scenario E — address gossip convergence: three nodes pairwise connected
// with disjoint initial address books, random_address_fraction = 1.0.
func TestScenarioE_AddressGossipConvergence(t *testing.T) {
	run := newTestRun()

	kernel := simkernel.NewReference()
	reg := NewRegistry()

	n1 := New(1, run, kernel, monitoring.Noop(), 1, true, false, false)
	n2 := New(2, run, kernel, monitoring.Noop(), 2, true, false, false)
	n3 := New(3, run, kernel, monitoring.Noop(), 3, true, false, false)

	n1.Addrs.AddMany([]types.PeerID{2})
	n2.Addrs.AddMany([]types.PeerID{3})
	n3.Addrs.AddMany([]types.PeerID{1})

	reg.Add(n1)
	reg.Add(n2)
	reg.Add(n3)
	reg.EstablishConnections()

	runner := NewRunner(reg, kernel)
	runner.Run(20000)

	for _, n := range []*Node{n1, n2, n3} {
		for _, want := range []types.PeerID{1, 2, 3} {
			if want == n.ID {
				continue
			}
			if !n.Addrs.Has(want) {
				t.Fatalf("node %v does not know about %v after gossip: %v", n.ID, want, n.Addrs.All())
			}
		}
	}
}

// Scenario F — mining + tx relay.
func TestScenarioF_MiningAndTxRelay(t *testing.T) {
	run := newTestRun()
	run.CoinbaseOutput = 50

	kernel := simkernel.NewReference()
	reg := NewRegistry()

	miner := New(0, run, kernel, monitoring.Noop(), 1, true, true, true)
	other := New(1, run, kernel, monitoring.Noop(), 2, true, false, false)
	other.Addrs.Add(0)

	reg.Add(miner)
	reg.Add(other)
	reg.EstablishConnections()

	runner := NewRunner(reg, kernel)

	sched := workload.Schedule{
		{TimeSeconds: 1, Target: 0, Kind: workload.EventNewBlock},
		{TimeSeconds: 2, Target: 0, Kind: workload.EventTx, Params: []int{1, 10}},
		{TimeSeconds: 3, Target: 0, Kind: workload.EventNewBlock},
	}
	runner.InjectWorkload(sched, 0)
	runner.Run(10000)

	if other.Chain.ChainHeight() != 2 {
		t.Fatalf("node 1 chain height = %d, want 2", other.Chain.ChainHeight())
	}

	tip, ok := other.Chain.Tip()
	if !ok {
		t.Fatal("expected node 1 to have a tip")
	}
	foundPayment := false
	for _, tx := range tip.TxList() {
		for _, out := range tx.Outputs {
			if out.Value == 10 && out.PublicKey == types.PublicKey(2) {
				foundPayment = true
			}
		}
	}
	if !foundPayment {
		t.Fatalf("expected tip to contain a tx paying public_key=2 value=10, got %+v", tip.Txs)
	}
}

// TestDisconnectAllowsReconnection covers a regression: disconnectPeer must
// drop the peer record, not just mark it and close the gate, or a later
// Dial for the same id is silently skipped as "already connected".
func TestDisconnectAllowsReconnection(t *testing.T) {
	run := newTestRun()
	kernel := simkernel.NewReference()
	reg := NewRegistry()

	n0 := New(0, run, kernel, monitoring.Noop(), 1, true, false, false)
	n1 := New(1, run, kernel, monitoring.Noop(), 2, true, false, false)
	reg.Add(n0)
	reg.Add(n1)

	reg.Dial(0, 1)
	if _, ok := n0.Peer(1); !ok {
		t.Fatal("expected node 0 to have a peer record for node 1 after dialing")
	}

	n0.disconnectPeer(1)
	if _, ok := n0.Peer(1); ok {
		t.Fatal("expected disconnectPeer to drop the peer record")
	}
	if _, stillOpen := n0.outGates[1]; stillOpen {
		t.Fatal("expected disconnectPeer to close the outbound gate")
	}

	reg.Dial(0, 1)
	if _, ok := n0.Peer(1); !ok {
		t.Fatal("expected node 0 to be able to reconnect to node 1 after disconnecting")
	}
}

// seedChain directly appends a run of blocks with the given hashes onto n's
// chain, parent-linked in order, for tests that need a pre-existing chain
// without driving mining through the scheduler.
func seedChain(n *Node, hashes ...int64) {
	parent := types.NullHash
	for _, h := range hashes {
		n.Chain.AddBlock(types.NewBlock(types.BlockHeader{
			Hash:       types.Hash(h),
			ParentHash: parent,
		}, nil))
		parent = types.Hash(h)
	}
}

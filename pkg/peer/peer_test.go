package peer

import (
	"testing"

	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

func TestNewPeerDefaults(t *testing.T) {
	p := New(types.PeerID(7), true)
	if p.Version() != 0 {
		t.Fatal("new peer should have version 0 (unknown)")
	}
	if p.SuccessfullyConnected() {
		t.Fatal("new peer should not be SuccessfullyConnected")
	}
	if !p.Inbound {
		t.Fatal("expected Inbound=true")
	}
}

func TestEnqueuePopFIFO(t *testing.T) {
	p := New(types.PeerID(1), false)
	p.Enqueue(protocol.NewGetAddr(types.PeerID(2)))
	p.Enqueue(protocol.NewVerack(types.PeerID(2)))

	if !p.HasPending() {
		t.Fatal("expected pending messages")
	}
	first, ok := p.PopPending()
	if !ok || first.Command != protocol.CmdGetAddr {
		t.Fatalf("first popped = %v, want getaddr", first.Command)
	}
	second, ok := p.PopPending()
	if !ok || second.Command != protocol.CmdVerack {
		t.Fatalf("second popped = %v, want verack", second.Command)
	}
	if p.HasPending() {
		t.Fatal("expected empty queue after draining both messages")
	}
}

func TestBlocksToSendDrain(t *testing.T) {
	p := New(types.PeerID(1), false)
	p.QueueBlocksToSend([]types.Block{{Header: types.BlockHeader{Hash: 1}}})
	p.QueueBlocksToSend([]types.Block{{Header: types.BlockHeader{Hash: 2}}})

	drained := p.DrainBlocksToSend()
	if len(drained) != 2 {
		t.Fatalf("drained %d blocks, want 2", len(drained))
	}
	if len(p.DrainBlocksToSend()) != 0 {
		t.Fatal("expected second drain to be empty")
	}
}

func TestVersionAndConnectedSetters(t *testing.T) {
	p := New(types.PeerID(1), false)
	p.SetVersion(70015)
	if p.Version() != 70015 {
		t.Fatalf("Version() = %d, want 70015", p.Version())
	}
	p.MarkConnected()
	if !p.SuccessfullyConnected() {
		t.Fatal("expected SuccessfullyConnected after MarkConnected")
	}
}

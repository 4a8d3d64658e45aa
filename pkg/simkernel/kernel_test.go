package simkernel

import (
	"testing"

	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

func TestStepOrdersByTime(t *testing.T) {
	r := NewReference()
	g := r.OpenGate(1, 2)
	r.Send(g, protocol.NewVerack(1), 5)
	r.Send(g, protocol.NewGetAddr(1), 1)

	d, ok := r.Step()
	if !ok || d.Msg.Command != protocol.CmdGetAddr {
		t.Fatalf("first delivery = %v, want getaddr (scheduled earlier)", d.Msg.Command)
	}
	if r.Now() != 1 {
		t.Fatalf("Now() = %v, want 1", r.Now())
	}

	d, ok = r.Step()
	if !ok || d.Msg.Command != protocol.CmdVerack {
		t.Fatalf("second delivery = %v, want verack", d.Msg.Command)
	}
	if r.Now() != 5 {
		t.Fatalf("Now() = %v, want 5", r.Now())
	}
}

func TestSendThroughClosedGateIsNoop(t *testing.T) {
	r := NewReference()
	g := r.OpenGate(1, 2)
	r.CloseGate(g)
	r.Send(g, protocol.NewVerack(1), 0)
	if r.Pending() {
		t.Fatal("expected send through a closed gate to be dropped")
	}
}

func TestBroadcastDuplicatesSlicePayload(t *testing.T) {
	r := NewReference()
	g1 := r.OpenGate(1, 2)
	g2 := r.OpenGate(1, 3)

	ids := []types.PeerID{10, 20}
	msg := protocol.NewAddrs(1, ids)
	r.Send(g1, msg, 0)
	r.Send(g2, msg, 0)

	d1, _ := r.Step()
	d2, _ := r.Step()
	d1.Msg.Addrs[0] = 999

	if d2.Msg.Addrs[0] == 999 {
		t.Fatal("recipients must not share the same backing array for slice payloads")
	}
}

func TestScheduleSelfFIFOAtSameTime(t *testing.T) {
	r := NewReference()
	r.ScheduleSelf(1, protocol.NewSelfEvent(protocol.CmdCheckQueues, 1), 0)
	r.ScheduleSelf(1, protocol.NewSelfEvent(protocol.CmdPollAddrs, 1), 0)

	first, _ := r.Step()
	second, _ := r.Step()
	if first.Msg.Command != protocol.CmdCheckQueues || second.Msg.Command != protocol.CmdPollAddrs {
		t.Fatal("same-timestamp events must preserve scheduling order")
	}
}

func TestPendingFalseWhenDrained(t *testing.T) {
	r := NewReference()
	if r.Pending() {
		t.Fatal("new kernel should have no pending events")
	}
	g := r.OpenGate(1, 2)
	r.Send(g, protocol.NewVerack(1), 0)
	r.Step()
	if r.Pending() {
		t.Fatal("expected queue to be empty after draining the only event")
	}
}

// Package simkernel implements the discrete-event kernel adapter (spec
// component C9): the external collaborator that owns simulated time and
// delivers message envelopes between nodes. spec.md treats the kernel as
// out of scope, but a concrete reference implementation is needed to make
// the scenario tests in spec.md §8 actually runnable.
//
// The reference kernel is a priority queue of scheduled events keyed by
// simulated time, grounded on LarryRuane-minesim's eventlist/container/heap
// pattern.
package simkernel

import (
	"container/heap"

	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/types"
)

// Gate is an opaque per-destination send token handed out by the kernel
// when a connection is established (spec §3/§4.5: "the node ↔ node linkage
// ... is a graph over integer ids resolved by the event kernel; no direct
// object pointers are retained").
type Gate struct {
	from, to types.PeerID
	valid    bool
}

// Kernel is the interface a node depends on to schedule and send messages.
// pkg/node is written against this interface, not against *Reference,
// so an alternative kernel (e.g. one driving real goroutines) could be
// substituted without changing node logic.
type Kernel interface {
	// Now returns current simulated time.
	Now() float64

	// OpenGate establishes a directed send path from one node to another,
	// returning the token used to address subsequent sends.
	OpenGate(from, to types.PeerID) Gate

	// CloseGate erases a previously opened gate. Sends through a closed
	// gate are no-ops.
	CloseGate(g Gate)

	// Send delivers msg to the peer at the far end of g, at simulated time
	// Now()+delay. A zero delay still defers delivery to the next drain,
	// preserving "suspension points only between event deliveries" (§5).
	Send(g Gate, msg protocol.Message, delay float64)

	// ScheduleSelf delivers msg back to source at Now()+delay, used for
	// self-events (checkqueues, polladdrs, dumpaddr, mine).
	ScheduleSelf(source types.PeerID, msg protocol.Message, delay float64)
}

// Delivery is one envelope arriving at a node, returned by Reference.Step
// for the simulation driver (pkg/node's Runner) to hand to the node's
// Deliver method.
type Delivery struct {
	To  types.PeerID
	Msg protocol.Message
}

// scheduledEvent is one entry in the kernel's priority queue.
type scheduledEvent struct {
	when float64
	seq   int64 // tie-breaker: preserves FIFO order among same-time events
	to   types.PeerID
	msg  protocol.Message
}

type eventHeap []scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(scheduledEvent))
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// Reference is the reference Kernel implementation: a heap-ordered event
// list advancing simulated time strictly forward.
type Reference struct {
	now   float64
	seq   int64
	queue eventHeap
	gates map[types.PeerID]map[types.PeerID]bool // from -> to -> open
}

// NewReference creates an empty reference kernel starting at simulated time 0.
func NewReference() *Reference {
	return &Reference{
		queue: make(eventHeap, 0),
		gates: make(map[types.PeerID]map[types.PeerID]bool),
	}
}

func (r *Reference) Now() float64 { return r.now }

func (r *Reference) OpenGate(from, to types.PeerID) Gate {
	if r.gates[from] == nil {
		r.gates[from] = make(map[types.PeerID]bool)
	}
	r.gates[from][to] = true
	return Gate{from: from, to: to, valid: true}
}

func (r *Reference) CloseGate(g Gate) {
	if m, ok := r.gates[g.from]; ok {
		delete(m, g.to)
	}
}

// Send enqueues msg for delivery to g's destination, duplicating msg's
// slice-typed payload fields so broadcast recipients never alias each
// other's envelopes (spec §5).
func (r *Reference) Send(g Gate, msg protocol.Message, delay float64) {
	if !g.valid || !r.gates[g.from][g.to] {
		return
	}
	r.enqueue(g.to, duplicate(msg), delay)
}

func (r *Reference) ScheduleSelf(source types.PeerID, msg protocol.Message, delay float64) {
	r.enqueue(source, msg, delay)
}

func (r *Reference) enqueue(to types.PeerID, msg protocol.Message, delay float64) {
	if delay < 0 {
		delay = 0
	}
	heap.Push(&r.queue, scheduledEvent{when: r.now + delay, seq: r.seq, to: to, msg: msg})
	r.seq++
}

// Pending reports whether any event remains in the queue.
func (r *Reference) Pending() bool {
	return len(r.queue) > 0
}

// Step pops the earliest-scheduled event, advances simulated time to its
// timestamp, and returns it for the caller (the simulation driver) to
// deliver to the destination node.
func (r *Reference) Step() (Delivery, bool) {
	if len(r.queue) == 0 {
		return Delivery{}, false
	}
	ev := heap.Pop(&r.queue).(scheduledEvent)
	r.now = ev.when
	return Delivery{To: ev.to, Msg: ev.msg}, true
}

// duplicate returns a copy of msg with its slice-typed payload fields
// copied, so a broadcast's per-recipient envelopes never share backing
// arrays (spec §5: "message envelopes ... must be duplicated, not aliased").
func duplicate(msg protocol.Message) protocol.Message {
	out := msg
	if msg.Addrs != nil {
		out.Addrs = append([]types.PeerID(nil), msg.Addrs...)
	}
	if msg.Headers != nil {
		out.Headers = append([]types.BlockHeader(nil), msg.Headers...)
	}
	if msg.Blocks != nil {
		out.Blocks = append([]types.Block(nil), msg.Blocks...)
	}
	return out
}

package node

import (
	"github.com/chain-sim/powsim/pkg/protocol"
	"github.com/chain-sim/powsim/pkg/simkernel"
	"github.com/chain-sim/powsim/pkg/workload"
)

// Runner drives a whole simulation run: a Registry of nodes plus the
// reference kernel that delivers events between them.
type Runner struct {
	Registry *Registry
	Kernel   *simkernel.Reference
}

// NewRunner creates a Runner over an already-populated Registry.
func NewRunner(reg *Registry, kernel *simkernel.Reference) *Runner {
	return &Runner{Registry: reg, Kernel: kernel}
}

// InjectWorkload schedules every event in sched as a self-message to its
// target node at startDelay+TimeSeconds. All events are put on the kernel's
// queue by this call; there is no separate start_schedule self-event.
func (r *Runner) InjectWorkload(sched workload.Schedule, startDelay float64) {
	for _, ev := range sched {
		var msg protocol.Message
		switch ev.Kind {
		case workload.EventTx:
			msg = protocol.NewWorkloadTx(ev.Target, ev.Params)
		case workload.EventNewBlock:
			msg = protocol.NewWorkloadNewBlock(ev.Target)
		default:
			continue
		}
		r.Kernel.ScheduleSelf(ev.Target, msg, startDelay+ev.TimeSeconds)
	}
}

// Run starts every node, then drains the kernel's event queue, delivering
// each event to its destination node, until either the queue empties or
// maxSteps deliveries have been made. It returns the number of deliveries
// made.
func (r *Runner) Run(maxSteps int) int {
	for _, n := range r.Registry.Nodes {
		if n.online {
			n.Start()
		}
	}

	steps := 0
	for steps < maxSteps && r.Kernel.Pending() {
		delivery, ok := r.Kernel.Step()
		if !ok {
			break
		}
		if n, ok := r.Registry.Nodes[delivery.To]; ok {
			n.Deliver(delivery.Msg)
		}
		steps++
	}
	return steps
}

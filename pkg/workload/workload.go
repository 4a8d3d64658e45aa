// Package workload implements the schedule-file driver (spec component C8):
// a text file of future events injected into the simulation at a fixed
// offset from the run's start.
package workload

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chain-sim/powsim/pkg/monitoring"
	"github.com/chain-sim/powsim/pkg/types"
)

// EventKind is the set of workload commands this layer recognizes. Anything
// else in the schedule file is logged and dropped (spec §4.6).
type EventKind string

const (
	EventNewBlock EventKind = "new_block"
	EventTx       EventKind = "tx"
)

// Event is one line of the schedule, parsed and ready for dispatch.
type Event struct {
	TimeSeconds float64
	Target      types.PeerID
	Kind        EventKind
	Params      []int
}

// Schedule is the list of events as read from a schedule file, in file
// order; Load does not sort it by TimeSeconds.
type Schedule []Event

// Load reads a schedule file, skipping blank lines and lines beginning with
// '#'. Unknown commands are logged and dropped, not treated as parse
// errors, matching spec §7's "malformed message: log, drop" policy applied
// at the workload layer.
func Load(path string) (Schedule, error) {
	log := monitoring.Component("workload")

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sched Schedule
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ev, ok, err := parseLine(line)
		if err != nil {
			log.Warnf("workload: line %d: %v", lineNo, err)
			continue
		}
		if !ok {
			log.Warnf("workload: line %d: unknown command, dropped", lineNo)
			continue
		}
		sched = append(sched, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sched, nil
}

func parseLine(line string) (Event, bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Event{}, false, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Event{}, false, fmt.Errorf("bad time_seconds %q: %w", fields[0], err)
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return Event{}, false, fmt.Errorf("bad target_peer_id %q: %w", fields[1], err)
	}

	kind := EventKind(fields[2])
	if kind != EventNewBlock && kind != EventTx {
		return Event{}, false, nil
	}

	var params []int
	if len(fields) > 3 {
		for _, tok := range strings.Split(fields[3], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				return Event{}, false, fmt.Errorf("bad parameter %q: %w", tok, err)
			}
			params = append(params, n)
		}
	}

	return Event{
		TimeSeconds: t,
		Target:      types.PeerID(target),
		Kind:        kind,
		Params:      params,
	}, true, nil
}

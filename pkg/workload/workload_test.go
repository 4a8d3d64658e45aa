package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chain-sim/powsim/pkg/types"
)

func writeSchedule(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesEvents(t *testing.T) {
	path := writeSchedule(t, "# comment\n\n1 0 new_block\n2 0 tx 1,10\n")
	sched, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sched) != 2 {
		t.Fatalf("got %d events, want 2", len(sched))
	}
	if sched[0].Kind != EventNewBlock || sched[0].Target != types.PeerID(0) {
		t.Fatalf("event 0 = %+v", sched[0])
	}
	if sched[1].Kind != EventTx || len(sched[1].Params) != 2 || sched[1].Params[0] != 1 || sched[1].Params[1] != 10 {
		t.Fatalf("event 1 = %+v", sched[1])
	}
}

func TestLoadSkipsUnknownCommand(t *testing.T) {
	path := writeSchedule(t, "1 0 frobnicate\n2 0 new_block\n")
	sched, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sched) != 1 || sched[0].Kind != EventNewBlock {
		t.Fatalf("expected only the recognized new_block event to survive, got %+v", sched)
	}
}

func TestLoadSkipsMalformedLine(t *testing.T) {
	path := writeSchedule(t, "notanumber 0 new_block\n1 0 new_block\n")
	sched, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sched) != 1 {
		t.Fatalf("expected malformed line to be dropped, got %d events", len(sched))
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/schedule/for/powsim/test.txt")
	if err == nil {
		t.Fatal("expected an error for a missing schedule file")
	}
}

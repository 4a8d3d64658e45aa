package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chain-sim/powsim/pkg/types"
)

func writeTopology(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTopologyParsesNodes(t *testing.T) {
	path := writeTopology(t, "# comment\n0 1 1 1\n1 1 0 0 0,2\n")
	topo, err := LoadTopology(path, DefaultRunConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(topo.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(topo.Nodes))
	}

	n0 := topo.Nodes[0]
	if n0.ID != types.PeerID(0) || !n0.Online || !n0.Miner || !n0.DefaultNode {
		t.Fatalf("node 0 = %+v", n0)
	}

	n1 := topo.Nodes[1]
	if n1.Miner || n1.DefaultNode {
		t.Fatalf("node 1 should not be a miner or a default node: %+v", n1)
	}
	if len(n1.KnownAddresses) != 2 || n1.KnownAddresses[0] != 0 || n1.KnownAddresses[1] != 2 {
		t.Fatalf("node 1 known addresses = %v", n1.KnownAddresses)
	}
}

func TestLoadTopologyRejectsBadFlag(t *testing.T) {
	path := writeTopology(t, "0 2 0 0\n")
	if _, err := LoadTopology(path, DefaultRunConfig()); err == nil {
		t.Fatal("expected an error for an online flag that isn't 0 or 1")
	}
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	if cfg.Version == 0 || cfg.ThreadScheduleInterval == 0 {
		t.Fatalf("expected non-zero defaults, got %+v", cfg)
	}
}

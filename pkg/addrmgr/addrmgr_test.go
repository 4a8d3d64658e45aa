package addrmgr

import (
	"testing"

	"github.com/chain-sim/powsim/pkg/types"
)

func TestAddAndHas(t *testing.T) {
	m := New(1)
	m.Add(types.PeerID(1))
	if !m.Has(types.PeerID(1)) {
		t.Fatal("expected peer 1 to be known after Add")
	}
	if m.Has(types.PeerID(2)) {
		t.Fatal("peer 2 should not be known")
	}
}

func TestAddManyDedups(t *testing.T) {
	m := New(1)
	m.AddMany([]types.PeerID{1, 2, 1, 3})
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
}

func TestSampleSizeCapped(t *testing.T) {
	m := New(1)
	m.AddMany([]types.PeerID{1, 2, 3})
	got := m.Sample(10)
	if len(got) != 3 {
		t.Fatalf("Sample(10) over a 3-element set returned %d, want 3", len(got))
	}
}

func TestSampleDistinct(t *testing.T) {
	m := New(42)
	ids := []types.PeerID{1, 2, 3, 4, 5, 6, 7, 8}
	m.AddMany(ids)

	got := m.Sample(4)
	if len(got) != 4 {
		t.Fatalf("Sample(4) returned %d ids, want 4", len(got))
	}
	seen := make(map[types.PeerID]bool)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("Sample returned duplicate id %v", id)
		}
		seen[id] = true
	}
}

func TestDefaultSampleSizeRoundsUp(t *testing.T) {
	m := New(1)
	m.AddMany([]types.PeerID{1, 2, 3, 4, 5})
	if got := m.DefaultSampleSize(0.25); got != 2 {
		t.Fatalf("DefaultSampleSize(0.25) over 5 = %d, want ceil(1.25)=2", got)
	}
}

func TestDefaultSampleSizeZeroFraction(t *testing.T) {
	m := New(1)
	m.AddMany([]types.PeerID{1, 2, 3})
	if got := m.DefaultSampleSize(0); got != 0 {
		t.Fatalf("DefaultSampleSize(0) = %d, want 0", got)
	}
}

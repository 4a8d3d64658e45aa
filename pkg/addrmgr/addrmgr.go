// Package addrmgr implements the address manager (spec component C2): the
// set of known peer addresses a node has learned about, plus uniform random
// sampling over the full set for getaddr responses and periodic gossip.
package addrmgr

import (
	"math"
	"math/rand"

	"github.com/chain-sim/powsim/pkg/monitoring"
	"github.com/chain-sim/powsim/pkg/types"
)

// Manager holds the set of known peer ids for one node.
type Manager struct {
	set  map[types.PeerID]struct{}
	rng  *rand.Rand
	log  *monitoring.Logger
}

// New creates an empty address manager. seed fixes the sampling order so a
// simulation run is reproducible.
func New(seed int64) *Manager {
	return &Manager{
		set: make(map[types.PeerID]struct{}),
		rng: rand.New(rand.NewSource(seed)),
		log: monitoring.Component("addrmgr"),
	}
}

// Add records a single peer id, ignoring it if already known.
func (m *Manager) Add(id types.PeerID) {
	m.set[id] = struct{}{}
}

// AddMany records every peer id in ids.
func (m *Manager) AddMany(ids []types.PeerID) {
	for _, id := range ids {
		m.Add(id)
	}
}

// Has reports whether id is known.
func (m *Manager) Has(id types.PeerID) bool {
	_, ok := m.set[id]
	return ok
}

// Size returns the number of known addresses.
func (m *Manager) Size() int {
	return len(m.set)
}

// All returns every known peer id, in an unspecified order.
func (m *Manager) All() []types.PeerID {
	out := make([]types.PeerID, 0, len(m.set))
	for id := range m.set {
		out = append(out, id)
	}
	return out
}

// Sample draws n distinct peer ids uniformly at random from the full known
// set (spec §4.2: addresses are sampled over the entire set, not a recency-
// weighted subset — this rules out an LRU-style cache as the backing store).
// If n exceeds the set size, the entire set is returned in random order.
func (m *Manager) Sample(n int) []types.PeerID {
	all := m.All()
	m.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n >= len(all) {
		return all
	}
	return all[:n]
}

// DefaultSampleSize returns ceil(|set| * fraction), the node's default
// getaddr/gossip sample size (spec §6's random_address_fraction parameter).
func (m *Manager) DefaultSampleSize(fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	return int(math.Ceil(float64(len(m.set)) * fraction))
}

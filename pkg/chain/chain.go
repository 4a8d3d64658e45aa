// Package chain implements the blockchain store (spec component C1): an
// append-only, in-memory linked chain of blocks with file-backed
// checkpointing. There is no reorg — a block is accepted only if it extends
// the current tip.
package chain

import (
	"fmt"

	"github.com/chain-sim/powsim/pkg/monitoring"
	"github.com/chain-sim/powsim/pkg/types"
)

// Chain is an ordered sequence of blocks B0..Bn, the tip being Bn.
type Chain struct {
	blocks       []types.Block
	byHash       map[types.Hash]int // hash -> index in blocks
	blocksPerFile int
	log          *monitoring.Logger
}

// Empty creates a chain with no blocks, segmenting future checkpoint files
// at blocksPerFile blocks each.
func Empty(blocksPerFile int) *Chain {
	return &Chain{
		byHash:        make(map[types.Hash]int),
		blocksPerFile: blocksPerFile,
		log:           monitoring.Component("chain"),
	}
}

// ChainHeight returns the number of blocks in the chain.
func (c *Chain) ChainHeight() int {
	return len(c.blocks)
}

// Tip returns the last appended block. The second return is false on an
// empty chain.
func (c *Chain) Tip() (types.Block, bool) {
	if len(c.blocks) == 0 {
		return types.Block{}, false
	}
	return c.blocks[len(c.blocks)-1], true
}

// AddBlock appends b iff b.Header.Hash is neither the null hash nor already
// in the chain, and either the chain is empty or b.Header.ParentHash equals
// the tip's hash. Rejected blocks are silently dropped (spec §4.1/§7:
// invalid block append is never an error).
func (c *Chain) AddBlock(b types.Block) bool {
	if b.Header.Hash.IsNull() {
		return false
	}
	if len(c.blocks) > 0 {
		tip, _ := c.Tip()
		if b.Header.ParentHash != tip.Header.Hash {
			return false
		}
	}
	if _, exists := c.byHash[b.Header.Hash]; exists {
		return false
	}

	c.byHash[b.Header.Hash] = len(c.blocks)
	c.blocks = append(c.blocks, b)
	return true
}

// FindByHash returns the block with the given hash. NullHash never matches.
func (c *Chain) FindByHash(h types.Hash) (types.Block, bool) {
	if h.IsNull() {
		return types.Block{}, false
	}
	idx, ok := c.byHash[h]
	if !ok {
		return types.Block{}, false
	}
	return c.blocks[idx], true
}

// BlocksAfter returns the suffix of the chain starting at the block whose
// hash equals h, inclusive. If h is the null hash, the entire chain is
// returned. If h does not match any block, an empty slice is returned.
func (c *Chain) BlocksAfter(h types.Hash) []types.Block {
	if h.IsNull() {
		out := make([]types.Block, len(c.blocks))
		copy(out, c.blocks)
		return out
	}
	idx, ok := c.byHash[h]
	if !ok {
		return nil
	}
	out := make([]types.Block, len(c.blocks)-idx)
	copy(out, c.blocks[idx:])
	return out
}

// MaxTxHash returns the maximum transaction hash among the transactions in
// the tip block. Returns NullHash if the chain is empty or the tip has no
// transactions.
func (c *Chain) MaxTxHash() types.Hash {
	tip, ok := c.Tip()
	if !ok {
		return types.NullHash
	}
	max := types.NullHash
	for h := range tip.Txs {
		if h > max {
			max = h
		}
	}
	return max
}

// Blocks returns a defensive copy of the full chain, oldest first.
func (c *Chain) Blocks() []types.Block {
	out := make([]types.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// relink is used after loading blocks from disk: since files are read
// independently and may arrive out of parent-before-child order within a
// segment, blocks are indexed by hash only after every file has been read
// (spec §4.1: "re-links each block to its parent by hash if found" — here,
// parent linkage is implicit in ParentHash plus the byHash index, so
// relinking reduces to rebuilding that index and ordering blocks by chain
// position).
func (c *Chain) relink(loaded []types.Block) error {
	byHash := make(map[types.Hash]types.Block, len(loaded))
	for _, b := range loaded {
		byHash[b.Header.Hash] = b
	}

	// Find the genesis block (parent = NullHash).
	var genesis types.Block
	found := false
	for _, b := range loaded {
		if b.Header.ParentHash.IsNull() {
			genesis = b
			found = true
			break
		}
	}
	if !found {
		if len(loaded) == 0 {
			return nil
		}
		return fmt.Errorf("chain: no genesis block found among %d loaded blocks", len(loaded))
	}

	ordered := []types.Block{genesis}
	cur := genesis
	for {
		next, ok := findChild(loaded, cur.Header.Hash)
		if !ok {
			break
		}
		ordered = append(ordered, next)
		cur = next
	}

	c.blocks = nil
	c.byHash = make(map[types.Hash]int)
	for _, b := range ordered {
		c.byHash[b.Header.Hash] = len(c.blocks)
		c.blocks = append(c.blocks, b)
	}
	return nil
}

func findChild(blocks []types.Block, parent types.Hash) (types.Block, bool) {
	for _, b := range blocks {
		if b.Header.ParentHash == parent {
			return b, true
		}
	}
	return types.Block{}, false
}

package chain

import (
	"os"
	"testing"

	"github.com/chain-sim/powsim/pkg/types"
)

func mkBlock(hash, parent int64) types.Block {
	return types.NewBlock(types.BlockHeader{
		Hash:         types.Hash(hash),
		ParentHash:   types.Hash(parent),
		CreationTime: float64(hash),
	}, nil)
}

func TestAddBlockAcceptsGenesisUnconditionally(t *testing.T) {
	c := Empty(10)
	if !c.AddBlock(mkBlock(1, 0)) {
		t.Fatal("expected first block to be accepted on an empty chain")
	}
	if c.ChainHeight() != 1 {
		t.Fatalf("height = %d, want 1", c.ChainHeight())
	}
}

func TestAddBlockRejectsParentMismatch(t *testing.T) {
	c := Empty(10)
	c.AddBlock(mkBlock(1, 0))
	if c.AddBlock(mkBlock(3, 99)) {
		t.Fatal("expected block with wrong parent hash to be rejected")
	}
	if c.ChainHeight() != 1 {
		t.Fatalf("height = %d, want 1 (reject must be a no-op)", c.ChainHeight())
	}
}

func TestAddBlockRejectsNullHash(t *testing.T) {
	c := Empty(10)
	if c.AddBlock(mkBlock(0, 0)) {
		t.Fatal("expected block with NullHash to be rejected")
	}
}

func TestAddBlockIdempotentAtTip(t *testing.T) {
	c := Empty(10)
	b := mkBlock(1, 0)
	c.AddBlock(b)
	if c.AddBlock(b) {
		t.Fatal("re-adding the same block beyond the tip must be a no-op")
	}
	if c.ChainHeight() != 1 {
		t.Fatalf("height = %d, want 1", c.ChainHeight())
	}
}

func TestParentLinkInvariant(t *testing.T) {
	c := Empty(10)
	c.AddBlock(mkBlock(1, 0))
	c.AddBlock(mkBlock(2, 1))
	c.AddBlock(mkBlock(3, 2))

	blocks := c.Blocks()
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Header.ParentHash != blocks[i-1].Header.Hash {
			t.Fatalf("block %d parent hash mismatch", i)
		}
	}
}

func TestBlocksAfterNullHashEmptyChain(t *testing.T) {
	c := Empty(10)
	if got := c.BlocksAfter(types.NullHash); len(got) != 0 {
		t.Fatalf("BlocksAfter(NullHash) on empty chain = %v, want empty", got)
	}
}

func TestBlocksAfterNullHashNonEmptyChain(t *testing.T) {
	c := Empty(10)
	c.AddBlock(mkBlock(1, 0))
	c.AddBlock(mkBlock(2, 1))
	got := c.BlocksAfter(types.NullHash)
	if len(got) != 2 {
		t.Fatalf("BlocksAfter(NullHash) = %d blocks, want full chain (2)", len(got))
	}
}

func TestBlocksAfterInclusive(t *testing.T) {
	c := Empty(10)
	c.AddBlock(mkBlock(1, 0))
	c.AddBlock(mkBlock(2, 1))
	c.AddBlock(mkBlock(3, 2))

	got := c.BlocksAfter(types.Hash(2))
	if len(got) != 2 || got[0].Header.Hash != 2 {
		t.Fatalf("BlocksAfter(2) = %v, want [2,3]", got)
	}
}

func TestMaxTxHash(t *testing.T) {
	c := Empty(10)
	tip := types.NewBlock(types.BlockHeader{Hash: 1, ParentHash: 0}, []types.Transaction{
		{Hash: 5}, {Hash: 9}, {Hash: 2},
	})
	c.AddBlock(tip)
	if got := c.MaxTxHash(); got != 9 {
		t.Fatalf("MaxTxHash() = %v, want 9", got)
	}
}

func TestWriteReadDirectoryRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := Empty(2)
	c.AddBlock(types.NewBlock(types.BlockHeader{Hash: 1, ParentHash: 0, CreationTime: 1}, []types.Transaction{
		{Hash: 100, Inputs: []types.TxInput{{PrevTxHash: 0, PrevTxN: -1, Signature: 0}}, Outputs: []types.TxOutput{{Value: 50, PublicKey: 2}}},
	}))
	c.AddBlock(types.NewBlock(types.BlockHeader{Hash: 2, ParentHash: 1, CreationTime: 2}, nil))
	c.AddBlock(types.NewBlock(types.BlockHeader{Hash: 3, ParentHash: 2, CreationTime: 3}, nil))

	if err := c.WriteToDirectory(dir); err != nil {
		t.Fatalf("WriteToDirectory: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 segment files for blocksPerFile=2 over 3 blocks, got %d", len(entries))
	}

	loaded, ok, err := ReadFromDirectory(dir, 2)
	if err != nil {
		t.Fatalf("ReadFromDirectory: %v", err)
	}
	if !ok {
		t.Fatal("expected directory to be found")
	}

	wantTip, _ := c.Tip()
	gotTip, _ := loaded.Tip()
	if gotTip.Header.Hash != wantTip.Header.Hash {
		t.Fatalf("tip hash = %v, want %v", gotTip.Header.Hash, wantTip.Header.Hash)
	}
	if loaded.ChainHeight() != c.ChainHeight() {
		t.Fatalf("height = %d, want %d", loaded.ChainHeight(), c.ChainHeight())
	}
}

func TestReadFromDirectoryMissingIsNotAnError(t *testing.T) {
	_, ok, err := ReadFromDirectory("/nonexistent/path/for/powsim/test", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing directory")
	}
}

package chain

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chain-sim/powsim/pkg/types"
)

// blockFilePrefix names segment files: blocks0, blocks1, ...
const blockFilePrefix = "blocks"

// ReadFromDirectory loads a chain checkpoint from dir. If dir does not
// exist, it returns (nil, false, nil) — a missing checkpoint is not an
// error (spec §4.1/§7). Every regular file in the directory (blocks0,
// blocks1, ... as written by WriteToDirectory) is read, each
// holding a count followed by that many serialized blocks; after loading,
// every block is re-linked to its parent by hash (spec §9's resolution of
// the "re-link only in the shared_ptr variant" ambiguity: always re-link).
func ReadFromDirectory(dir string, blocksPerFile int) (*Chain, bool, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, nil
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	c := Empty(blocksPerFile)
	var loaded []types.Block
	for _, name := range files {
		blocks, err := readBlockFile(filepath.Join(dir, name))
		if err != nil {
			c.log.Warnf("chain: skipping unreadable checkpoint file %s: %v", name, err)
			continue
		}
		loaded = append(loaded, blocks...)
	}

	if err := c.relink(loaded); err != nil {
		c.log.Warnf("chain: %v; returning empty chain", err)
		return Empty(blocksPerFile), true, nil
	}
	return c, true, nil
}

// WriteToDirectory segments the chain's blocks into files of blocksPerFile
// entries under dir, creating dir if needed. Write errors are logged, not
// fatal (spec §7: IO failure on write is non-fatal).
func (c *Chain) WriteToDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.log.Errorf("chain: mkdir %s: %v", dir, err)
		return nil
	}

	perFile := c.blocksPerFile
	if perFile <= 0 {
		perFile = len(c.blocks)
		if perFile == 0 {
			perFile = 1
		}
	}

	for i := 0; i*perFile < len(c.blocks); i++ {
		start := i * perFile
		end := start + perFile
		if end > len(c.blocks) {
			end = len(c.blocks)
		}
		name := filepath.Join(dir, fmt.Sprintf("%s%d", blockFilePrefix, i))
		if err := writeBlockFile(name, c.blocks[start:end]); err != nil {
			c.log.Errorf("chain: write %s: %v", name, err)
		}
	}
	return nil
}

func readBlockFile(path string) ([]types.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var count int
	if _, err := fmt.Fscan(r, &count); err != nil {
		return nil, err
	}

	blocks := make([]types.Block, 0, count)
	for i := 0; i < count; i++ {
		b, err := readBlock(r)
		if err != nil {
			return blocks, fmt.Errorf("block %d/%d: %w", i+1, count, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func readBlock(r *bufio.Reader) (types.Block, error) {
	var header types.BlockHeader
	var hash, parent int64
	var numTx int
	var creationTime float64
	if _, err := fmt.Fscan(r, &hash, &parent, &numTx, &creationTime); err != nil {
		return types.Block{}, err
	}
	header.Hash = types.Hash(hash)
	header.ParentHash = types.Hash(parent)
	header.CreationTime = creationTime

	txs := make([]types.Transaction, 0, numTx)
	for i := 0; i < numTx; i++ {
		tx, err := readTransaction(r)
		if err != nil {
			return types.Block{}, fmt.Errorf("tx %d/%d: %w", i+1, numTx, err)
		}
		txs = append(txs, tx)
	}
	return types.NewBlock(header, txs), nil
}

func readTransaction(r *bufio.Reader) (types.Transaction, error) {
	var txHash int64
	if _, err := fmt.Fscan(r, &txHash); err != nil {
		return types.Transaction{}, err
	}

	var inCount int
	if _, err := fmt.Fscan(r, &inCount); err != nil {
		return types.Transaction{}, err
	}
	inputs := make([]types.TxInput, inCount)
	for i := range inputs {
		var prevHash int64
		var prevN int
		var sig int64
		if _, err := fmt.Fscan(r, &prevHash, &prevN, &sig); err != nil {
			return types.Transaction{}, err
		}
		inputs[i] = types.TxInput{
			PrevTxHash: types.Hash(prevHash),
			PrevTxN:    prevN,
			Signature:  types.Signature(sig),
		}
	}

	var outCount int
	if _, err := fmt.Fscan(r, &outCount); err != nil {
		return types.Transaction{}, err
	}
	outputs := make([]types.TxOutput, outCount)
	for i := range outputs {
		var value int64
		var pub int64
		if _, err := fmt.Fscan(r, &value, &pub); err != nil {
			return types.Transaction{}, err
		}
		outputs[i] = types.TxOutput{Value: value, PublicKey: types.PublicKey(pub)}
	}

	return types.Transaction{Hash: types.Hash(txHash), Inputs: inputs, Outputs: outputs}, nil
}

func writeBlockFile(path string, blocks []types.Block) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := fmt.Fprintln(w, len(blocks)); err != nil {
		return err
	}
	for _, b := range blocks {
		if err := writeBlock(w, b); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(w *bufio.Writer, b types.Block) error {
	if _, err := fmt.Fprintf(w, "%d %d %d %g\n",
		int64(b.Header.Hash), int64(b.Header.ParentHash), len(b.Txs), b.Header.CreationTime); err != nil {
		return err
	}
	for _, tx := range b.TxList() {
		if err := writeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

func writeTransaction(w *bufio.Writer, tx types.Transaction) error {
	if _, err := fmt.Fprintf(w, "%d\n%d\n", int64(tx.Hash), len(tx.Inputs)); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if _, err := fmt.Fprintf(w, "%d %d %d\n", int64(in.PrevTxHash), in.PrevTxN, int64(in.Signature)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(tx.Outputs)); err != nil {
		return err
	}
	for _, out := range tx.Outputs {
		if _, err := fmt.Fprintf(w, "%d %d\n", out.Value, int64(out.PublicKey)); err != nil {
			return err
		}
	}
	return nil
}

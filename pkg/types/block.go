package types

// BlockHeader is the metadata carried by every block; headers travel
// independently of their bodies during header-first sync.
type BlockHeader struct {
	Hash         Hash
	ParentHash   Hash
	NumTx        int
	CreationTime float64 // simulated time the block was created
}

// Block is a header plus its transactions, keyed by tx hash.
type Block struct {
	Header BlockHeader
	Txs    map[Hash]Transaction
}

// NewBlock builds a block from a header and transaction list, indexing the
// transactions by hash.
func NewBlock(header BlockHeader, txs []Transaction) Block {
	m := make(map[Hash]Transaction, len(txs))
	for _, tx := range txs {
		m[tx.Hash] = tx
	}
	header.NumTx = len(txs)
	return Block{Header: header, Txs: m}
}

// TxList returns the block's transactions in an arbitrary but stable order
// (sorted by hash), used for serialization and for iteration where
// determinism matters (e.g. file round-trips, funding a workload tx).
func (b Block) TxList() []Transaction {
	out := make([]Transaction, 0, len(b.Txs))
	for _, tx := range b.Txs {
		out = append(out, tx)
	}
	sortTxsByHash(out)
	return out
}

func sortTxsByHash(txs []Transaction) {
	for i := 1; i < len(txs); i++ {
		for j := i; j > 0 && txs[j].Hash < txs[j-1].Hash; j-- {
			txs[j], txs[j-1] = txs[j-1], txs[j]
		}
	}
}

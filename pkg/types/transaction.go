package types

// TxInput spends one output of a previous transaction. A coinbase input
// carries the sentinel PrevTxHash = NullHash and PrevTxN = -1, and has no
// predecessor to validate against.
type TxInput struct {
	PrevTxHash Hash
	PrevTxN    int
	Signature  Signature
}

// IsCoinbase reports whether this input is a coinbase (mining reward) input.
func (in TxInput) IsCoinbase() bool {
	return in.PrevTxHash.IsNull() && in.PrevTxN == -1
}

// TxOutput assigns value to a public key. A later TxInput spends it by
// supplying Signature = PublicKey + 1 (the simulator's trivial "crypto").
type TxOutput struct {
	Value     int64
	PublicKey PublicKey
}

// Transaction moves value from inputs to outputs.
type Transaction struct {
	Hash    Hash
	Inputs  []TxInput
	Outputs []TxOutput
}

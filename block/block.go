// Package block defines the data model the inspection pipeline reads:
// confirmed blocks, their transactions, and the token-balance tables
// attached to each transaction. Nothing in this package mutates a Block
// once it has been constructed by a fetcher.
package block

import "time"

// WrappedNativeMint is the canonical address used to represent the chain's
// native currency as a fungible token, e.g. when a swap leg is a plain
// lamport transfer rather than an SPL transfer.
const WrappedNativeMint = "So11111111111111111111111111111111111111112"

// VoteProgramID is the fixed program address referenced by vote
// transactions; a transaction is "nonvote" iff its account-key list does
// not contain this address.
const VoteProgramID = "Vote111111111111111111111111111111111111111"

// Block is a confirmed block: a slot, its hash, and the ordered sequence
// of transactions it contains.
type Block struct {
	Slot         uint64
	Blockhash    string
	BlockTime    int64 // unix seconds
	Transactions []Transaction
}

// Time returns the block's timestamp as a UTC time.Time.
func (b *Block) Time() time.Time {
	return time.Unix(b.BlockTime, 0).UTC()
}

// SuccessfulTxCount returns the number of transactions without an error.
func (b *Block) SuccessfulTxCount() int {
	n := 0
	for _, tx := range b.Transactions {
		if tx.Success {
			n++
		}
	}
	return n
}

// NonVoteTxCount returns the number of transactions not addressed to the
// vote program.
func (b *Block) NonVoteTxCount() int {
	n := 0
	for _, tx := range b.Transactions {
		if !tx.IsVote() {
			n++
		}
	}
	return n
}

// TotalComputeUnits sums ComputeUnits across all transactions.
func (b *Block) TotalComputeUnits() uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		total += tx.ComputeUnits
	}
	return total
}

// TotalFees sums Fee across all transactions.
func (b *Block) TotalFees() uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		total += tx.Fee
	}
	return total
}

// Transaction is one confirmed transaction within a Block.
type Transaction struct {
	Signature string
	Index     int // monotonic position within the block
	Success   bool
	ErrMsg    string // non-empty iff !Success

	Fee          uint64
	ComputeUnits uint64

	// AccountKeys is ordered; AccountKeys[0] is the fee-payer/signer.
	AccountKeys []string

	Instructions      []Instruction
	InnerInstructions []InnerInstructionSet

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance

	// PreBalances/PostBalances are native lamport balances indexed by
	// position in AccountKeys.
	PreBalances  []uint64
	PostBalances []uint64

	LogMessages []string
}

// Signer returns the fee-payer account, i.e. AccountKeys[0].
func (tx *Transaction) Signer() string {
	if len(tx.AccountKeys) == 0 {
		return ""
	}
	return tx.AccountKeys[0]
}

// IsVote reports whether the transaction's account-key list references the
// fixed vote program address.
func (tx *Transaction) IsVote() bool {
	for _, k := range tx.AccountKeys {
		if k == VoteProgramID {
			return true
		}
	}
	return false
}

// InnerInstructionsFor returns the inner-instruction set attached to the
// top-level instruction at outerIndex, or nil if none was recorded.
func (tx *Transaction) InnerInstructionsFor(outerIndex int) []Instruction {
	for _, set := range tx.InnerInstructions {
		if set.Index == outerIndex {
			return set.Instructions
		}
	}
	return nil
}

// InnerInstructionSet groups the inner instructions triggered by a single
// top-level instruction, keyed by that instruction's position.
type InnerInstructionSet struct {
	Index        int
	Instructions []Instruction
}

// Instruction is a single compiled instruction: a program-id index into
// the enclosing transaction's AccountKeys, the account indices it
// touches, and its raw data. ParsedInfo optionally carries the decoded
// fields an RPC node already extracted (mint, decimals) when the
// instruction was returned in "jsonParsed" form; the swap parser falls
// back to these when raw-data decoding does not apply.
type Instruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           []byte
	ParsedInfo     *ParsedInstructionInfo
}

// ParsedInstructionInfo mirrors the fields an RPC node surfaces for a
// jsonParsed SPL-token instruction.
type ParsedInstructionInfo struct {
	Mint     string
	Decimals uint8
	Amount   uint64
	Source   string
	Dest     string
}

// ProgramID resolves an instruction's program address via the enclosing
// transaction's account-key list.
func (tx *Transaction) ProgramID(instr Instruction) string {
	if instr.ProgramIDIndex < 0 || instr.ProgramIDIndex >= len(tx.AccountKeys) {
		return ""
	}
	return tx.AccountKeys[instr.ProgramIDIndex]
}

// TokenBalance is one row of a transaction's pre/post token-balance
// table, as reported by the fetcher alongside the transaction.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Amount       uint64
	Decimals     uint8
}

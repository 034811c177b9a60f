// Package swap reconstructs semantic token swaps from one transaction's
// instruction tree, without any per-DEX decoding knowledge. It is a pure
// function of a single block.Transaction: same input, same output, no
// shared state, no errors — malformed data degrades to an empty result.
package swap

import (
	"encoding/binary"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/solmev/inspector/block"
)

// system program ids whose instructions never change current_dex, even
// when they are themselves accepted as transfer candidates.
var systemProgramIDs = map[string]bool{
	solana.SystemProgramID.String():                  true,
	solana.TokenProgramID.String():                    true,
	solana.Token2022ProgramID.String():                true,
	solana.SPLAssociatedTokenAccountProgramID.String(): true,
	"ComputeBudget111111111111111111111111111111":     true,
}

const (
	tokenInstrTransfer        byte = 3
	tokenInstrTransferChecked byte = 12
	systemInstrTransfer       uint32 = 2
)

// TokenBalanceChange is the signed delta of one token-account balance
// between a transaction's pre and post state.
type TokenBalanceChange struct {
	AccountIndex int
	Mint         string
	Owner        string
	PreAmount    uint64
	PostAmount   uint64
	Delta        int64
	Decimals     uint8
}

// Swap is one reconstructed trade leg: the trader gave Token0/Amount0 and
// received Token1/Amount1, via the program at Dex.
type Swap struct {
	Token0    string
	Amount0   uint64
	Decimals0 uint8
	Token1    string
	Amount1   uint64
	Decimals1 uint8
	Dex       string
}

// Result is the parser's output for one transaction.
type Result struct {
	Swaps        []Swap
	TokenChanges []TokenBalanceChange
	Programs     []string
}

// transfer is scratch state for one accepted transfer candidate.
type transfer struct {
	mint        string
	amount      uint64
	decimals    uint8
	source      int
	destination int
	dex         string
	position    int
}

// Parse reconstructs swaps, token-balance changes and invoked program
// addresses from tx. It never returns an error: instructions it cannot
// interpret are skipped, and a transaction with no parseable transfers
// yields an empty swap list.
func Parse(tx *block.Transaction) Result {
	tokenMap, ownerMap := buildTokenAndOwnerMaps(tx)
	transfers := collectTransfers(tx, tokenMap)
	swaps := matchSwaps(tx, transfers, ownerMap)
	changes := extractTokenChanges(tx)
	programs := extractProgramAddresses(tx)

	return Result{Swaps: swaps, TokenChanges: changes, Programs: programs}
}

type tokenInfo struct {
	mint     string
	decimals uint8
}

// buildTokenAndOwnerMaps scans the pre/post token-balance tables to learn,
// for every account index that ever appears, its (mint, decimals) and
// owner. Post-state wins when pre and post disagree (it is the more
// current information and, for newly-created accounts, the only source).
func buildTokenAndOwnerMaps(tx *block.Transaction) (map[int]tokenInfo, map[int]string) {
	tokenMap := make(map[int]tokenInfo)
	ownerMap := make(map[int]string)

	apply := func(rows []block.TokenBalance) {
		for _, r := range rows {
			tokenMap[r.AccountIndex] = tokenInfo{mint: r.Mint, decimals: r.Decimals}
			if r.Owner != "" {
				ownerMap[r.AccountIndex] = r.Owner
			}
		}
	}
	apply(tx.PreTokenBalances)
	apply(tx.PostTokenBalances)

	return tokenMap, ownerMap
}

// collectTransfers walks every top-level instruction together with its
// inner-instruction set (the outer instruction is itself the first
// candidate of its own set, since a plain top-level transfer carries no
// inner instructions at all) and returns the ordered, filtered, non-zero
// transfer list for the whole transaction.
func collectTransfers(tx *block.Transaction, tokenMap map[int]tokenInfo) []transfer {
	var out []transfer

	for outerIdx, outer := range tx.Instructions {
		currentDex := tx.ProgramID(outer)

		walk := make([]block.Instruction, 0, 1+4)
		walk = append(walk, outer)
		walk = append(walk, tx.InnerInstructionsFor(outerIdx)...)

		for _, instr := range walk {
			programID := tx.ProgramID(instr)
			if programID == "" {
				continue
			}
			if !systemProgramIDs[programID] {
				currentDex = programID
			}

			if t, ok := asTransferCandidate(tx, instr, programID, tokenMap); ok {
				if t.amount == 0 {
					continue
				}
				t.dex = currentDex
				t.position = len(out)
				out = append(out, t)
			}
		}
	}

	return out
}

// asTransferCandidate recognizes a token-program transfer/transferChecked
// or a native system-program transfer and extracts (mint, amount,
// decimals, source, destination). Everything else is rejected.
func asTransferCandidate(tx *block.Transaction, instr block.Instruction, programID string, tokenMap map[int]tokenInfo) (transfer, bool) {
	switch programID {
	case solana.TokenProgramID.String(), solana.Token2022ProgramID.String():
		return tokenTransfer(instr, tokenMap)
	case solana.SystemProgramID.String():
		return nativeTransfer(instr)
	default:
		return transfer{}, false
	}
}

// tokenTransfer decodes a classic Transfer (opcode 3) or TransferChecked
// (opcode 12) SPL instruction. Mint/decimals are resolved from tokenMap
// via the source or destination account, falling back to ParsedInfo.
func tokenTransfer(instr block.Instruction, tokenMap map[int]tokenInfo) (transfer, bool) {
	if len(instr.Data) == 0 {
		return transfer{}, false
	}

	switch instr.Data[0] {
	case tokenInstrTransfer:
		if len(instr.Data) < 9 || len(instr.Accounts) < 2 {
			return transfer{}, false
		}
		amount := binary.LittleEndian.Uint64(instr.Data[1:9])
		source := instr.Accounts[0]
		destination := instr.Accounts[1]

		info, ok := tokenMap[destination]
		if !ok {
			info, ok = tokenMap[source]
		}
		if !ok {
			if instr.ParsedInfo == nil || instr.ParsedInfo.Mint == "" {
				return transfer{}, false
			}
			info = tokenInfo{mint: instr.ParsedInfo.Mint, decimals: instr.ParsedInfo.Decimals}
		}

		return transfer{mint: info.mint, amount: amount, decimals: info.decimals, source: source, destination: destination}, true

	case tokenInstrTransferChecked:
		if len(instr.Data) < 10 || len(instr.Accounts) < 3 {
			return transfer{}, false
		}
		amount := binary.LittleEndian.Uint64(instr.Data[1:9])
		decimals := instr.Data[9]
		source := instr.Accounts[0]
		destination := instr.Accounts[2]

		mint := ""
		if info, ok := tokenMap[destination]; ok {
			mint = info.mint
		} else if info, ok := tokenMap[source]; ok {
			mint = info.mint
		} else if instr.ParsedInfo != nil {
			mint = instr.ParsedInfo.Mint
		}
		if mint == "" {
			return transfer{}, false
		}

		return transfer{mint: mint, amount: amount, decimals: decimals, source: source, destination: destination}, true

	default:
		return transfer{}, false
	}
}

// nativeTransfer decodes a System Program Transfer instruction (index 2):
// a 4-byte little-endian instruction discriminator followed by an 8-byte
// lamport amount. The synthesized mint is the wrapped-native mint with 9
// decimals.
func nativeTransfer(instr block.Instruction) (transfer, bool) {
	if len(instr.Data) < 12 || len(instr.Accounts) < 2 {
		return transfer{}, false
	}
	if binary.LittleEndian.Uint32(instr.Data[0:4]) != systemInstrTransfer {
		return transfer{}, false
	}
	amount := binary.LittleEndian.Uint64(instr.Data[4:12])
	return transfer{
		mint:        block.WrappedNativeMint,
		amount:      amount,
		decimals:    9,
		source:      instr.Accounts[0],
		destination: instr.Accounts[1],
	}, true
}

// matchSwaps partitions the ordered transfer list into the signer's
// outgoing and incoming legs and greedily pairs each outgoing transfer
// with its nearest unused, differently-minted incoming transfer.
func matchSwaps(tx *block.Transaction, transfers []transfer, ownerMap map[int]string) []Swap {
	signer := tx.Signer()
	ownedBySigner := func(accountIdx int) bool {
		if owner, ok := ownerMap[accountIdx]; ok {
			return owner == signer
		}
		if accountIdx >= 0 && accountIdx < len(tx.AccountKeys) {
			return tx.AccountKeys[accountIdx] == signer
		}
		return false
	}

	var outgoing, incoming []transfer
	for _, t := range transfers {
		if ownedBySigner(t.source) {
			outgoing = append(outgoing, t)
		}
		if ownedBySigner(t.destination) {
			incoming = append(incoming, t)
		}
	}

	used := make([]bool, len(incoming))
	swaps := make([]Swap, 0, len(outgoing))

	for _, out := range outgoing {
		best := -1
		bestDist := -1
		for i, in := range incoming {
			if used[i] || in.mint == out.mint {
				continue
			}
			dist := out.position - in.position
			if dist < 0 {
				dist = -dist
			}
			if best == -1 || dist < bestDist || (dist == bestDist && in.position > incoming[best].position) {
				best = i
				bestDist = dist
			}
		}
		if best == -1 {
			continue
		}
		used[best] = true
		in := incoming[best]
		swaps = append(swaps, Swap{
			Token0:    out.mint,
			Amount0:   out.amount,
			Decimals0: out.decimals,
			Token1:    in.mint,
			Amount1:   in.amount,
			Decimals1: in.decimals,
			Dex:       out.dex,
		})
	}

	return swaps
}

// extractTokenChanges emits a TokenBalanceChange for every account index
// present in both the pre and post token-balance tables whose amount
// actually moved.
func extractTokenChanges(tx *block.Transaction) []TokenBalanceChange {
	pre := make(map[int]block.TokenBalance, len(tx.PreTokenBalances))
	for _, r := range tx.PreTokenBalances {
		pre[r.AccountIndex] = r
	}
	post := make(map[int]block.TokenBalance, len(tx.PostTokenBalances))
	for _, r := range tx.PostTokenBalances {
		post[r.AccountIndex] = r
	}

	var changes []TokenBalanceChange
	for idx, preRow := range pre {
		postRow, ok := post[idx]
		if !ok || preRow.Amount == postRow.Amount {
			continue
		}
		changes = append(changes, TokenBalanceChange{
			AccountIndex: idx,
			Mint:         postRow.Mint,
			Owner:        postRow.Owner,
			PreAmount:    preRow.Amount,
			PostAmount:   postRow.Amount,
			Delta:        int64(postRow.Amount) - int64(preRow.Amount),
			Decimals:     postRow.Decimals,
		})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].AccountIndex < changes[j].AccountIndex })
	return changes
}

// extractProgramAddresses collects, sorts and deduplicates the program
// ids of every top-level instruction.
func extractProgramAddresses(tx *block.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, instr := range tx.Instructions {
		id := tx.ProgramID(instr)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

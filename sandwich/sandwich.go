// Package sandwich identifies front-run/back-run pairs bracketing a
// victim transaction on the same token pair in opposite directions, and
// computes the attacker's realized profit.
package sandwich

import (
	"sort"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/swap"
)

// Candidate is a matched front-run/back-run pair awaiting profitability.
type Candidate struct {
	Front, Back   *block.Transaction
	FrontParsed   swap.Result
	BackParsed    swap.Result
	FrontSwap     swap.Swap
	BackSwap      swap.Swap
	VictimProgs   []string
	SandwichedTok string
}

// Detect finds all sandwich candidates within one block. parsed must
// contain the swap.Result for every transaction in blk, indexed the same
// way as blk.Transactions.
func Detect(blk *block.Block, parsed []swap.Result) []Candidate {
	bySigner := make(map[string][]int)
	for i, tx := range blk.Transactions {
		if !tx.Success {
			continue
		}
		bySigner[tx.Signer()] = append(bySigner[tx.Signer()], i)
	}

	var out []Candidate
	for signer, indices := range bySigner {
		if len(indices) < 2 {
			continue
		}
		out = append(out, scanSigner(blk, parsed, signer, indices)...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Front.Index < out[j].Front.Index })
	return out
}

// scanSigner performs the greedy left-scan-with-consumption pairing for
// one signer's successful transactions.
func scanSigner(blk *block.Block, parsed []swap.Result, signer string, indices []int) []Candidate {
	used := make([]bool, len(indices))
	var out []Candidate

	for i := 0; i < len(indices); i++ {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(indices); j++ {
			if used[j] {
				continue
			}
			frontIdx, backIdx := indices[i], indices[j]
			front, back := &blk.Transactions[frontIdx], &blk.Transactions[backIdx]

			if len(parsed[frontIdx].Swaps) != 1 || len(parsed[backIdx].Swaps) != 1 {
				continue
			}
			frontSwap, backSwap := parsed[frontIdx].Swaps[0], parsed[backIdx].Swaps[0]

			if !samePool(frontSwap, backSwap) || !oppositeDirection(frontSwap, backSwap) {
				continue
			}

			victimProgs, ok := victimPrograms(blk, parsed, signer, front.Index, back.Index)
			if !ok {
				continue
			}

			used[i] = true
			used[j] = true
			out = append(out, Candidate{
				Front:         front,
				Back:          back,
				FrontParsed:   parsed[frontIdx],
				BackParsed:    parsed[backIdx],
				FrontSwap:     frontSwap,
				BackSwap:      backSwap,
				VictimProgs:   victimProgs,
				SandwichedTok: sandwichedToken(frontSwap),
			})
			break
		}
	}

	return out
}

func samePool(a, b swap.Swap) bool {
	return unordered(a) == unordered(b)
}

type pair struct{ x, y string }

func unordered(s swap.Swap) pair {
	if s.Token0 < s.Token1 {
		return pair{s.Token0, s.Token1}
	}
	return pair{s.Token1, s.Token0}
}

func oppositeDirection(a, b swap.Swap) bool {
	return !(a.Token0 == b.Token0 && a.Token1 == b.Token1)
}

func sandwichedToken(front swap.Swap) string {
	switch block.WrappedNativeMint {
	case front.Token0:
		return front.Token1
	case front.Token1:
		return front.Token0
	default:
		return front.Token1
	}
}

// victimPrograms locates every successful, differently-signed
// transaction strictly between frontIndex and backIndex, and returns the
// sorted, deduplicated union of their invoked program addresses. ok is
// false when no victim exists.
func victimPrograms(blk *block.Block, parsed []swap.Result, attacker string, frontIndex, backIndex int) ([]string, bool) {
	progSet := make(map[string]bool)
	found := false

	for i := range blk.Transactions {
		tx := &blk.Transactions[i]
		if tx.Index <= frontIndex || tx.Index >= backIndex {
			continue
		}
		if !tx.Success || tx.Signer() == attacker {
			continue
		}
		found = true
		for _, p := range parsed[i].Programs {
			progSet[p] = true
		}
	}

	if !found {
		return nil, false
	}

	progs := make([]string, 0, len(progSet))
	for p := range progSet {
		progs = append(progs, p)
	}
	sort.Strings(progs)
	return progs, true
}

// Package arbitrage classifies per-transaction swap sequences as atomic
// arbitrage — Triangle, Stablecoin, CrossPair — or LongTail, and computes
// the signer's realized profit once prices are known.
package arbitrage

import (
	"strings"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/mev"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
)

// Type is one of the four arbitrage classifications. LongTail candidates
// are never emitted as events; the value exists for Classify's return.
type Type int

const (
	LongTail Type = iota
	Triangle
	Stablecoin
	CrossPair
)

func (t Type) String() string {
	switch t {
	case Triangle:
		return "TriangleArbitrage"
	case Stablecoin:
		return "StablecoinArbitrage"
	case CrossPair:
		return "CrossPairArbitrage"
	default:
		return "LongTail"
	}
}

// Event is a detected, priced arbitrage.
type Event struct {
	Signature       string
	Signer          string
	ComputeUnits    uint64
	Fee             uint64
	PriorityFee     uint64
	JitoTip         uint64
	Swaps           []swap.Swap
	ProgramAddrs    []string
	SignerChanges   []swap.TokenBalanceChange
	Classification  Type
	Profitability   mev.Profitability
}

// baseFeeLamports is the flat per-signature fee subtracted before
// reporting a transaction's priority fee.
const baseFeeLamports = 5000

// defaultSOLPrice is used to convert fees to USD when the price map has
// no entry for the wrapped-native mint. It intentionally differs from
// the sandwich detector's default (127.0) — see the design notes.
const defaultSOLPrice = 130.0

// mevLogHints are the log-line substrings the pre-filter treats as
// evidence of swap activity.
var mevLogHints = []string{"swap", "Swap", "Instruction: Swap", "Instruction: Transfer"}

// IsCandidate applies the cheap arbitrage pre-filter: successful,
// showing some sign of swap activity, with at least two parsed swaps and
// a net-positive token position for the signer.
func IsCandidate(tx *block.Transaction, parsed swap.Result) bool {
	if !tx.Success {
		return false
	}
	if !hasPotentialMEV(tx) {
		return false
	}
	if len(parsed.Swaps) < 2 {
		return false
	}
	signer := tx.Signer()
	for _, c := range parsed.TokenChanges {
		if c.Owner == signer && c.Delta > 0 {
			return true
		}
	}
	return false
}

func hasPotentialMEV(tx *block.Transaction) bool {
	if len(tx.InnerInstructions) > 0 {
		return true
	}
	for _, line := range tx.LogMessages {
		for _, hint := range mevLogHints {
			if strings.Contains(line, hint) {
				return true
			}
		}
	}
	return false
}

// Classify implements the classification table of the arbitrage
// detector. Stable, continuous 2-swap cycles are tagged Stablecoin
// before the Triangle check runs — this ordering is deliberate and
// preserved even though a stable triangle could equally be called
// either; see the design notes.
func Classify(swaps []swap.Swap, prices oracle.PriceMap) Type {
	n := len(swaps)
	if n < 2 {
		return LongTail
	}

	first := swaps[0].Token0
	last := swaps[n-1].Token1
	continuous := true
	for i := 0; i < n-1; i++ {
		if swaps[i].Token1 != swaps[i+1].Token0 {
			continuous = false
			break
		}
	}
	stablePair := prices.IsStable(first) && prices.IsStable(last)

	if n == 2 {
		switch {
		case stablePair && continuous:
			return Stablecoin
		case stablePair:
			return Stablecoin
		case first == last && continuous:
			return Triangle
		case first == last:
			return CrossPair
		default:
			return LongTail
		}
	}

	// n >= 3
	switch {
	case stablePair:
		return Stablecoin
	case first == last && !continuous:
		return CrossPair
	case first == last && continuous:
		return Triangle
	default:
		return LongTail
	}
}

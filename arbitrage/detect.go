package arbitrage

import (
	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
	"github.com/solmev/inspector/tip"
)

// Candidate is a transaction that passed IsCandidate, carrying everything
// needed to finalize profitability once prices are known.
type Candidate struct {
	Tx            *block.Transaction
	Parsed        swap.Result
	SignerChanges []swap.TokenBalanceChange
	JitoTip       uint64
}

// Extract evaluates a transaction's already-parsed swaps against the
// arbitrage pre-filter and returns a Candidate, or nil. Pure and
// side-effect free: safe to call from any number of goroutines
// concurrently, one per transaction.
func Extract(tx *block.Transaction, parsed swap.Result) *Candidate {
	if !IsCandidate(tx, parsed) {
		return nil
	}
	signerChanges := aggregateSignerChanges(parsed.TokenChanges, tx.Signer())
	jitoTip, _ := tip.Detect(tx)
	return &Candidate{Tx: tx, Parsed: parsed, SignerChanges: signerChanges, JitoTip: jitoTip}
}

// MintsToPrice returns the wrapped-native mint plus every mint appearing
// in c's aggregated signer changes, for inclusion in the inspector's
// batched price request.
func (c *Candidate) MintsToPrice() []string {
	mints := []string{block.WrappedNativeMint}
	for _, ch := range c.SignerChanges {
		mints = append(mints, ch.Mint)
	}
	return mints
}

// Finalize classifies c and computes its profitability against prices,
// returning nil when the classification is LongTail or profit is not
// strictly positive.
func Finalize(c *Candidate, prices oracle.PriceMap) *Event {
	class := Classify(c.Parsed.Swaps, prices)
	if class == LongTail {
		return nil
	}

	profitability := Profitability(c.SignerChanges, c.Tx.Fee, c.JitoTip, prices)
	if profitability.ProfitUSD <= 0 {
		return nil
	}

	return &Event{
		Signature:      c.Tx.Signature,
		Signer:         c.Tx.Signer(),
		ComputeUnits:   c.Tx.ComputeUnits,
		Fee:            c.Tx.Fee,
		PriorityFee:    PriorityFee(c.Tx.Fee),
		JitoTip:        c.JitoTip,
		Swaps:          c.Parsed.Swaps,
		ProgramAddrs:   c.Parsed.Programs,
		SignerChanges:  c.SignerChanges,
		Classification: class,
		Profitability:  profitability,
	}
}

package cli

import (
	"github.com/solmev/inspector/arbitrage"
	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/inspector"
	"github.com/solmev/inspector/sandwich"
)

// document is the canonical per-slot structured output. detailed
// controls whether the mev.arbitrage/mev.sandwich arrays are populated
// ("run") or omitted entirely ("run slot").
type document struct {
	Slot                   uint64   `json:"slot"`
	Blockhash              string   `json:"blockhash"`
	Timestamp              string   `json:"timestamp"`
	TotalTransactions      int      `json:"total_transactions"`
	SuccessfulTransactions int      `json:"successful_transactions"`
	NonVoteTransactions    int      `json:"nonvote_transactions"`
	TotalComputeUnits      uint64   `json:"total_compute_units"`
	MEVTransactionCount    int      `json:"mev_transaction_count"`
	MEVComputeUnits        uint64   `json:"mev_compute_units"`
	TotalProfitUSD         float64  `json:"total_profit_usd"`
	MEV                    *mevDoc  `json:"mev,omitempty"`
}

type mevDoc struct {
	Arbitrage []arbitrageDoc `json:"arbitrage"`
	Sandwich  []sandwichDoc  `json:"sandwich"`
}

type swapDoc struct {
	Token0    string `json:"token0"`
	Amount0   uint64 `json:"amount0"`
	Decimals0 uint8  `json:"decimals0"`
	Token1    string `json:"token1"`
	Amount1   uint64 `json:"amount1"`
	Decimals1 uint8  `json:"decimals1"`
	Dex       string `json:"dex"`
}

type tokenChangeDoc struct {
	Mint     string `json:"mint"`
	Delta    int64  `json:"delta"`
	Decimals uint8  `json:"decimals"`
}

type profitabilityDoc struct {
	RevenueUSD              float64  `json:"revenue_usd"`
	FeesUSD                 float64  `json:"fees_usd"`
	ProfitUSD               float64  `json:"profit_usd"`
	UnsupportedProfitTokens []string `json:"unsupported_profit_tokens,omitempty"`
}

type arbitrageDoc struct {
	Signature      string           `json:"signature"`
	Signer         string           `json:"signer"`
	ComputeUnits   uint64           `json:"compute_units"`
	Fee            uint64           `json:"fee"`
	PriorityFee    uint64           `json:"priority_fee"`
	JitoTip        uint64           `json:"jito_tip"`
	Swaps          []swapDoc        `json:"swaps"`
	ProgramAddrs   []string         `json:"program_addresses"`
	TokenChanges   []tokenChangeDoc `json:"net_token_changes"`
	Classification string           `json:"classification"`
	Profitability  profitabilityDoc `json:"profitability"`
}

type sandwichDoc struct {
	Slot          uint64           `json:"slot"`
	Signer        string           `json:"signer"`
	SandwichedTok string           `json:"sandwiched_token"`
	FrontRun      string           `json:"front_run_signature"`
	BackRun       string           `json:"back_run_signature"`
	ComputeUnits  uint64           `json:"compute_units"`
	Fee           uint64           `json:"fee"`
	JitoTip       uint64           `json:"jito_tip"`
	ProgramAddrs  []string         `json:"program_addresses"`
	TokenChanges  []tokenChangeDoc `json:"token_changes"`
	Profitability profitabilityDoc `json:"profitability"`
}

// buildDocument assembles the canonical per-slot document from a block
// and its inspection events.
func buildDocument(blk *block.Block, events []inspector.Event, detailed bool) document {
	doc := document{
		Slot:                   blk.Slot,
		Blockhash:              blk.Blockhash,
		Timestamp:              blk.Time().Format("2006-01-02 15:04:05 UTC"),
		TotalTransactions:      len(blk.Transactions),
		SuccessfulTransactions: blk.SuccessfulTxCount(),
		NonVoteTransactions:    blk.NonVoteTxCount(),
		TotalComputeUnits:      blk.TotalComputeUnits(),
	}

	var arbs []arbitrageDoc
	var sands []sandwichDoc
	var totalProfit float64
	var mevCU uint64

	for _, e := range events {
		switch e.Kind {
		case inspector.KindArbitrage:
			a := e.Arbitrage
			totalProfit += a.Profitability.ProfitUSD
			mevCU += a.ComputeUnits
			arbs = append(arbs, toArbitrageDoc(a))
		case inspector.KindSandwich:
			s := e.Sandwich
			totalProfit += s.Profitability.ProfitUSD
			mevCU += s.ComputeUnits
			sands = append(sands, toSandwichDoc(s))
		}
	}

	doc.MEVTransactionCount = len(arbs) + len(sands)
	doc.MEVComputeUnits = mevCU
	doc.TotalProfitUSD = totalProfit

	if detailed {
		doc.MEV = &mevDoc{Arbitrage: arbs, Sandwich: sands}
	}

	return doc
}

func toArbitrageDoc(a *arbitrage.Event) arbitrageDoc {
	swaps := make([]swapDoc, len(a.Swaps))
	for i, s := range a.Swaps {
		swaps[i] = swapDoc{
			Token0: s.Token0, Amount0: s.Amount0, Decimals0: s.Decimals0,
			Token1: s.Token1, Amount1: s.Amount1, Decimals1: s.Decimals1,
			Dex: s.Dex,
		}
	}
	changes := make([]tokenChangeDoc, len(a.SignerChanges))
	for i, c := range a.SignerChanges {
		changes[i] = tokenChangeDoc{Mint: c.Mint, Delta: c.Delta, Decimals: c.Decimals}
	}
	return arbitrageDoc{
		Signature:      a.Signature,
		Signer:         a.Signer,
		ComputeUnits:   a.ComputeUnits,
		Fee:            a.Fee,
		PriorityFee:    a.PriorityFee,
		JitoTip:        a.JitoTip,
		Swaps:          swaps,
		ProgramAddrs:   a.ProgramAddrs,
		TokenChanges:   changes,
		Classification: a.Classification.String(),
		Profitability: profitabilityDoc{
			RevenueUSD:              a.Profitability.RevenueUSD,
			FeesUSD:                 a.Profitability.FeesUSD,
			ProfitUSD:               a.Profitability.ProfitUSD,
			UnsupportedProfitTokens: a.Profitability.UnsupportedProfitTokens,
		},
	}
}

func toSandwichDoc(s *sandwich.Event) sandwichDoc {
	changes := make([]tokenChangeDoc, len(s.SignerChanges))
	for i, c := range s.SignerChanges {
		changes[i] = tokenChangeDoc{Mint: c.Mint, Delta: c.Delta, Decimals: c.Decimals}
	}
	return sandwichDoc{
		Slot:          s.Slot,
		Signer:        s.Signer,
		SandwichedTok: s.SandwichedTok,
		FrontRun:      s.Front.Signature,
		BackRun:       s.Back.Signature,
		ComputeUnits:  s.ComputeUnits,
		Fee:           s.Fee,
		JitoTip:       s.JitoTip,
		ProgramAddrs:  s.ProgramAddrs,
		TokenChanges:  changes,
		Profitability: profitabilityDoc{
			RevenueUSD: s.Profitability.RevenueUSD,
			FeesUSD:    s.Profitability.FeesUSD,
			ProfitUSD:  s.Profitability.ProfitUSD,
		},
	}
}

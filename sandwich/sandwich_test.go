package sandwich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
)

const (
	attacker = "Attacker111111111111111111111111111111111"
	victim   = "Victim11111111111111111111111111111111111"
	token    = "TokenXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
	wsol     = block.WrappedNativeMint
)

// buildBlock constructs S5's canonical three-transaction sandwich:
// attacker front-runs (10 SOL -> 1000 TOKEN), a victim trades the same
// pair, and the attacker back-runs (1000 TOKEN -> 10.2 SOL).
func buildBlock() (*block.Block, []swap.Result) {
	front := block.Transaction{Signature: "front", Index: 5, Success: true, AccountKeys: []string{attacker}, Fee: 5000}
	mid := block.Transaction{Signature: "mid", Index: 6, Success: true, AccountKeys: []string{victim}, Fee: 5000}
	back := block.Transaction{Signature: "back", Index: 7, Success: true, AccountKeys: []string{attacker}, Fee: 5000}

	blk := &block.Block{Slot: 100, Transactions: []block.Transaction{front, mid, back}}

	parsed := []swap.Result{
		{
			Swaps:    []swap.Swap{{Token0: wsol, Amount0: 10_000_000_000, Decimals0: 9, Token1: token, Amount1: 1_000_000_000, Decimals1: 6}},
			Programs: []string{"FrontDex1111111111111111111111111111111111"},
		},
		{
			Swaps:    []swap.Swap{{Token0: wsol, Amount0: 1_000_000_000, Decimals0: 9, Token1: token, Amount1: 90_000_000, Decimals1: 6}},
			Programs: []string{"VictimDex111111111111111111111111111111111"},
		},
		{
			Swaps:    []swap.Swap{{Token0: token, Amount0: 1_000_000_000, Decimals0: 6, Token1: wsol, Amount1: 10_200_000_000, Decimals1: 9}},
			Programs: []string{"BackDex11111111111111111111111111111111111"},
		},
	}

	return blk, parsed
}

func TestDetect_CanonicalSandwich(t *testing.T) {
	blk, parsed := buildBlock()

	candidates := Detect(blk, parsed)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, token, c.SandwichedTok)
	require.Len(t, c.VictimProgs, 1)
	assert.Equal(t, "VictimDex111111111111111111111111111111111", c.VictimProgs[0])
}

func TestDetect_FailedVictimRejected(t *testing.T) {
	blk, parsed := buildBlock()
	blk.Transactions[1].Success = false

	candidates := Detect(blk, parsed)
	assert.Empty(t, candidates, "a sandwich needs a successful victim between front and back")
}

func TestFinalize_ProfitAccounting(t *testing.T) {
	blk, parsed := buildBlock()
	candidates := Detect(blk, parsed)
	require.Len(t, candidates, 1)

	prices := oracle.PriceMap{wsol: 150.0}
	event := Finalize(blk.Slot, candidates[0], prices)
	require.NotNil(t, event)

	assert.InDelta(t, 0.2, 10.2-10.0, 1e-9) // sanity: profit_in_token
	assert.InDelta(t, 30.0, event.Profitability.RevenueUSD, 1e-6)
	assert.Greater(t, event.Profitability.ProfitUSD, 0.0)
}

func TestFinalize_UnprofitableDropped(t *testing.T) {
	blk, parsed := buildBlock()
	// Shrink the back-run receipt so the attacker loses money net of fees.
	parsed[2].Swaps[0].Amount1 = 9_990_000_000

	candidates := Detect(blk, parsed)
	require.Len(t, candidates, 1)

	prices := oracle.PriceMap{wsol: 150.0}
	event := Finalize(blk.Slot, candidates[0], prices)
	assert.Nil(t, event)
}

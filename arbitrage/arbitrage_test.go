package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
)

const (
	wsol = block.WrappedNativeMint
	usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdt = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	tokA = "TokenAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	tokB = "TokenBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	tokC = "TokenCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"
)

func sw(t0 string, a0 uint64, t1 string, a1 uint64) swap.Swap {
	return swap.Swap{Token0: t0, Amount0: a0, Decimals0: 9, Token1: t1, Amount1: a1, Decimals1: 9}
}

func TestClassify_Triangle(t *testing.T) {
	// S1: two-leg triangle, continuous, first == last.
	swaps := []swap.Swap{sw(wsol, 1, usdc, 150), sw(usdc, 150, wsol, 1)}
	prices := oracle.PriceMap{wsol: 150.0}
	assert.Equal(t, Triangle, Classify(swaps, prices))
}

func TestClassify_StablecoinNonContinuous(t *testing.T) {
	// S2: USDC -> X, Y -> USDT; not continuous, but first/last are both
	// stable, so it is tagged Stablecoin regardless of continuity.
	swaps := []swap.Swap{sw(usdc, 100, tokA, 50), sw(tokB, 50, usdt, 99)}
	prices := oracle.PriceMap{usdc: 1.0, usdt: 1.0}
	assert.Equal(t, Stablecoin, Classify(swaps, prices))
}

func TestClassify_CrossPairBreak(t *testing.T) {
	// S3: first == last (SOL) but not continuous.
	swaps := []swap.Swap{sw(wsol, 1, tokA, 10), sw(tokB, 10, wsol, 1)}
	prices := oracle.PriceMap{}
	assert.Equal(t, CrossPair, Classify(swaps, prices))
}

func TestClassify_LongTailRejected(t *testing.T) {
	// S4: first != last, not a stable pair.
	swaps := []swap.Swap{sw(wsol, 1, tokA, 10), sw(tokB, 10, tokC, 5)}
	prices := oracle.PriceMap{}
	assert.Equal(t, LongTail, Classify(swaps, prices))
}

func TestClassify_StableTriangleWinsStablecoinBranch(t *testing.T) {
	// Both stable and first==last continuous: the stable branch is
	// checked first, so this is Stablecoin, not Triangle.
	swaps := []swap.Swap{sw(usdc, 100, usdt, 99), sw(usdt, 99, usdc, 100)}
	prices := oracle.PriceMap{usdc: 1.0, usdt: 1.0}
	assert.Equal(t, Stablecoin, Classify(swaps, prices))
}

func TestIsCandidate_RequiresTwoSwapsAndPositiveDelta(t *testing.T) {
	tx := &block.Transaction{
		Success:           true,
		InnerInstructions: []block.InnerInstructionSet{{Index: 0}},
		AccountKeys:       []string{"signer"},
	}
	parsed := swap.Result{
		Swaps: []swap.Swap{sw(wsol, 1, usdc, 150), sw(usdc, 150, wsol, 1)},
		TokenChanges: []swap.TokenBalanceChange{
			{Owner: "signer", Mint: wsol, Delta: 10_000_000},
		},
	}
	assert.True(t, IsCandidate(tx, parsed))

	parsed.TokenChanges[0].Delta = -10_000_000
	assert.False(t, IsCandidate(tx, parsed), "no positive delta for signer")
}

func TestProfitability_S1Triangle(t *testing.T) {
	changes := []swap.TokenBalanceChange{
		{Mint: wsol, Decimals: 9, Delta: 10_000_000}, // +0.01 SOL
	}
	prices := oracle.PriceMap{wsol: 150.0}

	profit := Profitability(changes, 5005, 0, prices)

	require.InDelta(t, 1.50, profit.RevenueUSD, 1e-6)
	require.InDelta(t, 7.5075e-4, profit.FeesUSD, 1e-6)
	assert.Greater(t, profit.ProfitUSD, 0.0)
	assert.Equal(t, uint64(5), PriorityFee(5005))
}

func TestProfitability_UnsupportedTokenFlagged(t *testing.T) {
	changes := []swap.TokenBalanceChange{
		{Mint: tokA, Decimals: 0, Delta: 5},
		{Mint: wsol, Decimals: 9, Delta: 100_000_000}, // +0.1 SOL, priced
	}
	prices := oracle.PriceMap{wsol: 150.0}

	profit := Profitability(changes, 5000, 0, prices)

	require.Len(t, profit.UnsupportedProfitTokens, 1)
	assert.Equal(t, tokA, profit.UnsupportedProfitTokens[0])
	assert.Greater(t, profit.RevenueUSD, 0.0)
}

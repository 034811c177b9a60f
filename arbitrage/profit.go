package arbitrage

import (
	"math"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/mev"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
)

// aggregateSignerChanges sums every TokenBalanceChange owned by signer,
// grouped by mint, retaining the decimals last seen for that mint.
func aggregateSignerChanges(changes []swap.TokenBalanceChange, signer string) []swap.TokenBalanceChange {
	byMint := make(map[string]*swap.TokenBalanceChange)
	var order []string
	for _, c := range changes {
		if c.Owner != signer {
			continue
		}
		agg, ok := byMint[c.Mint]
		if !ok {
			cp := c
			byMint[c.Mint] = &cp
			order = append(order, c.Mint)
			continue
		}
		agg.Delta += c.Delta
		agg.Decimals = c.Decimals
	}
	out := make([]swap.TokenBalanceChange, 0, len(order))
	for _, mint := range order {
		out = append(out, *byMint[mint])
	}
	return out
}

// Profitability computes the net USD profit for one arbitrage candidate
// per the per-signer profit accounting rules: net token position in USD
// minus fees, with fees converted at the wrapped-native price (default
// 130.0 if unpriced).
func Profitability(signerChanges []swap.TokenBalanceChange, fee, jitoTip uint64, prices oracle.PriceMap) mev.Profitability {
	var revenue, cost float64
	var unsupported []string

	for _, c := range signerChanges {
		netAmount := float64(c.Delta) / math.Pow(10, float64(c.Decimals))
		price := prices.Price(c.Mint)
		if price == 0.0 && math.Abs(netAmount) > 1.0 {
			unsupported = append(unsupported, c.Mint)
		}
		if netAmount > 0 {
			revenue += netAmount * price
		} else if netAmount < 0 {
			cost += -netAmount * price
		}
	}
	revenue -= cost

	solPrice := prices.Price(block.WrappedNativeMint)
	if solPrice == 0.0 {
		solPrice = defaultSOLPrice
	}
	feesUSD := float64(fee+jitoTip) / 1e9 * solPrice

	return mev.Profitability{
		RevenueUSD:              revenue,
		FeesUSD:                 feesUSD,
		ProfitUSD:               revenue - feesUSD,
		UnsupportedProfitTokens: unsupported,
	}
}

// PriorityFee returns max(fee - 5000, 0), the base signature fee
// subtracted from the total fee.
func PriorityFee(fee uint64) uint64 {
	if fee > baseFeeLamports {
		return fee - baseFeeLamports
	}
	return 0
}

// Package mev holds the profit-accounting types shared by the arbitrage
// and sandwich detectors. It has no dependency on either detector package,
// so both can embed it without an import cycle.
package mev

// Profitability is the outcome of joining a candidate event against a
// PriceMap: what it made, what it cost, and what — if anything — could
// not be priced.
type Profitability struct {
	RevenueUSD              float64
	FeesUSD                 float64
	ProfitUSD               float64
	UnsupportedProfitTokens []string
}

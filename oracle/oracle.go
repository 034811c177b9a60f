// Package oracle defines the price-oracle contract the inspection
// pipeline consumes, plus a default HTTP-backed implementation so the
// repository runs end to end. The pipeline itself only ever depends on
// the Oracle interface and PriceMap.
package oracle

import (
	"context"
	"time"
)

// PriceMap maps a token mint to its USD price. A missing entry, or an
// explicit 0.0, both mean "unknown" — callers must treat zero as a
// sentinel, never as a real price.
type PriceMap map[string]float64

// Price returns the USD price for mint, or 0.0 if unknown.
func (m PriceMap) Price(mint string) float64 {
	return m[mint]
}

// IsStable reports whether mint has a known price within [0.95, 1.05]
// USD — the band the arbitrage classifier uses to recognize stablecoins.
func (m PriceMap) IsStable(mint string) bool {
	p, ok := m[mint]
	return ok && p >= 0.95 && p <= 1.05
}

// Oracle batches price lookups for a set of mints at a single reference
// timestamp. It is called at most once per block inspection.
type Oracle interface {
	BatchPrices(ctx context.Context, mints []string, at time.Time) (PriceMap, error)
}

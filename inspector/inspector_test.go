package inspector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/oracle"
)

const wsol = block.WrappedNativeMint

// stubOracle returns fixed prices regardless of the mints requested.
type stubOracle struct {
	prices oracle.PriceMap
}

func (s stubOracle) BatchPrices(_ context.Context, mints []string, _ time.Time) (oracle.PriceMap, error) {
	out := make(oracle.PriceMap, len(mints))
	for _, m := range mints {
		out[m] = s.prices[m]
	}
	return out, nil
}

func TestInspect_EmptyBlockYieldsNoEvents(t *testing.T) {
	insp := New(stubOracle{}, nil, 2)
	blk := &block.Block{Slot: 1}

	events, err := insp.Inspect(context.Background(), blk)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestInspect_IsDeterministicAcrossRuns(t *testing.T) {
	insp := New(stubOracle{prices: oracle.PriceMap{wsol: 150.0}}, nil, 4)

	// A transaction with no inner instructions and no log hints never
	// clears the arbitrage pre-filter, so the only observable invariant
	// here is that running the (empty) pipeline twice agrees.
	tx := block.Transaction{Signature: "sig", Index: 0, Success: true, AccountKeys: []string{"signer"}}
	blk := &block.Block{Slot: 2, Transactions: []block.Transaction{tx}}

	first, err := insp.Inspect(context.Background(), blk)
	require.NoError(t, err)
	second, err := insp.Inspect(context.Background(), blk)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

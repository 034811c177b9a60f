// Package inspector runs the full detection pipeline — swap parsing,
// arbitrage detection, sandwich detection, and profitability — over one
// block and emits a flat, ordered list of MEV events.
package inspector

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/solmev/inspector/arbitrage"
	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/internal/workerpool"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/sandwich"
	"github.com/solmev/inspector/swap"
)

// EventKind tags a flat MEV event as one of the two detector outputs.
type EventKind int

const (
	KindArbitrage EventKind = iota
	KindSandwich
)

// Event is a flat, kind-tagged MEV event as returned by Inspect.
type Event struct {
	Kind      EventKind
	Arbitrage *arbitrage.Event
	Sandwich  *sandwich.Event
}

// Inspector wires the detection pipeline to a Logger and a price Oracle.
type Inspector struct {
	Oracle     oracle.Oracle
	Log        *logrus.Logger
	PoolSize   int
}

// New constructs an Inspector. A nil logger gets a default one in the
// teacher's text-formatter style; poolSize <= 0 defaults to GOMAXPROCS.
func New(priceOracle oracle.Oracle, log *logrus.Logger, poolSize int) *Inspector {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}
	if poolSize <= 0 {
		poolSize = runtime.GOMAXPROCS(0)
	}
	return &Inspector{Oracle: priceOracle, Log: log, PoolSize: poolSize}
}

// Inspect runs the pipeline over blk and returns its MEV events.
func (insp *Inspector) Inspect(ctx context.Context, blk *block.Block) ([]Event, error) {
	parsed := make([]swap.Result, len(blk.Transactions))
	workerpool.Run(len(blk.Transactions), insp.PoolSize, func(i int) {
		parsed[i] = swap.Parse(&blk.Transactions[i])
	})

	arbCandidates := make([]*arbitrage.Candidate, len(blk.Transactions))
	workerpool.Run(len(blk.Transactions), insp.PoolSize, func(i int) {
		arbCandidates[i] = arbitrage.Extract(&blk.Transactions[i], parsed[i])
	})

	sandwichCandidates := sandwich.Detect(blk, parsed)

	mints := collectMints(arbCandidates, sandwichCandidates)
	prices, err := insp.Oracle.BatchPrices(ctx, mints, blk.Time())
	if err != nil {
		insp.Log.WithError(err).WithField("slot", blk.Slot).Warn("oracle batch price fetch failed")
		prices = oracle.PriceMap{}
	}

	arbEvents := make([]*arbitrage.Event, len(arbCandidates))
	workerpool.Run(len(arbCandidates), insp.PoolSize, func(i int) {
		if arbCandidates[i] == nil {
			return
		}
		arbEvents[i] = arbitrage.Finalize(arbCandidates[i], prices)
	})

	var out []Event
	for _, e := range arbEvents {
		if e == nil {
			continue
		}
		out = append(out, Event{Kind: KindArbitrage, Arbitrage: e})
	}

	for _, c := range sandwichCandidates {
		e := sandwich.Finalize(blk.Slot, c, prices)
		if e == nil {
			continue
		}
		insp.Log.WithFields(logrus.Fields{
			"slot":   blk.Slot,
			"signer": e.Signer,
			"token":  e.SandwichedTok,
			"profit": e.Profitability.ProfitUSD,
		}).Debug("sandwich candidate confirmed profitable")
		out = append(out, Event{Kind: KindSandwich, Sandwich: e})
	}

	return out, nil
}

// collectMints returns the deduplicated mint set the oracle must price:
// wrapped-native always, plus every mint in each arbitrage candidate's
// aggregated signer changes, plus both tokens of each sandwich
// candidate's front and back swaps.
func collectMints(arbCandidates []*arbitrage.Candidate, sandwichCandidates []sandwich.Candidate) []string {
	seen := map[string]bool{block.WrappedNativeMint: true}
	out := []string{block.WrappedNativeMint}

	add := func(mint string) {
		if mint == "" || seen[mint] {
			return
		}
		seen[mint] = true
		out = append(out, mint)
	}

	for _, c := range arbCandidates {
		if c == nil {
			continue
		}
		for _, ch := range c.SignerChanges {
			add(ch.Mint)
		}
	}
	for _, c := range sandwichCandidates {
		add(c.FrontSwap.Token0)
		add(c.FrontSwap.Token1)
		add(c.BackSwap.Token0)
		add(c.BackSwap.Token1)
	}

	return out
}

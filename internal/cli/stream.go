package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solmev/inspector/fetcher"
	"github.com/solmev/inspector/inspector"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/stream"
)

func newStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Attach to the chain tip and print a summary line for each block with MEV",
		RunE:  runStream,
	}
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f := fetcher.New(fetcher.Config{RPCURL: cfg.RPCURL}, log)
	insp := inspector.New(oracle.NewPythOracle(), log, cfg.PoolSize)

	tip, err := f.CurrentSlot(ctx)
	if err != nil {
		return fmt.Errorf("fetch current slot: %w", err)
	}

	s := stream.FollowTip(ctx, f, log, tip)
	for {
		res, ok := s.Next()
		if !ok {
			return nil
		}
		if res.Err != nil {
			log.WithError(res.Err).WithField("slot", res.Slot).Debug("skipping slot")
			continue
		}

		events, err := insp.Inspect(ctx, res.Block)
		if err != nil || len(events) == 0 {
			continue
		}

		printSummaryLine(res.Block.Slot, events, res.Block.TotalComputeUnits())
	}
}

func printSummaryLine(slot uint64, events []inspector.Event, cu uint64) {
	var arbCount, sandCount int
	var profit float64
	for _, e := range events {
		switch e.Kind {
		case inspector.KindArbitrage:
			arbCount++
			profit += e.Arbitrage.Profitability.ProfitUSD
		case inspector.KindSandwich:
			sandCount++
			profit += e.Sandwich.Profitability.ProfitUSD
		}
	}
	fmt.Printf("Slot %d: %d MEV txs (%d arb, %d sandwich) | $%.2f profit | %d CU\n",
		slot, arbCount+sandCount, arbCount, sandCount, profit, cu)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solmev/inspector/fetcher"
	"github.com/solmev/inspector/inspector"
	"github.com/solmev/inspector/oracle"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <slot|start-end>",
		Short: "Emit a structured MEV document for a slot or range of slots",
		Args:  cobra.ArbitraryArgs,
		RunE:  runRun,
	}
	cmd.AddCommand(newRunSlotCmd())
	return cmd
}

func newRunSlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slot <slot|start-end>",
		Short: "Emit a compact summary document, omitting per-event detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(cmd, args[0], false)
		},
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: solmev run <slot|start-end>")
	}
	return runSlots(cmd, args[0], true)
}

func runSlots(cmd *cobra.Command, spec string, detailed bool) error {
	start, end, err := parseSlotSpec(spec)
	if err != nil {
		fail("invalid slot spec %q: %v", spec, err)
	}

	cfg := currentConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f := fetcher.New(fetcher.Config{RPCURL: cfg.RPCURL}, log)
	insp := inspector.New(oracle.NewPythOracle(), log, cfg.PoolSize)

	var docs []document
	for slot := start; slot <= end; slot++ {
		blk, err := f.FetchBlock(ctx, slot)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Warn("skipping slot")
			continue
		}
		events, err := insp.Inspect(ctx, blk)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Warn("inspection failed, skipping slot")
			continue
		}
		docs = append(docs, buildDocument(blk, events, detailed))
	}

	return writeJSON(docs, start == end)
}

// writeJSON prints a single document when the range is exactly one slot,
// an array otherwise.
func writeJSON(docs []document, single bool) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if single && len(docs) == 1 {
		return enc.Encode(docs[0])
	}
	return enc.Encode(docs)
}

// parseSlotSpec accepts "12345" or "12345-12399".
func parseSlotSpec(spec string) (uint64, uint64, error) {
	if idx := strings.IndexByte(spec, '-'); idx >= 0 {
		start, err := strconv.ParseUint(spec[:idx], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		end, err := strconv.ParseUint(spec[idx+1:], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		if start > end {
			return 0, 0, fmt.Errorf("range start %d after end %d", start, end)
		}
		return start, end, nil
	}

	slot, err := strconv.ParseUint(spec, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return slot, slot, nil
}


// Package fetcher wraps a Solana RPC client with the retry, rate-limit
// and structural-validation behavior the inspection pipeline assumes of
// its block source. It is a commodity concern: the pipeline itself only
// depends on the block.Block shape this package produces.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/solmev/inspector/block"
)

const defaultMainnetRPC = "https://api.mainnet-beta.solana.com"

// Config controls retry/backoff and rate-limit behavior.
type Config struct {
	RPCURL          string
	MaxRetries      int
	RetryDelay      time.Duration
	RateLimitPerSec int
	Timeout         time.Duration
}

// DefaultConfig returns the fetcher's defaults: public mainnet RPC, 3
// retries, 1s base backoff, 10 req/s, 30s per-request timeout.
func DefaultConfig() Config {
	return Config{
		RPCURL:          defaultMainnetRPC,
		MaxRetries:      3,
		RetryDelay:      time.Second,
		RateLimitPerSec: 10,
		Timeout:         30 * time.Second,
	}
}

// Fetcher retrieves confirmed blocks by slot.
type Fetcher struct {
	client  *rpc.Client
	cfg     Config
	limiter *rateLimiter
	log     *logrus.Logger
}

// New constructs a Fetcher. An empty cfg.RPCURL falls back to the public
// mainnet endpoint.
func New(cfg Config, log *logrus.Logger) *Fetcher {
	if cfg.RPCURL == "" {
		cfg.RPCURL = defaultMainnetRPC
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}
	return &Fetcher{
		client:  rpc.New(cfg.RPCURL),
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RateLimitPerSec),
		log:     log,
	}
}

// CurrentSlot returns the chain's current slot.
func (f *Fetcher) CurrentSlot(ctx context.Context) (uint64, error) {
	f.limiter.acquire()
	return f.client.GetSlot(ctx, rpc.CommitmentConfirmed)
}

// FetchBlock retrieves and decodes the block at slot, retrying transient
// RPC errors with exponential backoff up to cfg.MaxRetries times.
func (f *Fetcher) FetchBlock(ctx context.Context, slot uint64) (*block.Block, error) {
	var lastErr error

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		f.limiter.acquire()
		reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
		result, err := f.client.GetBlockWithOpts(reqCtx, slot, blockOpts())
		cancel()

		if err == nil {
			blk, convErr := convertBlock(slot, result)
			if convErr != nil {
				return nil, convErr
			}
			return blk, nil
		}

		if isBlockNotAvailable(err) {
			return nil, blockUnavailable(slot, err)
		}
		lastErr = err
		f.log.WithError(err).WithField("slot", slot).WithField("attempt", attempt+1).Warn("transient rpc error, retrying")
	}

	f.log.WithError(lastErr).WithField("slot", slot).Error("giving up after max retries")
	return nil, maxRetriesExceeded(slot)
}

func blockOpts() *rpc.GetBlockOpts {
	maxVersion := uint64(0)
	return &rpc.GetBlockOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
		TransactionDetails:             rpc.TransactionDetailsFull,
		Rewards:                        new(bool),
	}
}

func isBlockNotAvailable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, "not available", "skipped", "was skipped", "-32004", "-32007", "-32009")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexOfSubstr(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOfSubstr(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

// convertBlock maps an rpc.GetBlockResult onto the pipeline's block.Block
// shape, rejecting structurally invalid results.
func convertBlock(slot uint64, result *rpc.GetBlockResult) (*block.Block, error) {
	if result == nil {
		return nil, invalidBlockData(slot, "nil result")
	}

	blk := &block.Block{
		Slot:      slot,
		Blockhash: result.Blockhash.String(),
	}
	if result.BlockTime != nil {
		blk.BlockTime = int64(*result.BlockTime)
	}

	for i, txw := range result.Transactions {
		tx, err := convertTransaction(i, txw)
		if err != nil {
			f := logrus.New()
			f.WithError(err).WithField("slot", slot).WithField("index", i).Debug("skipping unparseable transaction")
			continue
		}
		blk.Transactions = append(blk.Transactions, *tx)
	}

	return blk, nil
}

func convertTransaction(index int, txw rpc.TransactionWithMeta) (*block.Transaction, error) {
	decoded, err := txw.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if txw.Meta == nil {
		return nil, fmt.Errorf("transaction missing metadata")
	}
	meta := txw.Meta

	accountKeys := append(solana.PublicKeySlice{}, decoded.Message.AccountKeys...)
	accountKeys = append(accountKeys, meta.LoadedAddresses.Writable...)
	accountKeys = append(accountKeys, meta.LoadedAddresses.ReadOnly...)

	keyStrings := make([]string, len(accountKeys))
	for i, k := range accountKeys {
		keyStrings[i] = k.String()
	}

	tx := &block.Transaction{
		Signature:    firstSignature(decoded),
		Index:        index,
		Success:      meta.Err == nil,
		Fee:          meta.Fee,
		AccountKeys:  keyStrings,
		PreBalances:  meta.PreBalances,
		PostBalances: meta.PostBalances,
		LogMessages:  meta.LogMessages,
	}
	if meta.Err != nil {
		tx.ErrMsg = fmt.Sprintf("%v", meta.Err)
	}
	if meta.ComputeUnitsConsumed != nil {
		tx.ComputeUnits = *meta.ComputeUnitsConsumed
	}

	for _, instr := range decoded.Message.Instructions {
		tx.Instructions = append(tx.Instructions, convertInstruction(instr))
	}
	for _, inner := range meta.InnerInstructions {
		var set block.InnerInstructionSet
		set.Index = int(inner.Index)
		for _, instr := range inner.Instructions {
			set.Instructions = append(set.Instructions, convertInstruction(instr))
		}
		tx.InnerInstructions = append(tx.InnerInstructions, set)
	}

	for _, tb := range meta.PreTokenBalances {
		tx.PreTokenBalances = append(tx.PreTokenBalances, convertTokenBalance(tb))
	}
	for _, tb := range meta.PostTokenBalances {
		tx.PostTokenBalances = append(tx.PostTokenBalances, convertTokenBalance(tb))
	}

	return tx, nil
}

func convertInstruction(instr solana.CompiledInstruction) block.Instruction {
	accounts := make([]int, len(instr.Accounts))
	for i, a := range instr.Accounts {
		accounts[i] = int(a)
	}
	return block.Instruction{
		ProgramIDIndex: int(instr.ProgramIDIndex),
		Accounts:       accounts,
		Data:           instr.Data,
	}
}

func convertTokenBalance(tb rpc.TokenBalance) block.TokenBalance {
	out := block.TokenBalance{
		AccountIndex: int(tb.AccountIndex),
		Mint:         tb.Mint.String(),
	}
	if tb.Owner != nil {
		out.Owner = tb.Owner.String()
	}
	if tb.UiTokenAmount != nil {
		out.Decimals = tb.UiTokenAmount.Decimals
		if tb.UiTokenAmount.Amount != "" {
			var amount uint64
			fmt.Sscanf(tb.UiTokenAmount.Amount, "%d", &amount)
			out.Amount = amount
		}
	}
	return out
}

func firstSignature(tx *solana.Transaction) string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	return tx.Signatures[0].String()
}

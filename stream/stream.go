// Package stream provides a thin, sequential block producer over a
// fetcher.Fetcher: replay a fixed range, or follow the chain tip.
package stream

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/fetcher"
)

// Result pairs a slot with its fetch outcome.
type Result struct {
	Slot  uint64
	Block *block.Block
	Err   error
}

// BlockStream emits Results over a channel in slot order.
type BlockStream struct {
	fetcher *fetcher.Fetcher
	log     *logrus.Logger
	out     chan Result
}

// NewRange streams every slot in [start, end] inclusive, then closes.
func NewRange(ctx context.Context, f *fetcher.Fetcher, log *logrus.Logger, start, end uint64) *BlockStream {
	s := &BlockStream{fetcher: f, log: log, out: make(chan Result, 10)}
	go s.runRange(ctx, start, end)
	return s
}

// FollowTip streams sequentially from startSlot and never closes on its
// own; it tracks the chain tip and catches up if it falls more than 50
// slots behind.
func FollowTip(ctx context.Context, f *fetcher.Fetcher, log *logrus.Logger, startSlot uint64) *BlockStream {
	s := &BlockStream{fetcher: f, log: log, out: make(chan Result, 10)}
	go s.followTip(ctx, startSlot)
	return s
}

// Next receives the next Result, or ok=false once the stream is done.
func (s *BlockStream) Next() (Result, bool) {
	r, ok := <-s.out
	return r, ok
}

func (s *BlockStream) runRange(ctx context.Context, start, end uint64) {
	defer close(s.out)
	for slot := start; slot <= end; slot++ {
		blk, err := s.fetcher.FetchBlock(ctx, slot)
		select {
		case s.out <- Result{Slot: slot, Block: blk, Err: err}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *BlockStream) followTip(ctx context.Context, startSlot uint64) {
	defer close(s.out)

	slot := startSlot
	processed := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed++
		if processed%50 == 0 {
			if tip, err := s.fetcher.CurrentSlot(ctx); err == nil && tip > slot+50 {
				slot = tip - 10
				s.log.WithField("slot", slot).Info("catching up to chain tip")
			}
		}

		blk, err := s.fetcher.FetchBlock(ctx, slot)
		select {
		case s.out <- Result{Slot: slot, Block: blk, Err: err}:
		case <-ctx.Done():
			return
		}

		switch {
		case errors.Is(err, fetcher.ErrBlockUnavailable):
			time.Sleep(400 * time.Millisecond)
		case err != nil:
			time.Sleep(time.Second)
			slot++
		default:
			slot++
		}
	}
}

package fetcher

import (
	"errors"
	"fmt"
)

// Sentinel error kinds observable at the fetcher boundary. Wrap with
// fmt.Errorf("...: %w", ...) to attach the slot number; callers use
// errors.Is against these to branch on kind.
var (
	ErrBlockUnavailable   = errors.New("block unavailable")
	ErrRPCTransient       = errors.New("rpc transient error")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrInvalidBlockData   = errors.New("invalid block data")
)

func blockUnavailable(slot uint64, cause error) error {
	return fmt.Errorf("slot %d: %w: %v", slot, ErrBlockUnavailable, cause)
}

func maxRetriesExceeded(slot uint64) error {
	return fmt.Errorf("slot %d: %w", slot, ErrMaxRetriesExceeded)
}

func invalidBlockData(slot uint64, msg string) error {
	return fmt.Errorf("slot %d: %w: %s", slot, ErrInvalidBlockData, msg)
}

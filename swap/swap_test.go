package swap

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/solmev/inspector/block"
)

const (
	signer = "Signer11111111111111111111111111111111111"
	usdc   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	dexA   = "DEXProgram1111111111111111111111111111111"
)

func systemTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return data
}

func tokenTransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tokenInstrTransfer
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

// buildTriangleTx constructs a two-leg SOL -> USDC -> SOL round trip
// routed through one DEX program, with the signer's own wSOL token
// account (index 3) and USDC account (index 4) as the transfer
// endpoints, plus a third-party pool authority (index 5) on the other
// side of each leg. All four inner transfers are invoked by the token
// program (index 2), not the DEX itself, so current_dex stays pinned to
// the outer instruction's program throughout.
func buildTriangleTx() *block.Transaction {
	accountKeys := []string{
		signer, dexA, solana.TokenProgramID.String(),
		"SignerWSOL11111111111111111111111111111111",
		"SignerUSDC11111111111111111111111111111111",
		"PoolAuth1111111111111111111111111111111111",
	}

	outer := block.Instruction{ProgramIDIndex: 1, Accounts: []int{}, Data: []byte{0xAA}}

	inner := []block.Instruction{
		// leg 1: signer's wSOL account -> pool (outgoing for signer)
		{ProgramIDIndex: 2, Accounts: []int{3, 5}, Data: tokenTransferData(1_000_000_000)},
		// leg 2: pool -> signer's USDC account (incoming for signer)
		{ProgramIDIndex: 2, Accounts: []int{5, 4}, Data: tokenTransferData(150_000_000)},
		// leg 3: signer's USDC account -> pool (outgoing)
		{ProgramIDIndex: 2, Accounts: []int{4, 5}, Data: tokenTransferData(150_000_000)},
		// leg 4: pool -> signer's wSOL account (incoming), nets +0.01 SOL
		{ProgramIDIndex: 2, Accounts: []int{5, 3}, Data: tokenTransferData(1_010_000_000)},
	}

	tx := &block.Transaction{
		Signature:   "sig1",
		Index:       0,
		Success:     true,
		Fee:         5005,
		AccountKeys: accountKeys,
		Instructions: []block.Instruction{outer},
		InnerInstructions: []block.InnerInstructionSet{
			{Index: 0, Instructions: inner},
		},
		PreTokenBalances: []block.TokenBalance{
			{AccountIndex: 3, Mint: block.WrappedNativeMint, Owner: signer, Amount: 5_000_000_000, Decimals: 9},
			{AccountIndex: 4, Mint: usdc, Owner: signer, Amount: 0, Decimals: 6},
		},
		PostTokenBalances: []block.TokenBalance{
			{AccountIndex: 3, Mint: block.WrappedNativeMint, Owner: signer, Amount: 5_010_000_000, Decimals: 9},
			{AccountIndex: 4, Mint: usdc, Owner: signer, Amount: 0, Decimals: 6},
		},
	}
	return tx
}

func TestParse_TriangleRoundTrip(t *testing.T) {
	tx := buildTriangleTx()
	result := Parse(tx)

	if len(result.Swaps) != 2 {
		t.Fatalf("expected 2 swaps, got %d: %+v", len(result.Swaps), result.Swaps)
	}
	for _, s := range result.Swaps {
		if s.Token0 == s.Token1 {
			t.Errorf("swap has token0 == token1: %+v", s)
		}
		if s.Amount0 == 0 || s.Amount1 == 0 {
			t.Errorf("swap has a zero amount: %+v", s)
		}
	}

	first, last := result.Swaps[0], result.Swaps[len(result.Swaps)-1]
	if first.Token0 != block.WrappedNativeMint || last.Token1 != block.WrappedNativeMint {
		t.Errorf("expected round trip to start and end in wrapped SOL, got first=%+v last=%+v", first, last)
	}
}

func TestParse_ZeroAmountTransfersDropped(t *testing.T) {
	accountKeys := []string{signer, dexA, solana.TokenProgramID.String(), "A", "B"}
	outer := block.Instruction{ProgramIDIndex: 1}
	inner := []block.Instruction{
		{ProgramIDIndex: 2, Accounts: []int{3, 4}, Data: tokenTransferData(0)},
	}
	tx := &block.Transaction{
		AccountKeys:       accountKeys,
		Instructions:      []block.Instruction{outer},
		InnerInstructions: []block.InnerInstructionSet{{Index: 0, Instructions: inner}},
		PreTokenBalances:  []block.TokenBalance{{AccountIndex: 4, Mint: usdc, Owner: "PoolOwner", Amount: 0, Decimals: 6}},
		PostTokenBalances: []block.TokenBalance{{AccountIndex: 4, Mint: usdc, Owner: "PoolOwner", Amount: 0, Decimals: 6}},
	}

	result := Parse(tx)
	if len(result.Swaps) != 0 {
		t.Fatalf("expected no swaps from a zero-amount transfer, got %d", len(result.Swaps))
	}
}

func TestParse_TokenChangesOnlyWhenDeltaNonZero(t *testing.T) {
	tx := &block.Transaction{
		PreTokenBalances: []block.TokenBalance{
			{AccountIndex: 0, Mint: usdc, Owner: signer, Amount: 100, Decimals: 6},
			{AccountIndex: 1, Mint: usdc, Owner: signer, Amount: 50, Decimals: 6},
		},
		PostTokenBalances: []block.TokenBalance{
			{AccountIndex: 0, Mint: usdc, Owner: signer, Amount: 100, Decimals: 6},
			{AccountIndex: 1, Mint: usdc, Owner: signer, Amount: 75, Decimals: 6},
		},
	}

	result := Parse(tx)
	if len(result.TokenChanges) != 1 {
		t.Fatalf("expected exactly 1 token change, got %d", len(result.TokenChanges))
	}
	c := result.TokenChanges[0]
	if c.Delta != int64(c.PostAmount)-int64(c.PreAmount) {
		t.Errorf("delta mismatch: %+v", c)
	}
	if c.AccountIndex != 1 {
		t.Errorf("expected change for account 1, got %d", c.AccountIndex)
	}
}

func TestParse_ProgramAddressesSortedAndDeduped(t *testing.T) {
	tx := &block.Transaction{
		AccountKeys: []string{signer, "ZZZ", "AAA", "ZZZ"},
		Instructions: []block.Instruction{
			{ProgramIDIndex: 1},
			{ProgramIDIndex: 2},
			{ProgramIDIndex: 3},
		},
	}
	result := Parse(tx)
	if len(result.Programs) != 2 {
		t.Fatalf("expected 2 unique programs, got %v", result.Programs)
	}
	if result.Programs[0] != "AAA" || result.Programs[1] != "ZZZ" {
		t.Errorf("expected sorted [AAA ZZZ], got %v", result.Programs)
	}
}

func TestParse_NativeTransferSynthesizesWrappedMint(t *testing.T) {
	accountKeys := []string{signer, solana.SystemProgramID.String(), "Dest1111111111111111111111111111111111111"}
	tx := &block.Transaction{
		AccountKeys: accountKeys,
		Instructions: []block.Instruction{
			{ProgramIDIndex: 1, Accounts: []int{0, 2}, Data: systemTransferData(2_000_000_000)},
		},
	}
	result := Parse(tx)
	if len(result.Swaps) != 0 {
		// A lone outgoing transfer with no matching incoming leg produces
		// no swap; the transfer itself is checked below.
		t.Fatalf("unexpected swaps from a single native transfer: %+v", result.Swaps)
	}

	transfers := collectTransfers(tx, map[int]tokenInfo{})
	if len(transfers) != 1 {
		t.Fatalf("expected the native transfer to be accepted, got %d transfers", len(transfers))
	}
	if transfers[0].mint != block.WrappedNativeMint || transfers[0].decimals != 9 || transfers[0].amount != 2_000_000_000 {
		t.Errorf("expected a 2 SOL wrapped-native transfer with 9 decimals, got %+v", transfers[0])
	}
}

package sandwich

import (
	"math"
	"sort"

	"github.com/solmev/inspector/block"
	"github.com/solmev/inspector/mev"
	"github.com/solmev/inspector/oracle"
	"github.com/solmev/inspector/swap"
	"github.com/solmev/inspector/tip"
)

// defaultSOLPrice is used to convert fees to USD when the price map has
// no entry for the wrapped-native mint. It is deliberately 127.0, not
// the arbitrage detector's 130.0 — both defaults are preserved verbatim
// from the system they were distilled from; see the design notes.
const defaultSOLPrice = 127.0

// Event is a detected, priced sandwich.
type Event struct {
	Slot          uint64
	Signer        string // attacker
	SandwichedTok string
	Front         *block.Transaction
	Back          *block.Transaction
	ComputeUnits  uint64
	Fee           uint64
	JitoTip       uint64
	ProgramAddrs  []string
	SignerChanges []swap.TokenBalanceChange
	Profitability mev.Profitability
}

// Finalize computes c's profitability against prices and returns an
// Event, or nil when profit is not strictly positive.
func Finalize(slot uint64, c Candidate, prices oracle.PriceMap) *Event {
	paymentToken := c.FrontSwap.Token0
	if c.FrontSwap.Token0 == block.WrappedNativeMint || c.FrontSwap.Token1 == block.WrappedNativeMint {
		paymentToken = block.WrappedNativeMint
	}

	var spent, received float64
	if c.FrontSwap.Token0 == paymentToken {
		spent = normalize(c.FrontSwap.Amount0, c.FrontSwap.Decimals0)
		received = normalize(c.BackSwap.Amount1, c.BackSwap.Decimals1)
	} else {
		spent = normalize(c.BackSwap.Amount0, c.BackSwap.Decimals0)
		received = normalize(c.FrontSwap.Amount1, c.FrontSwap.Decimals1)
	}
	profitInToken := received - spent

	tokenPrice := prices.Price(paymentToken)
	if tokenPrice == 0.0 {
		if paymentToken == block.WrappedNativeMint {
			tokenPrice = 130.0
		} else {
			tokenPrice = 1.0
		}
	}
	revenue := math.Max(profitInToken, 0)
	revenueUSD := revenue * tokenPrice

	frontTip, _ := tip.Detect(c.Front)
	backTip, _ := tip.Detect(c.Back)
	totalFees := c.Front.Fee + c.Back.Fee
	totalTips := frontTip + backTip

	solPrice := prices.Price(block.WrappedNativeMint)
	if solPrice == 0.0 {
		solPrice = defaultSOLPrice
	}
	feesUSD := float64(totalFees+totalTips) / 1e9 * solPrice

	profitUSD := revenueUSD - feesUSD
	if profitUSD <= 0 {
		return nil
	}

	return &Event{
		Slot:          slot,
		Signer:        c.Front.Signer(),
		SandwichedTok: c.SandwichedTok,
		Front:         c.Front,
		Back:          c.Back,
		ComputeUnits:  c.Front.ComputeUnits + c.Back.ComputeUnits,
		Fee:           totalFees,
		JitoTip:       totalTips,
		ProgramAddrs:  combinedPrograms(c),
		SignerChanges: combinedSignerChanges(c),
		Profitability: mev.Profitability{RevenueUSD: revenueUSD, FeesUSD: feesUSD, ProfitUSD: profitUSD},
	}
}

// combinedPrograms concatenates front, victim and back program
// addresses, then sorts and deduplicates.
func combinedPrograms(c Candidate) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(c.FrontParsed.Programs)
	add(c.VictimProgs)
	add(c.BackParsed.Programs)
	sort.Strings(out)
	return out
}

// combinedSignerChanges sums the attacker-owned TokenBalanceChanges from
// front and back, grouped by mint.
func combinedSignerChanges(c Candidate) []swap.TokenBalanceChange {
	attacker := c.Front.Signer()
	byMint := make(map[string]*swap.TokenBalanceChange)
	var order []string

	accumulate := func(changes []swap.TokenBalanceChange) {
		for _, ch := range changes {
			if ch.Owner != attacker {
				continue
			}
			agg, ok := byMint[ch.Mint]
			if !ok {
				cp := ch
				byMint[ch.Mint] = &cp
				order = append(order, ch.Mint)
				continue
			}
			agg.Delta += ch.Delta
			agg.Decimals = ch.Decimals
		}
	}
	accumulate(c.FrontParsed.TokenChanges)
	accumulate(c.BackParsed.TokenChanges)

	out := make([]swap.TokenBalanceChange, 0, len(order))
	for _, mint := range order {
		out = append(out, *byMint[mint])
	}
	return out
}

func normalize(amount uint64, decimals uint8) float64 {
	return float64(amount) / math.Pow(10, float64(decimals))
}

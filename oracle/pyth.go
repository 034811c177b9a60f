package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/solmev/inspector/block"
)

// pythFeed pairs a mint with the Pyth Benchmarks TradingView symbol that
// prices it. Limited to the majors, matching the original inspector's
// feed table; anything else resolves to 0.0 (unknown).
type pythFeed struct {
	mint   string
	symbol string
}

var pythFeeds = []pythFeed{
	{block.WrappedNativeMint, "Crypto.SOL/USD"},
	{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "Crypto.USDC/USD"},
	{"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "Crypto.USDT/USD"},
	{"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "Crypto.BONK/USD"},
	{"jtojtomepa8beP8AuQc6eXt5FriJwfFMwQx2v2f9mCL", "Crypto.JTO/USD"},
	{"HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3", "Crypto.PYTH/USD"},
	{"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", "Crypto.JUP/USD"},
	{"EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", "Crypto.WIF/USD"},
}

func mintSymbol(mint string) (string, bool) {
	for _, f := range pythFeeds {
		if f.mint == mint {
			return f.symbol, true
		}
	}
	return "", false
}

// PythOracle fetches USD closes from the Pyth Benchmarks history API,
// with a ±5 minute window around the reference timestamp and a per-mint
// in-memory cache (prices are assumed stable within one block's
// vicinity, so a process-lifetime cache is sufficient; see the oracle
// cache note in the design notes).
type PythOracle struct {
	baseURL string
	client  *http.Client
	cache   sync.Map // mint -> float64
}

// NewPythOracle constructs a PythOracle against the default Pyth
// Benchmarks endpoint.
func NewPythOracle() *PythOracle {
	return &PythOracle{
		baseURL: "https://benchmarks.pyth.network",
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   8 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				IdleConnTimeout:     60 * time.Second,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

// BatchPrices resolves every mint's USD price in parallel (one HTTP
// request per uncached, known mint) and returns a PriceMap covering all
// of mints, with unknown mints mapped to 0.0. It never returns an error;
// per-mint failures degrade to an unknown price.
func (o *PythOracle) BatchPrices(ctx context.Context, mints []string, at time.Time) (PriceMap, error) {
	out := make(PriceMap, len(mints))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, mint := range mints {
		mint := mint
		if cached, ok := o.cache.Load(mint); ok {
			mu.Lock()
			out[mint] = cached.(float64)
			mu.Unlock()
			continue
		}
		symbol, ok := mintSymbol(mint)
		if !ok {
			mu.Lock()
			out[mint] = 0.0
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			price, err := o.fetchClose(gctx, symbol, at)
			if err != nil {
				price = 0.0
			}
			o.cache.Store(mint, price)
			mu.Lock()
			out[mint] = price
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // per-mint errors are swallowed above; nothing to propagate
	return out, nil
}

// fetchClose fetches the closest 1-minute candle close within ±5 minutes
// of at for the given Pyth Benchmarks symbol.
func (o *PythOracle) fetchClose(ctx context.Context, symbol string, at time.Time) (float64, error) {
	window := 5 * time.Minute
	from := at.Add(-window).Unix()
	to := at.Add(window).Unix()

	u, err := url.Parse(o.baseURL)
	if err != nil {
		return 0, err
	}
	u.Path = "/v1/shims/tradingview/history"
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("resolution", "1")
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("pyth benchmarks: http %d", resp.StatusCode)
	}

	var body struct {
		C []float64 `json:"c"`
		T []int64   `json:"t"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if len(body.C) == 0 {
		return 0, fmt.Errorf("pyth benchmarks: no candles for %s", symbol)
	}

	target := at.Unix()
	bestIdx, bestDist := 0, int64(1<<62)
	for i, t := range body.T {
		dist := t - target
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestIdx, bestDist = i, dist
		}
	}
	return body.C[bestIdx], nil
}

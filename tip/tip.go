// Package tip implements the fixed-address tip-detection helper used by
// both the arbitrage and sandwich profit accounting: a hard-coded set of
// known tip-recipient accounts, scanned against one transaction's
// balance deltas.
package tip

import "github.com/solmev/inspector/block"

// recipients are well-known block-producer tip accounts. The exact set
// is an operational detail, not a protocol constant, so it is kept as a
// package-level var rather than baked into the detectors.
var recipients = map[string]bool{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5": true,
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe": true,
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY": true,
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49": true,
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh": true,
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt": true,
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL": true,
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT": true,
}

// Detect scans tx's account-key list for the first tip-recipient account
// whose balance increased, returning the lamport delta. The second
// return value reports whether any match was found.
func Detect(tx *block.Transaction) (uint64, bool) {
	for i, key := range tx.AccountKeys {
		if !recipients[key] {
			continue
		}
		if i >= len(tx.PreBalances) || i >= len(tx.PostBalances) {
			continue
		}
		pre, post := tx.PreBalances[i], tx.PostBalances[i]
		if post > pre {
			return post - pre, true
		}
	}
	return 0, false
}

// Command solmev detects atomic arbitrage and sandwich MEV in confirmed
// Solana-class blocks: stream the chain tip, or run against a specific
// slot or range.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/solmev/inspector/internal/cli"
)

func main() {
	_ = godotenv.Load() // optional; missing .env is not an error

	os.Exit(cli.Execute())
}

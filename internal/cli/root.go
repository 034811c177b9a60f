// Package cli implements the inspector's command-line entry points:
// `stream`, `run <slot|range>`, and `run slot <slot|range>`.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfgpkg "github.com/solmev/inspector/internal/config"
)

var (
	v      = viper.New()
	log    = logrus.New()
	rpcURL string
)

// Execute runs the root command; callers exit the process with the
// returned code.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "solmev",
		Short: "Detect atomic arbitrage and sandwich MEV in confirmed blocks",
	}
	root.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "Solana RPC endpoint (default: public mainnet)")
	_ = v.BindPFlag("rpc_url", root.PersistentFlags().Lookup("rpc-url"))

	cobra.OnInitialize(func() {
		cfg := cfgpkg.Load(v)
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	})

	root.AddCommand(newStreamCmd())
	root.AddCommand(newRunCmd())
	return root
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func currentConfig() cfgpkg.Config {
	return cfgpkg.Load(v)
}

// Package config binds the inspector's small configuration surface
// (RPC endpoint, log level) via viper, with environment-variable and
// flag overrides layered the way the rest of the ecosystem does it.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvRPCURL is the environment variable that selects the RPC endpoint;
// unset falls back to the public mainnet default.
const EnvRPCURL = "SOLANA_RPC_URL"

const defaultMainnetRPC = "https://api.mainnet-beta.solana.com"

// Config is the inspector's runtime configuration.
type Config struct {
	RPCURL   string `mapstructure:"rpc_url"`
	LogLevel string `mapstructure:"log_level"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Load reads configuration from environment variables and whatever flags
// the caller has already bound into v, applying defaults for anything
// left unset.
func Load(v *viper.Viper) Config {
	v.SetEnvPrefix("solmev")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("rpc_url", EnvRPCURL)

	v.SetDefault("rpc_url", defaultMainnetRPC)
	v.SetDefault("log_level", "info")
	v.SetDefault("pool_size", 0)

	return Config{
		RPCURL:   v.GetString("rpc_url"),
		LogLevel: v.GetString("log_level"),
		PoolSize: v.GetInt("pool_size"),
	}
}

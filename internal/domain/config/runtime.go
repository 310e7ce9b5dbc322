package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ArtifactsDir string // compiled contract artifacts (forge out/ or hardhat artifacts/)
	ManifestsDir string // one <network>.json per network

	// ComponentsFile is an optional YAML catalogue replacing the built-in one
	ComponentsFile string

	// Context settings
	Network *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration

	// Command-specific settings (only populated for relevant commands)
	DryRun            bool
	VerifyConcurrency int

	// Credentials
	PrivateKey string

	// Config source tracking
	ConfigSource string // "vaultctl.toml" or "defaults"
}

// Network represents network configuration
type Network struct {
	Name            string `json:"name" toml:"-"`
	ChainID         uint64 `json:"chainId" toml:"chain_id"`
	RPCURL          string `json:"rpcUrl" toml:"rpc_url"`
	ExplorerURL     string `json:"explorerUrl,omitempty" toml:"explorer_url"`
	EtherscanAPIKey string `json:"-" toml:"etherscan_api_key"`
}

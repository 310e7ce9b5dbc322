package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fractional-company/vaultctl/internal/domain/config"
)

// builtinNetworks are the networks the hardhat project shipped with. Their
// rpc urls are templates expanded against the environment.
var builtinNetworks = map[string]config.Network{
	"mainnet": {
		Name:        "mainnet",
		ChainID:     1,
		RPCURL:      "https://eth-mainnet.alchemyapi.io/v2/${ALCHEMY_API_KEY}",
		ExplorerURL: "https://api.etherscan.io/api",
	},
	"rinkeby": {
		Name:        "rinkeby",
		ChainID:     4,
		RPCURL:      "https://eth-rinkeby.alchemyapi.io/v2/${ALCHEMY_API_KEY}",
		ExplorerURL: "https://api-rinkeby.etherscan.io/api",
	},
	"local": {
		Name:    "local",
		ChainID: 1337,
		RPCURL:  "http://127.0.0.1:8545",
	},
}

// RPCEnvVarName is the env var overriding a network's rpc url.
// Examples: rinkeby -> RINKEBY_RPC_URL, base-goerli -> BASE_GOERLI_RPC_URL
func RPCEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}

// ResolveNetwork returns the named network from the project file, falling back
// to the built-in networks. <NAME>_RPC_URL overrides the rpc url of either.
func ResolveNetwork(file *ProjectFile, name string) (*config.Network, error) {
	var (
		network config.Network
		found   bool
	)
	if file != nil {
		network, found = file.Networks[name]
	}
	if !found {
		network, found = builtinNetworks[name]
		if found {
			network.RPCURL = os.ExpandEnv(network.RPCURL)
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown network %q (available: %s)", name, strings.Join(knownNetworks(file), ", "))
	}

	network.Name = name
	if url := os.Getenv(RPCEnvVarName(name)); url != "" {
		network.RPCURL = url
	}
	if network.EtherscanAPIKey == "" {
		network.EtherscanAPIKey = os.Getenv("ETHERSCAN_API_KEY")
	}
	return &network, nil
}

func knownNetworks(file *ProjectFile) []string {
	seen := make(map[string]bool)
	for name := range builtinNetworks {
		seen[name] = true
	}
	if file != nil {
		for name := range file.Networks {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

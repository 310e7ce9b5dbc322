package domain

// LocalNode is the anvil process serving the local network
type LocalNode struct {
	Port    string `json:"port"`
	ChainID uint64 `json:"chainId"`
	ForkURL string `json:"forkUrl,omitempty"`
	PidFile string `json:"pidFile"`
	LogFile string `json:"logFile"`
}

// RPCURL returns the url the node listens on
func (n *LocalNode) RPCURL() string {
	return "http://127.0.0.1:" + n.Port
}

// NodeStatus is the observed state of a local node
type NodeStatus struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	RPCURL     string `json:"rpcUrl,omitempty"`
	LogFile    string `json:"logFile"`
	RPCHealthy bool   `json:"rpcHealthy"`
	ChainID    uint64 `json:"chainId,omitempty"`
	Error      string `json:"error,omitempty"`
}

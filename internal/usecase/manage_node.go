package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
)

const (
	defaultNodePort    = "8545"
	defaultNodeChainID = 1337
	nodeStateDir       = ".vaultctl"
)

// ManageNode starts, stops and inspects the local development node
type ManageNode struct {
	config   *config.RuntimeConfig
	nodes    NodeManager
	progress ProgressSink
}

// NewManageNode creates a new node management use case
func NewManageNode(cfg *config.RuntimeConfig, nodes NodeManager, progress ProgressSink) *ManageNode {
	return &ManageNode{
		config:   cfg,
		nodes:    nodes,
		progress: progress,
	}
}

// NodeParams selects the node instance. Zero values take the local network defaults.
type NodeParams struct {
	Port    string
	ChainID uint64
	ForkURL string
}

// Node resolves params into the node the other operations act on
func (uc *ManageNode) Node(params NodeParams) *domain.LocalNode {
	port := params.Port
	if port == "" {
		port = defaultNodePort
	}
	chainID := params.ChainID
	if chainID == 0 {
		chainID = defaultNodeChainID
	}
	dir := filepath.Join(uc.config.ProjectRoot, nodeStateDir)
	return &domain.LocalNode{
		Port:    port,
		ChainID: chainID,
		ForkURL: params.ForkURL,
		PidFile: filepath.Join(dir, fmt.Sprintf("node-%s.pid", port)),
		LogFile: filepath.Join(dir, fmt.Sprintf("node-%s.log", port)),
	}
}

// Start launches the node and returns its status once healthy
func (uc *ManageNode) Start(ctx context.Context, params NodeParams) (*domain.NodeStatus, error) {
	node := uc.Node(params)
	uc.progress.Info(fmt.Sprintf("Starting local node on port %s (chain %d)...", node.Port, node.ChainID))

	if err := uc.nodes.Start(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}
	return uc.nodes.Status(ctx, node)
}

// Stop terminates the node if it is running
func (uc *ManageNode) Stop(ctx context.Context, params NodeParams) (*domain.NodeStatus, error) {
	node := uc.Node(params)
	status, err := uc.nodes.Status(ctx, node)
	if err != nil {
		return nil, err
	}
	if !status.Running {
		return status, nil
	}

	if err := uc.nodes.Stop(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to stop node: %w", err)
	}
	return status, nil
}

// Status reports the node state
func (uc *ManageNode) Status(ctx context.Context, params NodeParams) (*domain.NodeStatus, error) {
	return uc.nodes.Status(ctx, uc.Node(params))
}

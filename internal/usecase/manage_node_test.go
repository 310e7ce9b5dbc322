package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNodes struct {
	running  map[string]bool
	startErr error
	started  []*domain.LocalNode
	stopped  int
}

func newFakeNodes() *fakeNodes {
	return &fakeNodes{running: make(map[string]bool)}
}

func (f *fakeNodes) Start(ctx context.Context, node *domain.LocalNode) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, node)
	f.running[node.Port] = true
	return nil
}

func (f *fakeNodes) Stop(ctx context.Context, node *domain.LocalNode) error {
	f.stopped++
	delete(f.running, node.Port)
	return nil
}

func (f *fakeNodes) Status(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error) {
	status := &domain.NodeStatus{LogFile: node.LogFile}
	if f.running[node.Port] {
		status.Running = true
		status.PID = 4242
		status.RPCURL = node.RPCURL()
		status.RPCHealthy = true
		status.ChainID = node.ChainID
	}
	return status, nil
}

func newManageNode(nodes NodeManager) *ManageNode {
	return NewManageNode(&config.RuntimeConfig{ProjectRoot: "/project"}, nodes, NopProgress{})
}

func TestManageNode_Defaults(t *testing.T) {
	node := newManageNode(newFakeNodes()).Node(NodeParams{})

	assert.Equal(t, "8545", node.Port)
	assert.Equal(t, uint64(1337), node.ChainID)
	assert.Equal(t, filepath.Join("/project", ".vaultctl", "node-8545.pid"), node.PidFile)
	assert.Equal(t, filepath.Join("/project", ".vaultctl", "node-8545.log"), node.LogFile)
	assert.Equal(t, "http://127.0.0.1:8545", node.RPCURL())
}

func TestManageNode_StartStop(t *testing.T) {
	nodes := newFakeNodes()
	uc := newManageNode(nodes)
	ctx := context.Background()

	status, err := uc.Start(ctx, NodeParams{Port: "9545", ChainID: 31337})
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, uint64(31337), status.ChainID)
	assert.Equal(t, "http://127.0.0.1:9545", status.RPCURL)

	status, err = uc.Stop(ctx, NodeParams{Port: "9545"})
	require.NoError(t, err)
	assert.True(t, status.Running, "stop reports the state it found")
	assert.Equal(t, 1, nodes.stopped)

	status, err = uc.Status(ctx, NodeParams{Port: "9545"})
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestManageNode_StopNotRunning(t *testing.T) {
	nodes := newFakeNodes()
	status, err := newManageNode(nodes).Stop(context.Background(), NodeParams{})
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Zero(t, nodes.stopped)
}

func TestManageNode_StartError(t *testing.T) {
	nodes := newFakeNodes()
	nodes.startErr = errors.New("node already running (PID 7)")

	_, err := newManageNode(nodes).Start(context.Background(), NodeParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start node")
	assert.Contains(t, err.Error(), "already running")
}

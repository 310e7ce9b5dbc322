package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fractional-company/vaultctl/internal/domain"
)

const (
	startupTimeout = 5 * time.Second
	stopTimeout    = 5 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// ChainIDFunc asks the node at url for its chain id
type ChainIDFunc func(ctx context.Context, url string) (uint64, error)

// AnvilManager runs anvil in the background, tracked by a pid file
type AnvilManager struct {
	binary  string
	chainID ChainIDFunc
	log     *slog.Logger
}

// NewAnvilManager creates a manager; a nil chainID queries the node over ethclient
func NewAnvilManager(chainID ChainIDFunc, log *slog.Logger) *AnvilManager {
	if chainID == nil {
		chainID = queryChainID
	}
	return &AnvilManager{
		binary:  "anvil",
		chainID: chainID,
		log:     log.With("component", "AnvilManager"),
	}
}

// ProvideAnvilManager creates the manager for wire
func ProvideAnvilManager(log *slog.Logger) *AnvilManager {
	return NewAnvilManager(nil, log)
}

// Start launches anvil and waits until its rpc answers
func (m *AnvilManager) Start(ctx context.Context, node *domain.LocalNode) error {
	if pid, running := m.running(node); running {
		return fmt.Errorf("node already running (PID %d)", pid)
	}

	if err := os.MkdirAll(filepath.Dir(node.PidFile), 0755); err != nil {
		return fmt.Errorf("failed to create node directory: %w", err)
	}
	logFile, err := os.Create(node.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(m.binary, buildAnvilArgs(node)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}
	m.log.Debug("anvil started", "pid", cmd.Process.Pid, "port", node.Port)

	if err := os.WriteFile(node.PidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_ = cmd.Process.Release()

	waitCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	for {
		if _, err := m.chainID(waitCtx, node.RPCURL()); err == nil {
			return nil
		}
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("node did not answer on %s within %s, see %s", node.RPCURL(), startupTimeout, node.LogFile)
		case <-time.After(pollInterval):
		}
	}
}

// Stop terminates the node and removes its pid file. Stopping a node that is
// not running is a no-op.
func (m *AnvilManager) Stop(ctx context.Context, node *domain.LocalNode) error {
	pid, running := m.running(node)
	if !running {
		return removePidFile(node)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	deadline := time.Now().Add(stopTimeout)
	for alive(pid) && time.Now().Before(deadline) {
		time.Sleep(pollInterval)
	}
	if alive(pid) {
		_ = process.Kill()
	}

	m.log.Debug("anvil stopped", "pid", pid)
	return removePidFile(node)
}

// Status reports whether the node process is alive and its rpc healthy
func (m *AnvilManager) Status(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error) {
	status := &domain.NodeStatus{LogFile: node.LogFile}

	pid, running := m.running(node)
	if !running {
		return status, nil
	}
	status.Running = true
	status.PID = pid
	status.RPCURL = node.RPCURL()

	chainID, err := m.chainID(ctx, node.RPCURL())
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.ChainID = chainID
	return status, nil
}

func (m *AnvilManager) running(node *domain.LocalNode) (int, bool) {
	pid, err := readPidFile(node.PidFile)
	if err != nil {
		return 0, false
	}
	return pid, alive(pid)
}

func buildAnvilArgs(node *domain.LocalNode) []string {
	args := []string{"--port", node.Port, "--host", "127.0.0.1"}
	if node.ChainID != 0 {
		args = append(args, "--chain-id", strconv.FormatUint(node.ChainID, 10))
	}
	if node.ForkURL != "" {
		args = append(args, "--fork-url", node.ForkURL)
	}
	return args
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in %s: %q", path, string(data))
	}
	return pid, nil
}

func removePidFile(node *domain.LocalNode) error {
	if err := os.Remove(node.PidFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// alive probes the process with signal 0
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func queryChainID(ctx context.Context, url string) (uint64, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

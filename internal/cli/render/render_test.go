package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var (
	registryAddr = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	settingsAddr = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
)

func testPlan() *usecase.DeploymentPlan {
	settings := &domain.Component{Name: "settings", Artifact: domain.ArtifactRef{Name: "Settings", Path: "src/Settings.sol"}}
	registry := &domain.Component{
		Name:     "vault-registry",
		Artifact: domain.ArtifactRef{Name: "VaultRegistry"},
		Args:     []domain.Arg{domain.Reference("settings")},
	}
	factory := &domain.Component{
		Name:   "vault-factory",
		Source: &domain.DerivedSource{From: "vault-registry", Field: "factory"},
	}
	return &usecase.DeploymentPlan{
		Network: "rinkeby",
		Steps: []*usecase.PlanStep{
			{Component: settings},
			{Component: registry, Dependencies: []string{"settings"}},
			{Component: factory, Dependencies: []string{"vault-registry"}, Source: registry},
		},
		Base: domain.NewManifest("rinkeby"),
	}
}

func TestDeployRenderer_DryRun(t *testing.T) {
	var buf bytes.Buffer
	err := NewDeployRenderer(&buf).Render(&usecase.DeployResult{Plan: testPlan(), DryRun: true, Success: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Deployment plan for rinkeby (3 components)")
	assert.Contains(t, out, "src/Settings.sol:Settings")
	assert.Contains(t, out, "vault-registry.factory()")
	assert.Contains(t, out, "Dry run, nothing was deployed.")
}

func TestDeployRenderer_PartialFailure(t *testing.T) {
	manifest := domain.NewManifest("rinkeby")
	require.NoError(t, manifest.Record("settings", settingsAddr))

	var buf bytes.Buffer
	err := NewDeployRenderer(&buf).Render(&usecase.DeployResult{
		Plan:     testPlan(),
		Manifest: manifest,
		Deployed: manifest.Records(),
		Failure:  &domain.DeploymentRejectedError{Component: "vault-registry", Err: errors.New("execution reverted")},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, settingsAddr.Hex())
	assert.Contains(t, out, "❌ vault-registry failed: execution reverted")
	assert.Contains(t, out, "Not deployed: vault-factory")
	assert.Contains(t, out, "Partial manifest written for rinkeby with 1 addresses")
}

func TestDeployRenderer_Success(t *testing.T) {
	manifest := domain.NewManifest("rinkeby")
	require.NoError(t, manifest.Record("settings", settingsAddr))
	require.NoError(t, manifest.Record("vault-registry", registryAddr))

	var buf bytes.Buffer
	require.NoError(t, NewDeployRenderer(&buf).Render(&usecase.DeployResult{
		Plan: testPlan(), Manifest: manifest, Deployed: manifest.Records(), Success: true,
	}))
	assert.Contains(t, buf.String(), "✅ Deployed 2 components to rinkeby")
}

func TestVerifyRenderer(t *testing.T) {
	result := &usecase.VerifyResult{
		Network: "rinkeby",
		Results: []*usecase.ComponentVerification{
			{Component: "settings", Address: settingsAddr, Status: usecase.StatusVerified},
			{Component: "vault-registry", Address: registryAddr, Status: usecase.StatusFailed,
				Error: domain.VerificationFailedError{Component: "vault-registry", Reason: "bytecode mismatch"}},
			{Component: "vault-factory", Status: usecase.StatusUnresolved,
				Error: domain.UnresolvedReferenceError{Component: "vault-factory", Reference: "vault-factory"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewVerifyRenderer(&buf).Render(result))

	out := buf.String()
	assert.Contains(t, out, "✓ Verified")
	assert.Contains(t, out, "✗ Failed")
	assert.Contains(t, out, "? Unresolved")
	assert.Contains(t, out, "vault-registry: verification of vault-registry failed: bytecode mismatch")
	assert.Contains(t, out, "Verification complete: 1/3 successful")
}

func TestVerifyRenderer_DumpCommands(t *testing.T) {
	result := &usecase.VerifyResult{
		Results: []*usecase.ComponentVerification{{
			Component: "settings",
			Status:    usecase.StatusDumped,
			Command:   []string{"forge", "verify-contract", settingsAddr.Hex(), "src/Settings.sol:Settings", "--etherscan-api-key", "***"},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewVerifyRenderer(&buf).Render(result))
	assert.Equal(t, "# settings\nforge verify-contract "+settingsAddr.Hex()+" src/Settings.sol:Settings --etherscan-api-key '***'\n", buf.String())
}

func TestShellJoin(t *testing.T) {
	assert.Equal(t, "a 'b c' '' 'it'\\''s'", shellJoin([]string{"a", "b c", "", "it's"}))
}

func TestManifestRenderer(t *testing.T) {
	view := &usecase.ManifestView{
		Network: "mainnet",
		Entries: []usecase.ManifestEntry{
			{Name: "legacy", Address: registryAddr},
			{Name: "settings", Address: settingsAddr, Artifact: "src/Settings.sol:Settings"},
		},
		Missing: []string{"vault-factory"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewManifestRenderer(&buf).Render(view))

	out := buf.String()
	assert.Contains(t, out, "Manifest for mainnet (2 addresses)")
	assert.Contains(t, out, "(not in catalogue)")
	assert.Contains(t, out, "Not deployed: vault-factory")
}

func TestMerkleRenderer(t *testing.T) {
	leaf := common.HexToHash("0x01")
	root := common.HexToHash("0x02")
	result := &usecase.BuildTreeResult{
		Root:     root,
		Leaves:   []common.Hash{leaf},
		Proofs:   map[string]merkle.ProofEntry{leaf.Hex(): {Root: root, Leaf: leaf}},
		Depth:    0,
		Distinct: 1,
		Written:  "proofs.json",
	}

	var buf bytes.Buffer
	require.NoError(t, NewMerkleRenderer(&buf, true).Render(result))

	out := buf.String()
	assert.Contains(t, out, "Root:   "+root.Hex())
	assert.Contains(t, out, "Leaves: 1 (1 distinct)")
	assert.Contains(t, out, leaf.Hex())
	assert.Contains(t, out, "Proofs written to proofs.json")
}

func TestMerkleRenderer_Check(t *testing.T) {
	root := common.HexToHash("0x02")
	var buf bytes.Buffer
	require.NoError(t, NewMerkleRenderer(&buf, false).RenderCheck(&usecase.ProofCheckResult{
		Roots:  []common.Hash{root},
		Checks: []usecase.ProofCheck{{Key: "0xaa", Valid: true}, {Key: "0xbb"}},
	}))

	out := buf.String()
	assert.Contains(t, out, "✗ 0xbb")
	assert.NotContains(t, out, "0xaa")
	assert.Contains(t, out, "1 of 2 proofs failed")
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "❌ Failed to read permissions: open x.yaml: no such file", FormatError("failed to read permissions: open x.yaml: no such file"))
	assert.Equal(t, "❌ ", FormatError(""))
}

func TestNodeRenderer(t *testing.T) {
	running := &domain.NodeStatus{
		Running:    true,
		PID:        4242,
		RPCURL:     "http://127.0.0.1:8545",
		RPCHealthy: true,
		ChainID:    1337,
		LogFile:    "/project/.vaultctl/node-8545.log",
	}

	var buf bytes.Buffer
	r := NewNodeRenderer(&buf)
	require.NoError(t, r.Render(running))
	out := buf.String()
	assert.Contains(t, out, "Status:   running (PID 4242)")
	assert.Contains(t, out, "RPC:      healthy")
	assert.Contains(t, out, "Chain ID: 1337")

	buf.Reset()
	require.NoError(t, r.Render(&domain.NodeStatus{Running: true, PID: 7, RPCURL: "http://127.0.0.1:8545", Error: "connection refused"}))
	assert.Contains(t, buf.String(), "RPC:      unreachable (connection refused)")

	buf.Reset()
	require.NoError(t, r.Render(&domain.NodeStatus{LogFile: "node.log"}))
	assert.Contains(t, buf.String(), "Status:   stopped")

	buf.Reset()
	require.NoError(t, r.RenderStarted(running))
	assert.Contains(t, buf.String(), "✅ Local node running (PID 4242)")

	buf.Reset()
	require.NoError(t, r.RenderStopped(&domain.NodeStatus{}))
	assert.Contains(t, buf.String(), "Local node is not running")
}

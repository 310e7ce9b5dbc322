package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
)

// ManifestRepository persists one manifest per network
type ManifestRepository interface {
	// Read returns the manifest or a domain.ManifestNotFoundError
	Read(ctx context.Context, network string) (*domain.Manifest, error)
	// Write replaces the stored manifest for m.Network
	Write(ctx context.Context, m *domain.Manifest) error
}

// RunLocker serializes deploy runs against the same network across processes
type RunLocker interface {
	Lock(ctx context.Context, network string) (unlock func() error, err error)
}

// ContractDeployer submits deployments to the ledger
type ContractDeployer interface {
	// Deploy links, encodes and sends the creation transaction, then waits for the receipt
	Deploy(ctx context.Context, req *domain.DeployRequest) (common.Address, error)
	// ReadAddress calls an address-returning getter on a deployed contract
	ReadAddress(ctx context.Context, artifact domain.ArtifactRef, address common.Address, field string) (common.Address, error)
}

// ContractVerifier submits source verification requests to the block explorer
type ContractVerifier interface {
	Verify(ctx context.Context, req *domain.VerificationRequest) error
	// Command returns the command line Verify would run
	Command(req *domain.VerificationRequest) []string
}

// ArtifactBuilder compiles the contracts before a deploy
type ArtifactBuilder interface {
	Build(ctx context.Context) error
}

// DeployConfirmer asks the operator to approve a live deploy
type DeployConfirmer interface {
	ConfirmDeploy(ctx context.Context, plan *DeploymentPlan) (bool, error)
}

// ComponentSelector lets the operator pick a subset of components
type ComponentSelector interface {
	SelectComponents(ctx context.Context, names []string) ([]string, error)
}

// PermissionSource reads the permission allow-list
type PermissionSource interface {
	ReadPermissions(ctx context.Context, path string) ([]merkle.Permission, error)
}

// ProofArtifactStore persists Merkle proof artifacts
type ProofArtifactStore interface {
	WriteProofs(ctx context.Context, path string, proofs map[string]merkle.ProofEntry) error
	ReadProofs(ctx context.Context, path string) (map[string]merkle.ProofEntry, error)
}

// NodeManager runs the local development node
type NodeManager interface {
	Start(ctx context.Context, node *domain.LocalNode) error
	Stop(ctx context.Context, node *domain.LocalNode) error
	Status(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Progress stages emitted by the use cases
const (
	StageDeploying  = "deploying"
	StageDeployed   = "deployed"
	StageDeployFail = "deploy_failed"
	StageVerifying  = "verifying"
	StageVerified   = "verified"
	StageBuilding   = "building"
)

package app

import (
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// Closer releases connections held by adapters
type Closer interface {
	Close()
}

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config    *config.RuntimeConfig
	Catalogue *domain.Catalogue

	// Shared dependencies
	Selector usecase.ComponentSelector

	// Use cases
	DeployComponents       *usecase.DeployComponents
	VerifyComponents       *usecase.VerifyComponents
	ShowManifest           *usecase.ShowManifest
	BuildPermissionTree    *usecase.BuildPermissionTree
	VerifyPermissionProofs *usecase.VerifyPermissionProofs
	ManageNode             *usecase.ManageNode

	// Adapters holding connections, closed when the command ends
	chain Closer
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	catalogue *domain.Catalogue,
	selector usecase.ComponentSelector,
	deployComponents *usecase.DeployComponents,
	verifyComponents *usecase.VerifyComponents,
	showManifest *usecase.ShowManifest,
	buildPermissionTree *usecase.BuildPermissionTree,
	verifyPermissionProofs *usecase.VerifyPermissionProofs,
	manageNode *usecase.ManageNode,
	chain Closer,
) (*App, error) {
	return &App{
		Config:                 cfg,
		Catalogue:              catalogue,
		Selector:               selector,
		DeployComponents:       deployComponents,
		VerifyComponents:       verifyComponents,
		ShowManifest:           showManifest,
		BuildPermissionTree:    buildPermissionTree,
		VerifyPermissionProofs: verifyPermissionProofs,
		ManageNode:             manageNode,
		chain:                  chain,
	}, nil
}

// Close releases the ledger connection if one was opened
func (a *App) Close() {
	if a.chain != nil {
		a.chain.Close()
	}
}

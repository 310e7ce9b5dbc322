package adapters

import (
	"github.com/fractional-company/vaultctl/internal/adapters/artifacts"
	"github.com/fractional-company/vaultctl/internal/adapters/catalogue"
	"github.com/fractional-company/vaultctl/internal/adapters/chain"
	"github.com/fractional-company/vaultctl/internal/adapters/forge"
	"github.com/fractional-company/vaultctl/internal/adapters/interactive"
	"github.com/fractional-company/vaultctl/internal/adapters/node"
	"github.com/fractional-company/vaultctl/internal/adapters/permissions"
	"github.com/fractional-company/vaultctl/internal/adapters/repository/manifests"
	"github.com/fractional-company/vaultctl/internal/adapters/verification"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/google/wire"
)

// StorageSet provides the manifest store and its run lock
var StorageSet = wire.NewSet(
	manifests.ProvideFileRepository,
	wire.Bind(new(usecase.ManifestRepository), new(*manifests.FileRepository)),

	manifests.ProvideFileLocker,
	wire.Bind(new(usecase.RunLocker), new(*manifests.FileLocker)),
)

// ChainSet provides artifact loading and ledger access
var ChainSet = wire.NewSet(
	artifacts.ProvideRepository,

	chain.ProvideDeployer,
	wire.Bind(new(usecase.ContractDeployer), new(*chain.Deployer)),
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.ProvideBuilder,
	wire.Bind(new(usecase.ArtifactBuilder), new(*forge.Builder)),

	verification.ProvideForgeVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.ForgeVerifier)),
)

// CatalogueSet provides the component catalogue
var CatalogueSet = wire.NewSet(
	catalogue.Provide,
)

// PermissionsSet provides the permission allow-list reader and proof store
var PermissionsSet = wire.NewSet(
	permissions.NewFileSource,
	wire.Bind(new(usecase.PermissionSource), new(*permissions.FileSource)),

	permissions.NewJSONProofStore,
	wire.Bind(new(usecase.ProofArtifactStore), new(*permissions.JSONProofStore)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ComponentSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.DeployConfirmer), new(*interactive.SelectorAdapter)),
)

// NodeSet provides the local node manager
var NodeSet = wire.NewSet(
	node.ProvideAnvilManager,
	wire.Bind(new(usecase.NodeManager), new(*node.AnvilManager)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	StorageSet,
	ChainSet,
	ForgeSet,
	CatalogueSet,
	PermissionsSet,
	InteractiveSet,
	NodeSet,
)

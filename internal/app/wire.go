//go:build wireinject
// +build wireinject

package app

import (
	"github.com/fractional-company/vaultctl/internal/adapters"
	"github.com/fractional-company/vaultctl/internal/adapters/chain"
	"github.com/fractional-company/vaultctl/internal/config"
	"github.com/fractional-company/vaultctl/internal/logging"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,
		wire.Bind(new(Closer), new(*chain.Deployer)),

		// Use cases
		usecase.NewSequencer,
		usecase.NewDeployComponents,
		usecase.NewVerifyComponents,
		usecase.NewShowManifest,
		usecase.NewBuildPermissionTree,
		usecase.NewVerifyPermissionProofs,
		usecase.NewManageNode,

		// App
		NewApp,
	)
	return nil, nil
}

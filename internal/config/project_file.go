package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/joho/godotenv"
)

// ProjectFileName is the project configuration file at the project root
const ProjectFileName = "vaultctl.toml"

// ProjectFile is the vaultctl.toml layout
type ProjectFile struct {
	ArtifactsDir   string                    `toml:"artifacts_dir"`
	ManifestsDir   string                    `toml:"manifests_dir"`
	ComponentsFile string                    `toml:"components_file"`
	Verify         VerifySection             `toml:"verify"`
	Networks       map[string]config.Network `toml:"networks"`
}

// VerifySection configures the verify command
type VerifySection struct {
	Concurrency int `toml:"concurrency"`
}

// loadEnvFiles loads .env then .env.local. Variables already set in the
// environment win.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			slog.Warn("failed to load env file", "path", envFile, "error", err)
		}
	}
}

// loadProjectFile parses vaultctl.toml, expanding ${VAR} references.
// Returns (nil, nil) when the file does not exist.
func loadProjectFile(projectRoot string) (*ProjectFile, error) {
	path := filepath.Join(projectRoot, ProjectFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var file ProjectFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFileName, err)
	}

	file.ArtifactsDir = os.ExpandEnv(file.ArtifactsDir)
	file.ManifestsDir = os.ExpandEnv(file.ManifestsDir)
	file.ComponentsFile = os.ExpandEnv(file.ComponentsFile)
	for name, network := range file.Networks {
		network.Name = name
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.ExplorerURL = os.ExpandEnv(network.ExplorerURL)
		network.EtherscanAPIKey = os.ExpandEnv(network.EtherscanAPIKey)
		file.Networks[name] = network
	}
	return &file, nil
}

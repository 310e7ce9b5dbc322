package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultArtifactsDir = "out"
	hardhatArtifactsDir = "artifacts"
	defaultManifestsDir = "deployments"
	defaultConcurrency  = 4
)

// projectMarkers identify a project root, in order of preference
var projectMarkers = []string{ProjectFileName, "foundry.toml", "hardhat.config.js"}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	loadEnvFiles(projectRoot)

	file, err := loadProjectFile(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		DryRun:         v.GetBool("dry_run"),
		PrivateKey:     v.GetString("private_key"),
		ConfigSource:   "defaults",
	}

	var fromFile ProjectFile
	if file != nil {
		fromFile = *file
		cfg.ConfigSource = ProjectFileName
	}

	cfg.ArtifactsDir = resolvePath(projectRoot, firstNonEmpty(
		v.GetString("artifacts_dir"), fromFile.ArtifactsDir, detectArtifactsDir(projectRoot)))
	cfg.ManifestsDir = resolvePath(projectRoot, firstNonEmpty(
		v.GetString("manifests_dir"), fromFile.ManifestsDir, defaultManifestsDir))
	cfg.ComponentsFile = firstNonEmpty(v.GetString("components_file"), fromFile.ComponentsFile)

	cfg.VerifyConcurrency = v.GetInt("concurrency")
	if cfg.VerifyConcurrency <= 0 {
		cfg.VerifyConcurrency = fromFile.Verify.Concurrency
	}
	if cfg.VerifyConcurrency <= 0 {
		cfg.VerifyConcurrency = defaultConcurrency
	}

	if networkName := v.GetString("network"); networkName != "" {
		network, err := ResolveNetwork(file, networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to the first directory
// holding vaultctl.toml, foundry.toml or hardhat.config.js
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRootFrom(dir)
}

func findProjectRootFrom(dir string) (string, error) {
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a contracts project (none of %s found)", strings.Join(projectMarkers, ", "))
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("VAULTCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	_ = v.BindEnv("private_key", "VAULTCTL_PRIVATE_KEY", "DEPLOYER_PRIVATE_KEY")

	// Set defaults
	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

// detectArtifactsDir prefers forge's out/ and falls back to hardhat's artifacts/
func detectArtifactsDir(projectRoot string) string {
	if _, err := os.Stat(filepath.Join(projectRoot, defaultArtifactsDir)); err == nil {
		return defaultArtifactsDir
	}
	if _, err := os.Stat(filepath.Join(projectRoot, hardhatArtifactsDir)); err == nil {
		return hardhatArtifactsDir
	}
	return defaultArtifactsDir
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

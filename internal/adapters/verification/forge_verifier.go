package verification

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	abienc "github.com/fractional-company/vaultctl/internal/adapters/abi"
	"github.com/fractional-company/vaultctl/internal/adapters/artifacts"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// Runner executes forge with args in dir and returns the combined output
type Runner func(ctx context.Context, dir string, args []string) ([]byte, error)

func runForge(ctx context.Context, dir string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "forge", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ForgeVerifier submits verification through forge verify-contract
type ForgeVerifier struct {
	projectRoot string
	network     *config.Network
	artifacts   *artifacts.Repository
	run         Runner
	log         *slog.Logger
}

// NewForgeVerifier creates a verifier; a nil run executes the forge binary
func NewForgeVerifier(projectRoot string, network *config.Network, repo *artifacts.Repository, run Runner, log *slog.Logger) *ForgeVerifier {
	if run == nil {
		run = runForge
	}
	return &ForgeVerifier{
		projectRoot: projectRoot,
		network:     network,
		artifacts:   repo,
		run:         run,
		log:         log.With("component", "ForgeVerifier"),
	}
}

// ProvideForgeVerifier creates the verifier from the runtime config
func ProvideForgeVerifier(cfg *config.RuntimeConfig, repo *artifacts.Repository, log *slog.Logger) *ForgeVerifier {
	return NewForgeVerifier(cfg.ProjectRoot, cfg.Network, repo, nil, log)
}

// Verify runs forge verify-contract for the request. A contract the explorer
// already knows counts as verified.
func (v *ForgeVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) error {
	args, err := v.buildArgs(req)
	if err != nil {
		return domain.VerificationFailedError{Component: req.Component, Reason: err.Error()}
	}

	v.log.Debug("running forge", "component", req.Component, "args", redact(args))
	output, err := v.run(ctx, v.projectRoot, args)
	out := string(output)
	if alreadyVerified(out) {
		return nil
	}
	if err != nil {
		return domain.VerificationFailedError{Component: req.Component, Reason: strings.TrimSpace(out)}
	}
	if strings.Contains(out, "successfully verified") || strings.Contains(out, "Pass - Verified") {
		return nil
	}
	return domain.VerificationFailedError{
		Component: req.Component,
		Reason:    "verification status unclear: " + strings.TrimSpace(out),
	}
}

// Command returns the forge command line, with the api key masked
func (v *ForgeVerifier) Command(req *domain.VerificationRequest) []string {
	args, err := v.buildArgs(req)
	if err != nil {
		return []string{"#", req.Component + ":", err.Error()}
	}
	return append([]string{"forge"}, redact(args)...)
}

func (v *ForgeVerifier) buildArgs(req *domain.VerificationRequest) ([]string, error) {
	artifact, err := v.artifacts.Load(req.Artifact)
	if err != nil {
		return nil, err
	}

	args := []string{"verify-contract", req.Address.Hex(), req.Artifact.String()}
	if v.network != nil && v.network.ChainID != 0 {
		args = append(args, "--chain-id", strconv.FormatUint(v.network.ChainID, 10))
	}

	encoded, err := abienc.EncodeConstructorArgs(&artifact.ABI, req.ConstructorArgs)
	if err != nil {
		return nil, err
	}
	if len(encoded) > 0 {
		args = append(args, "--constructor-args", hex.EncodeToString(encoded))
	}

	for _, name := range sortedLibraries(req) {
		src, ok := artifact.LibrarySource(name)
		if !ok {
			return nil, fmt.Errorf("%s does not link library %s", req.Artifact.Name, name)
		}
		args = append(args, "--libraries", fmt.Sprintf("%s:%s:%s", src, name, req.Libraries[name].Hex()))
	}

	if v.network != nil && v.network.ExplorerURL != "" {
		args = append(args, "--verifier-url", v.network.ExplorerURL)
	}
	if key := v.apiKey(); key != "" {
		args = append(args, "--etherscan-api-key", key)
	}
	return append(args, "--watch"), nil
}

func (v *ForgeVerifier) apiKey() string {
	if v.network != nil && v.network.EtherscanAPIKey != "" {
		return v.network.EtherscanAPIKey
	}
	return os.Getenv("ETHERSCAN_API_KEY")
}

func sortedLibraries(req *domain.VerificationRequest) []string {
	names := make([]string, 0, len(req.Libraries))
	for name := range req.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func alreadyVerified(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "already verified")
}

// redact masks the value following --etherscan-api-key
func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--etherscan-api-key" {
			out[i+1] = "***"
		}
	}
	return out
}

var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

// DefaultVerifyConcurrency bounds concurrent explorer calls when unset
const DefaultVerifyConcurrency = 4

// VerifyComponents replays a manifest against the block explorer
type VerifyComponents struct {
	config    *config.RuntimeConfig
	catalogue *domain.Catalogue
	manifests ManifestRepository
	verifier  ContractVerifier
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyComponents creates a new verify use case
func NewVerifyComponents(
	cfg *config.RuntimeConfig,
	catalogue *domain.Catalogue,
	manifests ManifestRepository,
	verifier ContractVerifier,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyComponents {
	return &VerifyComponents{
		config:    cfg,
		catalogue: catalogue,
		manifests: manifests,
		verifier:  verifier,
		progress:  progress,
		log:       log.With("component", "VerifyComponents"),
	}
}

// VerifyParams contains parameters for a verify run
type VerifyParams struct {
	Components  []string
	Group       string
	DumpCommand bool // Print the underlying forge commands without executing
}

// VerificationStatus is the outcome for one component
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusFailed     VerificationStatus = "failed"
	StatusUnresolved VerificationStatus = "unresolved"
	StatusDumped     VerificationStatus = "dumped"
)

// ComponentVerification is the per-component verification result
type ComponentVerification struct {
	Component string
	Address   common.Address
	Status    VerificationStatus
	Error     error
	Command   []string
}

// VerifyResult aggregates component results in input order
type VerifyResult struct {
	Network string
	Results []*ComponentVerification
}

// Success reports whether no component failed
func (r *VerifyResult) Success() bool {
	for _, res := range r.Results {
		if res.Error != nil {
			return false
		}
	}
	return true
}

// Count returns the number of results with the given status
func (r *VerifyResult) Count(status VerificationStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// ReplayOptions tune a replay
type ReplayOptions struct {
	Concurrency int
	DumpCommand bool
}

// Execute reads the network's manifest and verifies the selected components
func (uc *VerifyComponents) Execute(ctx context.Context, params VerifyParams) (*VerifyResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	components, err := SelectComponents(uc.catalogue, params.Components, params.Group)
	if err != nil {
		return nil, err
	}

	manifest, err := uc.manifests.Read(ctx, uc.config.Network.Name)
	if err != nil {
		return nil, err
	}

	return uc.Replay(ctx, manifest, components, ReplayOptions{
		Concurrency: uc.config.VerifyConcurrency,
		DumpCommand: params.DumpCommand,
	}), nil
}

// Replay verifies each component against the manifest. Components are
// independent: an unresolved reference or explorer rejection is recorded for
// that component and the others continue. Unresolved components never reach
// the verifier.
func (uc *VerifyComponents) Replay(ctx context.Context, manifest *domain.Manifest, components []*domain.Component, opts ReplayOptions) *VerifyResult {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultVerifyConcurrency
	}

	result := &VerifyResult{
		Network: manifest.Network,
		Results: make([]*ComponentVerification, len(components)),
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, comp := range components {
		g.Go(func() error {
			result.Results[i] = uc.verifyOne(ctx, manifest, comp, opts.DumpCommand, i+1, len(components))
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (uc *VerifyComponents) verifyOne(ctx context.Context, manifest *domain.Manifest, comp *domain.Component, dump bool, current, total int) *ComponentVerification {
	res := &ComponentVerification{Component: comp.Name}

	req, err := domain.NewVerificationRequest(comp, manifest)
	if err != nil {
		res.Status = StatusUnresolved
		res.Error = err
		res.Address, _ = manifest.Lookup(comp.Name)
		uc.log.Warn("skipping verification", "component", comp.Name, "error", err)
		return res
	}
	res.Address = req.Address

	if dump {
		res.Status = StatusDumped
		res.Command = uc.verifier.Command(req)
		return res
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageVerifying,
		Current: current,
		Total:   total,
		Message: comp.Name,
		Spinner: true,
	})

	if err := uc.verifier.Verify(ctx, req); err != nil {
		if !errors.Is(err, domain.ErrVerificationFailed) {
			err = domain.VerificationFailedError{Component: comp.Name, Reason: err.Error()}
		}
		res.Status = StatusFailed
		res.Error = err
		uc.log.Debug("verification failed", "component", comp.Name, "error", err)
	} else {
		res.Status = StatusVerified
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageVerified,
		Current:  current,
		Total:    total,
		Message:  comp.Name,
		Metadata: res,
	})
	return res
}

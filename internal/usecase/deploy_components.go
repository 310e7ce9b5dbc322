package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/samber/lo"
)

// DeployComponents plans and executes ordered deployments of catalogue components
type DeployComponents struct {
	config    *config.RuntimeConfig
	catalogue *domain.Catalogue
	manifests ManifestRepository
	locker    RunLocker
	sequencer *Sequencer
	confirmer DeployConfirmer
	builder   ArtifactBuilder
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployComponents creates a new deploy use case
func NewDeployComponents(
	cfg *config.RuntimeConfig,
	catalogue *domain.Catalogue,
	manifests ManifestRepository,
	locker RunLocker,
	sequencer *Sequencer,
	confirmer DeployConfirmer,
	builder ArtifactBuilder,
	progress ProgressSink,
	log *slog.Logger,
) *DeployComponents {
	return &DeployComponents{
		config:    cfg,
		catalogue: catalogue,
		manifests: manifests,
		locker:    locker,
		sequencer: sequencer,
		confirmer: confirmer,
		builder:   builder,
		progress:  progress,
		log:       log.With("component", "DeployComponents"),
	}
}

// DeployParams contains parameters for a deploy run
type DeployParams struct {
	Components  []string // explicit subset; empty with no Group means all
	Group       string
	DryRun      bool
	SkipConfirm bool
	Build       bool
}

// PlanStep is one component in deployment order
type PlanStep struct {
	Component    *domain.Component
	Dependencies []string
	// Source is the component the address is read from, set for derived components
	Source *domain.Component
}

// DeploymentPlan is the linearized deployment order for one run
type DeploymentPlan struct {
	Network string
	Steps   []*PlanStep
	// Full reports whether every catalogue component is deployed
	Full bool
	// External lists referenced components taken from the base manifest
	External []string
	// Base holds the addresses of components outside the run
	Base *domain.Manifest
}

// Names returns the component names in deployment order
func (p *DeploymentPlan) Names() []string {
	return lo.Map(p.Steps, func(s *PlanStep, _ int) string { return s.Component.Name })
}

// DeployResult contains the outcome of a deploy run
type DeployResult struct {
	Plan *DeploymentPlan
	// Manifest is the merged manifest as written, partial when Failure is set
	Manifest *domain.Manifest
	Deployed []domain.DeploymentRecord
	Failure  *domain.DeploymentRejectedError
	Success  bool
	DryRun   bool
}

// Plan resolves the selection, orders it and loads the base manifest for subset runs.
func (uc *DeployComponents) Plan(ctx context.Context, params DeployParams) (*DeploymentPlan, error) {
	components, err := SelectComponents(uc.catalogue, params.Components, params.Group)
	if err != nil {
		return nil, err
	}

	graph := NewDependencyGraph(components)
	ordered, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	network := networkName(uc.config)
	plan := &DeploymentPlan{
		Network: network,
		Full:    len(components) == len(uc.catalogue.Names()),
		Base:    domain.NewManifest(network),
	}

	external := graph.External()
	for _, comp := range ordered {
		step := &PlanStep{Component: comp, Dependencies: comp.Dependencies()}
		if comp.IsDerived() {
			step.Source, _ = uc.catalogue.Get(comp.Source.From)
		}
		plan.Steps = append(plan.Steps, step)
		plan.External = append(plan.External, external[comp.Name]...)
	}
	plan.External = lo.Uniq(plan.External)

	if plan.Full {
		return plan, nil
	}

	base, err := uc.manifests.Read(ctx, network)
	switch {
	case err == nil:
		plan.Base = base
	case errors.Is(err, domain.ErrManifestNotFound) && len(plan.External) == 0:
		uc.log.Debug("no base manifest, starting empty", "network", network)
	default:
		return nil, err
	}

	for _, step := range plan.Steps {
		for _, ref := range external[step.Component.Name] {
			if !plan.Base.Has(ref) {
				return nil, domain.UnresolvedReferenceError{Component: step.Component.Name, Reference: ref}
			}
		}
	}

	return plan, nil
}

// Execute runs the deploy. A failing component stops the run; the addresses
// deployed before it are still written to the manifest and reported in the
// result. A write error is returned together with the result.
func (uc *DeployComponents) Execute(ctx context.Context, params DeployParams) (*DeployResult, error) {
	if params.DryRun {
		plan, err := uc.Plan(ctx, params)
		if err != nil {
			return nil, err
		}
		return &DeployResult{Plan: plan, Success: true, DryRun: true}, nil
	}

	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	if params.Build && uc.builder != nil {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageBuilding, Message: "Building contracts", Spinner: true})
		if err := uc.builder.Build(ctx); err != nil {
			return nil, fmt.Errorf("failed to build contracts: %w", err)
		}
	}

	unlock, err := uc.locker.Lock(ctx, uc.config.Network.Name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			uc.log.Warn("failed to release run lock", "error", err)
		}
	}()

	plan, err := uc.Plan(ctx, params)
	if err != nil {
		return nil, err
	}

	if !params.SkipConfirm && !uc.config.NonInteractive && uc.confirmer != nil {
		ok, err := uc.confirmer.ConfirmDeploy(ctx, plan)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrDeployCancelled
		}
	}

	seq := uc.sequencer.Run(ctx, plan)
	result := &DeployResult{
		Plan:     plan,
		Manifest: seq.Manifest,
		Deployed: seq.Deployed,
		Failure:  seq.Failure,
		Success:  seq.Failure == nil,
	}

	if len(seq.Deployed) == 0 && seq.Failure != nil {
		// nothing reached the chain, keep the previous manifest
		return result, nil
	}
	if err := uc.manifests.Write(ctx, seq.Manifest); err != nil {
		return result, fmt.Errorf("failed to write manifest: %w", err)
	}

	return result, nil
}

// Sequencer deploys planned components one at a time, threading the
// addresses of earlier components into later ones.
type Sequencer struct {
	deployer ContractDeployer
	progress ProgressSink
	log      *slog.Logger
}

// NewSequencer creates a sequencer
func NewSequencer(deployer ContractDeployer, progress ProgressSink, log *slog.Logger) *Sequencer {
	return &Sequencer{
		deployer: deployer,
		progress: progress,
		log:      log.With("component", "Sequencer"),
	}
}

// SequenceResult holds the manifest built by a sequencer run
type SequenceResult struct {
	Manifest *domain.Manifest
	Deployed []domain.DeploymentRecord
	Failure  *domain.DeploymentRejectedError
}

// Run deploys every step of the plan in order. The manifest starts from the
// plan's base with the planned components removed. When a step fails, the base
// records of that step and every later one are put back since those contracts
// are still live.
func (s *Sequencer) Run(ctx context.Context, plan *DeploymentPlan) *SequenceResult {
	manifest := plan.Base.Without(plan.Names()...)
	manifest.Network = plan.Network
	result := &SequenceResult{Manifest: manifest}

	total := len(plan.Steps)
	for i, step := range plan.Steps {
		name := step.Component.Name
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageDeploying,
			Current: i + 1,
			Total:   total,
			Message: name,
			Spinner: true,
		})

		addr, err := s.apply(ctx, step, manifest)
		if err == nil {
			err = manifest.Record(name, addr)
		}
		if err != nil {
			s.log.Error("deployment failed", "component", name, "error", err)
			result.Failure = &domain.DeploymentRejectedError{Component: name, Err: err}
			s.progress.OnProgress(ctx, ProgressEvent{
				Stage:    StageDeployFail,
				Current:  i + 1,
				Total:    total,
				Message:  name,
				Metadata: result.Failure,
			})
			restoreUnreached(manifest, plan.Base, plan.Steps[i:])
			return result
		}

		records := manifest.Records()
		record := records[len(records)-1]
		result.Deployed = append(result.Deployed, record)
		s.log.Debug("component deployed", "component", name, "address", addr.Hex())
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageDeployed,
			Current:  i + 1,
			Total:    total,
			Message:  name,
			Metadata: record,
		})
	}

	return result
}

func restoreUnreached(manifest, base *domain.Manifest, steps []*PlanStep) {
	for _, step := range steps {
		name := step.Component.Name
		if addr, ok := base.Lookup(name); ok && !manifest.Has(name) {
			_ = manifest.Record(name, addr)
		}
	}
}

func (s *Sequencer) apply(ctx context.Context, step *PlanStep, manifest *domain.Manifest) (common.Address, error) {
	comp := step.Component
	if comp.IsDerived() {
		from, ok := manifest.Lookup(comp.Source.From)
		if !ok {
			return common.Address{}, domain.UnresolvedReferenceError{Component: comp.Name, Reference: comp.Source.From}
		}
		if step.Source == nil {
			return common.Address{}, fmt.Errorf("%w: source %s of %s", domain.ErrUnknownComponent, comp.Source.From, comp.Name)
		}
		return s.deployer.ReadAddress(ctx, step.Source.Artifact, from, comp.Source.Field)
	}

	args, libs, err := domain.ResolveArgs(comp, manifest)
	if err != nil {
		return common.Address{}, err
	}
	return s.deployer.Deploy(ctx, &domain.DeployRequest{
		Component:       comp.Name,
		Artifact:        comp.Artifact,
		ConstructorArgs: args,
		Libraries:       libs,
	})
}

// SelectComponents resolves explicit names and a group into catalogue
// components. With neither, every component is selected.
func SelectComponents(catalogue *domain.Catalogue, names []string, group string) ([]*domain.Component, error) {
	selected := append([]string(nil), names...)
	if group != "" {
		members, ok := catalogue.Group(group)
		if !ok {
			return nil, fmt.Errorf("unknown group %q (available: %v)", group, catalogue.GroupNames())
		}
		selected = append(selected, members...)
	}
	if len(selected) == 0 {
		return catalogue.All(), nil
	}
	return catalogue.Select(selected)
}

func networkName(cfg *config.RuntimeConfig) string {
	if cfg.Network == nil {
		return ""
	}
	return cfg.Network.Name
}

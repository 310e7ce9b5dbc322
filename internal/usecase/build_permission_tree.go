package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
)

// BuildPermissionTree builds the permission Merkle tree and writes its proof artifact
type BuildPermissionTree struct {
	source PermissionSource
	store  ProofArtifactStore
	log    *slog.Logger
}

// NewBuildPermissionTree creates a new permission tree use case
func NewBuildPermissionTree(source PermissionSource, store ProofArtifactStore, log *slog.Logger) *BuildPermissionTree {
	return &BuildPermissionTree{
		source: source,
		store:  store,
		log:    log.With("component", "BuildPermissionTree"),
	}
}

// BuildTreeParams contains parameters for building a tree
type BuildTreeParams struct {
	InputPath  string
	OutputPath string // empty skips writing
	SortLeaves bool
}

// BuildTreeResult contains the built tree
type BuildTreeResult struct {
	Root     common.Hash
	Leaves   []common.Hash
	Proofs   map[string]merkle.ProofEntry
	Written  string
	Depth    int
	Distinct int
}

// Execute reads the permissions, builds the tree and writes the proofs
func (uc *BuildPermissionTree) Execute(ctx context.Context, params BuildTreeParams) (*BuildTreeResult, error) {
	perms, err := uc.source.ReadPermissions(ctx, params.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions: %w", err)
	}

	leaves, err := merkle.Leaves(perms)
	if err != nil {
		return nil, err
	}

	tree, err := merkle.New(leaves, merkle.Options{SortLeaves: params.SortLeaves})
	if err != nil {
		return nil, err
	}

	proofs := tree.Artifact()
	if len(proofs) != len(leaves) {
		uc.log.Warn("duplicate permissions in input", "leaves", len(leaves), "distinct", len(proofs))
	}

	result := &BuildTreeResult{
		Root:     tree.Root(),
		Leaves:   tree.Leaves(),
		Proofs:   proofs,
		Depth:    tree.Depth(),
		Distinct: len(proofs),
	}

	if params.OutputPath != "" {
		if err := uc.store.WriteProofs(ctx, params.OutputPath, proofs); err != nil {
			return nil, fmt.Errorf("failed to write proofs: %w", err)
		}
		result.Written = params.OutputPath
	}

	return result, nil
}

// VerifyPermissionProofs checks every entry of a proof artifact
type VerifyPermissionProofs struct {
	store ProofArtifactStore
}

// NewVerifyPermissionProofs creates a new proof check use case
func NewVerifyPermissionProofs(store ProofArtifactStore) *VerifyPermissionProofs {
	return &VerifyPermissionProofs{store: store}
}

// ProofCheck is the outcome for one artifact entry
type ProofCheck struct {
	Key   string
	Leaf  common.Hash
	Valid bool
}

// ProofCheckResult aggregates the checks of one artifact
type ProofCheckResult struct {
	Roots  []common.Hash
	Checks []ProofCheck
}

// Valid reports whether every entry verified against a single shared root
func (r *ProofCheckResult) Valid() bool {
	if len(r.Roots) != 1 {
		return false
	}
	for _, c := range r.Checks {
		if !c.Valid {
			return false
		}
	}
	return true
}

// Execute reads the artifact and recomputes each entry's root from its proof
func (uc *VerifyPermissionProofs) Execute(ctx context.Context, path string) (*ProofCheckResult, error) {
	proofs, err := uc.store.ReadProofs(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &ProofCheckResult{}
	roots := make(map[common.Hash]bool)
	for _, key := range sortedKeys(proofs) {
		entry := proofs[key]
		if !roots[entry.Root] {
			roots[entry.Root] = true
			result.Roots = append(result.Roots, entry.Root)
		}
		result.Checks = append(result.Checks, ProofCheck{
			Key:   key,
			Leaf:  entry.Leaf,
			Valid: strings.EqualFold(key, entry.Leaf.Hex()) && merkle.VerifyProof(entry.Proofs, entry.Leaf, entry.Root),
		})
	}
	return result, nil
}

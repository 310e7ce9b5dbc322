package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
)

// ShowManifest reads the stored manifest of the configured network
type ShowManifest struct {
	config    *config.RuntimeConfig
	catalogue *domain.Catalogue
	manifests ManifestRepository
}

// NewShowManifest creates a new show manifest use case
func NewShowManifest(cfg *config.RuntimeConfig, catalogue *domain.Catalogue, manifests ManifestRepository) *ShowManifest {
	return &ShowManifest{
		config:    cfg,
		catalogue: catalogue,
		manifests: manifests,
	}
}

// ManifestEntry is one row of the manifest view
type ManifestEntry struct {
	Name     string
	Address  common.Address
	Artifact string // empty for names outside the catalogue
}

// ManifestView is a manifest joined with the catalogue
type ManifestView struct {
	Network string
	Entries []ManifestEntry
	// Missing lists catalogue components without an address
	Missing []string
}

// Execute loads and annotates the manifest
func (uc *ShowManifest) Execute(ctx context.Context) (*ManifestView, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	manifest, err := uc.manifests.Read(ctx, uc.config.Network.Name)
	if err != nil {
		return nil, err
	}

	view := &ManifestView{Network: manifest.Network}
	addresses := manifest.Addresses()
	for _, name := range sortedKeys(addresses) {
		entry := ManifestEntry{Name: name, Address: addresses[name]}
		if comp, ok := uc.catalogue.Get(name); ok {
			entry.Artifact = comp.Artifact.String()
		}
		view.Entries = append(view.Entries, entry)
	}
	for _, name := range uc.catalogue.Names() {
		if _, ok := addresses[name]; !ok {
			view.Missing = append(view.Missing, name)
		}
	}

	return view, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package manifests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// FileRepository stores one manifest per network as <dir>/<network>.json
type FileRepository struct {
	dir   string
	known map[string]bool
	log   *slog.Logger
}

// NewFileRepository creates a manifest repository rooted at dir. Keys read
// back that are not in known are reported with a warning; a nil known
// disables the check.
func NewFileRepository(dir string, known []string, log *slog.Logger) *FileRepository {
	r := &FileRepository{
		dir: dir,
		log: log.With("component", "ManifestRepository"),
	}
	if known != nil {
		r.known = make(map[string]bool, len(known))
		for _, name := range known {
			r.known[name] = true
		}
	}
	return r
}

// ProvideFileRepository creates the repository from the runtime config
func ProvideFileRepository(cfg *config.RuntimeConfig, catalogue *domain.Catalogue, log *slog.Logger) *FileRepository {
	return NewFileRepository(cfg.ManifestsDir, catalogue.Names(), log)
}

// Unknown returns the names in m that are not catalogue components, sorted
func (r *FileRepository) Unknown(m *domain.Manifest) []string {
	if r.known == nil {
		return nil
	}
	var unknown []string
	for _, rec := range m.Records() {
		if !r.known[rec.Name] {
			unknown = append(unknown, rec.Name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Path returns the manifest file of a network
func (r *FileRepository) Path(network string) string {
	return filepath.Join(r.dir, network+".json")
}

// Read loads the manifest of a network. Keys written by the hardhat scripts
// (VaultRegistry, Clones, FERC1155, ...) are mapped to component names.
func (r *FileRepository) Read(ctx context.Context, network string) (*domain.Manifest, error) {
	path := r.Path(network)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ManifestNotFoundError{Network: network}
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	addresses := make(map[string]common.Address, len(raw))
	for key, value := range raw {
		if !addressPattern.MatchString(value) {
			return nil, fmt.Errorf("%w: %s in %s: %q", domain.ErrInvalidAddress, key, path, value)
		}
		name := key
		if mapped, ok := domain.LegacyManifestKeys[key]; ok {
			name = mapped
		}
		addr := common.HexToAddress(value)
		if existing, ok := addresses[name]; ok && existing != addr {
			return nil, fmt.Errorf("manifest %s has conflicting addresses for %s", path, name)
		}
		addresses[name] = addr
	}

	m := domain.ManifestFromAddresses(network, addresses)
	if unknown := r.Unknown(m); len(unknown) > 0 {
		r.log.Warn("manifest has entries outside the catalogue, they are kept as is", "network", network, "keys", unknown)
	}
	r.log.Debug("manifest loaded", "network", network, "entries", len(addresses))
	return m, nil
}

// Write replaces the manifest of m.Network. Keys are sorted and the file is
// swapped in with a rename.
func (r *FileRepository) Write(ctx context.Context, m *domain.Manifest) error {
	if m.Network == "" {
		return fmt.Errorf("manifest has no network")
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifests directory: %w", err)
	}

	out := make(map[string]string, m.Len())
	for name, addr := range m.Addresses() {
		out[name] = addr.Hex()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := r.Path(m.Network)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	r.log.Debug("manifest written", "network", m.Network, "path", path, "entries", m.Len())
	return nil
}

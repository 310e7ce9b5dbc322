package permissions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fractional-company/vaultctl/internal/domain/merkle"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// JSONProofStore keeps proof artifacts as indented JSON keyed by leaf hex
type JSONProofStore struct{}

// NewJSONProofStore creates a proof store
func NewJSONProofStore() *JSONProofStore {
	return &JSONProofStore{}
}

// WriteProofs writes the artifact atomically
func (s *JSONProofStore) WriteProofs(ctx context.Context, path string, proofs map[string]merkle.ProofEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(proofs, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal proofs: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write proofs: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save proofs: %w", err)
	}
	return nil
}

// ReadProofs loads an artifact written by WriteProofs
func (s *JSONProofStore) ReadProofs(ctx context.Context, path string) (map[string]merkle.ProofEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proofs: %w", err)
	}
	var proofs map[string]merkle.ProofEntry
	if err := json.Unmarshal(data, &proofs); err != nil {
		return nil, fmt.Errorf("failed to parse proofs %s: %w", path, err)
	}
	return proofs, nil
}

var _ usecase.ProofArtifactStore = (*JSONProofStore)(nil)

package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryManifests is an in-memory ManifestRepository
type memoryManifests struct {
	mu      sync.Mutex
	stored  map[string]map[string]common.Address
	writes  int
	readErr error
	writeFn func(*domain.Manifest) error
}

func newMemoryManifests() *memoryManifests {
	return &memoryManifests{stored: make(map[string]map[string]common.Address)}
}

func (m *memoryManifests) Read(ctx context.Context, network string) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	addrs, ok := m.stored[network]
	if !ok {
		return nil, domain.ManifestNotFoundError{Network: network}
	}
	return domain.ManifestFromAddresses(network, addrs), nil
}

func (m *memoryManifests) Write(ctx context.Context, manifest *domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeFn != nil {
		if err := m.writeFn(manifest); err != nil {
			return err
		}
	}
	m.stored[manifest.Network] = manifest.Addresses()
	return nil
}

type fakeLocker struct {
	locked   []string
	released int
	err      error
}

func (l *fakeLocker) Lock(ctx context.Context, network string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, network)
	return func() error {
		l.released++
		return nil
	}, nil
}

// fakeDeployer hands out sequential addresses and records every request
type fakeDeployer struct {
	deployFunc func(*domain.DeployRequest) (common.Address, error)
	readFunc   func(domain.ArtifactRef, common.Address, string) (common.Address, error)
	requests   []*domain.DeployRequest
	reads      []string
	next       byte
}

func (d *fakeDeployer) Deploy(ctx context.Context, req *domain.DeployRequest) (common.Address, error) {
	d.requests = append(d.requests, req)
	if d.deployFunc != nil {
		return d.deployFunc(req)
	}
	d.next++
	return common.BytesToAddress([]byte{0xde, d.next}), nil
}

func (d *fakeDeployer) ReadAddress(ctx context.Context, artifact domain.ArtifactRef, address common.Address, field string) (common.Address, error) {
	d.reads = append(d.reads, field)
	if d.readFunc != nil {
		return d.readFunc(artifact, address, field)
	}
	d.next++
	return common.BytesToAddress([]byte{0xad, d.next}), nil
}

func (d *fakeDeployer) deployedNames() []string {
	names := make([]string, 0, len(d.requests))
	for _, req := range d.requests {
		names = append(names, req.Component)
	}
	return names
}

type fakeVerifier struct {
	mu         sync.Mutex
	verifyFunc func(*domain.VerificationRequest) error
	calls      []string
}

func (v *fakeVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) error {
	v.mu.Lock()
	v.calls = append(v.calls, req.Component)
	v.mu.Unlock()
	if v.verifyFunc != nil {
		return v.verifyFunc(req)
	}
	return nil
}

func (v *fakeVerifier) Command(req *domain.VerificationRequest) []string {
	return []string{"forge", "verify-contract", req.Address.Hex(), req.Artifact.String()}
}

type fakeConfirmer struct {
	answer bool
	asked  int
}

func (c *fakeConfirmer) ConfirmDeploy(ctx context.Context, plan *DeploymentPlan) (bool, error) {
	c.asked++
	return c.answer, nil
}

type fakePermissions struct {
	perms []merkle.Permission
	err   error
}

func (p *fakePermissions) ReadPermissions(ctx context.Context, path string) ([]merkle.Permission, error) {
	return p.perms, p.err
}

type memoryProofs struct {
	written map[string]map[string]merkle.ProofEntry
}

func (s *memoryProofs) WriteProofs(ctx context.Context, path string, proofs map[string]merkle.ProofEntry) error {
	if s.written == nil {
		s.written = make(map[string]map[string]merkle.ProofEntry)
	}
	s.written[path] = proofs
	return nil
}

func (s *memoryProofs) ReadProofs(ctx context.Context, path string) (map[string]merkle.ProofEntry, error) {
	proofs, ok := s.written[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return proofs, nil
}

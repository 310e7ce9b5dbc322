package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullManifest(network string) *domain.Manifest {
	m := domain.NewManifest(network)
	for i, name := range domain.DefaultCatalogue().Names() {
		_ = m.Record(name, common.BytesToAddress([]byte{0x10, byte(i + 1)}))
	}
	return m
}

func newVerifyUseCase(verifier *fakeVerifier, manifests *memoryManifests) *VerifyComponents {
	cfg := &config.RuntimeConfig{
		Network:           &config.Network{Name: "rinkeby", ChainID: 4},
		VerifyConcurrency: 3,
	}
	return NewVerifyComponents(cfg, domain.DefaultCatalogue(), manifests, verifier, NopProgress{}, testLogger())
}

func TestVerifyComponents_AllVerified(t *testing.T) {
	verifier := &fakeVerifier{}
	manifests := newMemoryManifests()
	manifests.stored["rinkeby"] = fullManifest("rinkeby").Addresses()

	result, err := newVerifyUseCase(verifier, manifests).Execute(context.Background(), VerifyParams{})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 11, result.Count(StatusVerified))
	assert.Len(t, verifier.calls, 11)

	// results follow input order regardless of completion order
	names := make([]string, len(result.Results))
	for i, r := range result.Results {
		names[i] = r.Component
	}
	assert.Equal(t, domain.DefaultCatalogue().Names(), names)
}

func TestVerifyComponents_MissingRegistry(t *testing.T) {
	verifier := &fakeVerifier{}
	uc := newVerifyUseCase(verifier, newMemoryManifests())

	m := fullManifest("rinkeby").Without(domain.ComponentVaultRegistry)
	supply, _ := domain.DefaultCatalogue().Get(domain.ComponentSupply)
	transfer, _ := domain.DefaultCatalogue().Get(domain.ComponentTransfer)

	result := uc.Replay(context.Background(), m, []*domain.Component{supply, transfer}, ReplayOptions{})
	require.Len(t, result.Results, 2)

	assert.Equal(t, StatusUnresolved, result.Results[0].Status)
	assert.ErrorIs(t, result.Results[0].Error, domain.ErrUnresolvedReference)
	assert.Equal(t, StatusVerified, result.Results[1].Status)

	assert.Equal(t, []string{domain.ComponentTransfer}, verifier.calls, "no remote call for the unresolved component")
	assert.False(t, result.Success())
}

func TestVerifyComponents_FailuresAreIsolated(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFunc: func(req *domain.VerificationRequest) error {
			switch req.Component {
			case domain.ComponentBuyout:
				return errors.New("bytecode mismatch")
			case domain.ComponentMetadata:
				return domain.VerificationFailedError{Component: req.Component, Reason: "rate limited"}
			}
			return nil
		},
	}
	manifests := newMemoryManifests()
	manifests.stored["rinkeby"] = fullManifest("rinkeby").Addresses()

	result, err := newVerifyUseCase(verifier, manifests).Execute(context.Background(), VerifyParams{})
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, 2, result.Count(StatusFailed))
	assert.Equal(t, 9, result.Count(StatusVerified))

	for _, r := range result.Results {
		if r.Status != StatusFailed {
			continue
		}
		var failed domain.VerificationFailedError
		require.ErrorAs(t, r.Error, &failed)
		assert.Equal(t, r.Component, failed.Component)
	}
}

func TestVerifyComponents_Idempotent(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFunc: func(req *domain.VerificationRequest) error {
			if req.Component == domain.ComponentSupply {
				return errors.New("already verified with different settings")
			}
			return nil
		},
	}
	manifests := newMemoryManifests()
	manifests.stored["rinkeby"] = fullManifest("rinkeby").Without(domain.ComponentTransfer).Addresses()
	uc := newVerifyUseCase(verifier, manifests)

	outcome := func() map[string]VerificationStatus {
		result, err := uc.Execute(context.Background(), VerifyParams{})
		require.NoError(t, err)
		out := make(map[string]VerificationStatus)
		for _, r := range result.Results {
			out[r.Component] = r.Status
		}
		return out
	}

	first := outcome()
	second := outcome()
	assert.Equal(t, first, second)
	assert.Equal(t, StatusUnresolved, first[domain.ComponentBuyout])
	assert.Equal(t, StatusFailed, first[domain.ComponentSupply])
}

func TestVerifyComponents_BoundedConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	verifier := &fakeVerifier{
		verifyFunc: func(*domain.VerificationRequest) error {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return nil
		},
	}
	uc := newVerifyUseCase(verifier, newMemoryManifests())

	result := uc.Replay(context.Background(), fullManifest("rinkeby"), domain.DefaultCatalogue().All(), ReplayOptions{Concurrency: 2})
	assert.True(t, result.Success())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestVerifyComponents_DumpCommand(t *testing.T) {
	verifier := &fakeVerifier{}
	manifests := newMemoryManifests()
	manifests.stored["rinkeby"] = fullManifest("rinkeby").Addresses()

	result, err := newVerifyUseCase(verifier, manifests).Execute(context.Background(), VerifyParams{
		Components:  []string{domain.ComponentSupply},
		DumpCommand: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, StatusDumped, result.Results[0].Status)
	assert.Equal(t, "forge", result.Results[0].Command[0])
	assert.Empty(t, verifier.calls)
}

func TestVerifyComponents_ManifestNotFound(t *testing.T) {
	_, err := newVerifyUseCase(&fakeVerifier{}, newMemoryManifests()).Execute(context.Background(), VerifyParams{})
	assert.ErrorIs(t, err, domain.ErrManifestNotFound)
	assert.Equal(t, fmt.Sprintf("no deployment manifest found for network %q", "rinkeby"), err.Error())
}

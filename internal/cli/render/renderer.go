package render

import (
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*usecase.DeployResult]    = (*DeployRenderer)(nil)
	_ Renderer[*usecase.VerifyResult]    = (*VerifyRenderer)(nil)
	_ Renderer[*usecase.ManifestView]    = (*ManifestRenderer)(nil)
	_ Renderer[*usecase.BuildTreeResult] = (*MerkleRenderer)(nil)
	_ Renderer[*domain.NodeStatus]       = (*NodeRenderer)(nil)
)

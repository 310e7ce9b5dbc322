package usecase

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPermission(hex string) merkle.Permission {
	h := common.HexToHash(hex)
	return merkle.Permission{Hash: &h}
}

func TestBuildPermissionTree(t *testing.T) {
	source := &fakePermissions{perms: []merkle.Permission{
		rawPermission("0x01"),
		rawPermission("0x02"),
		rawPermission("0x03"),
	}}
	store := &memoryProofs{}
	uc := NewBuildPermissionTree(source, store, testLogger())

	result, err := uc.Execute(context.Background(), BuildTreeParams{InputPath: "perms.yaml", OutputPath: "proofs.json"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Depth)
	assert.Equal(t, 3, result.Distinct)
	assert.Equal(t, "proofs.json", result.Written)

	written := store.written["proofs.json"]
	require.Len(t, written, 3)
	entry := written[common.HexToHash("0x02").Hex()]
	assert.Len(t, entry.Proofs, 2)
	assert.Equal(t, result.Root, entry.Root)

	check, err := NewVerifyPermissionProofs(store).Execute(context.Background(), "proofs.json")
	require.NoError(t, err)
	assert.True(t, check.Valid())
	assert.Len(t, check.Checks, 3)
}

func TestBuildPermissionTree_Empty(t *testing.T) {
	uc := NewBuildPermissionTree(&fakePermissions{}, &memoryProofs{}, testLogger())
	_, err := uc.Execute(context.Background(), BuildTreeParams{InputPath: "perms.yaml"})
	assert.ErrorIs(t, err, merkle.ErrEmptyTree)
}

func TestVerifyPermissionProofs_DetectsTampering(t *testing.T) {
	store := &memoryProofs{}
	uc := NewBuildPermissionTree(&fakePermissions{perms: []merkle.Permission{
		rawPermission("0x0a"),
		rawPermission("0x0b"),
	}}, store, testLogger())

	_, err := uc.Execute(context.Background(), BuildTreeParams{InputPath: "in", OutputPath: "out"})
	require.NoError(t, err)

	key := common.HexToHash("0x0a").Hex()
	entry := store.written["out"][key]
	entry.Proofs = []common.Hash{common.HexToHash("0x0c")}
	store.written["out"][key] = entry

	check, err := NewVerifyPermissionProofs(store).Execute(context.Background(), "out")
	require.NoError(t, err)
	assert.False(t, check.Valid())
}

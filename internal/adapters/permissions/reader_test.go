package permissions

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawHash = "0x1f8c4d1b5c3a9e8f7d6c5b4a39281706f5e4d3c2b1a0998877665544332211ff"

func TestParse(t *testing.T) {
	t.Run("yaml list of mixed items", func(t *testing.T) {
		perms, err := Parse([]byte(`
- ` + rawHash + `
- module: 0x5B38Da6a701c568545dCfcB03FcB875f56beddC4
  target: 0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2
  selector: "0xa9059cbb"
`))
		require.NoError(t, err)
		require.Len(t, perms, 2)

		require.NotNil(t, perms[0].Hash)
		assert.Equal(t, common.HexToHash(rawHash), *perms[0].Hash)

		assert.Nil(t, perms[1].Hash)
		assert.Equal(t, common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"), perms[1].Module)
		assert.Equal(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, perms[1].Selector)
	})

	t.Run("json wrapped in permissions key", func(t *testing.T) {
		perms, err := Parse([]byte(`{"permissions": ["` + rawHash + `"]}`))
		require.NoError(t, err)
		require.Len(t, perms, 1)
	})

	t.Run("order preserved", func(t *testing.T) {
		a := "0x" + "aa" + common.Bytes2Hex(make([]byte, 31))
		b := "0x" + "bb" + common.Bytes2Hex(make([]byte, 31))
		perms, err := Parse([]byte(`["` + b + `", "` + a + `"]`))
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash(b), *perms[0].Hash)
		assert.Equal(t, common.HexToHash(a), *perms[1].Hash)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{name: "short hash", doc: `["0x1234"]`},
		{name: "not hex", doc: `["permission"]`},
		{name: "bad selector", doc: `[{"module": "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", "target": "0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2", "selector": "0xa9"}]`},
		{name: "bad module", doc: `[{"module": "0x12", "target": "0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2", "selector": "0xa9059cbb"}]`},
		{name: "scalar document", doc: `42`},
		{name: "empty", doc: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestFileSource_ReadPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permission.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- "+rawHash+"\n"), 0644))

	src := NewFileSource(slog.New(slog.NewTextHandler(io.Discard, nil)))
	perms, err := src.ReadPermissions(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, perms, 1)

	_, err = src.ReadPermissions(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestJSONProofStore(t *testing.T) {
	ctx := context.Background()
	leaf := common.HexToHash(rawHash)
	root := common.HexToHash("0x01")
	proofs := map[string]merkle.ProofEntry{
		leaf.Hex(): {Root: root, Leaf: leaf, Proofs: []common.Hash{common.HexToHash("0x02")}},
	}

	path := filepath.Join(t.TempDir(), "output", "permission.json")
	store := NewJSONProofStore()
	require.NoError(t, store.WriteProofs(ctx, path, proofs))

	got, err := store.ReadProofs(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, proofs, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

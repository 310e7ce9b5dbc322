package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(s string) common.Hash {
	return crypto.Keccak256Hash([]byte(s))
}

func TestNew(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := New(nil, Options{})
		assert.ErrorIs(t, err, ErrEmptyTree)
	})

	t.Run("single leaf is the root", func(t *testing.T) {
		a := leaf("a")
		tree, err := New([]common.Hash{a}, Options{})
		require.NoError(t, err)
		assert.Equal(t, a, tree.Root())

		proof, err := tree.Proof(a)
		require.NoError(t, err)
		assert.Empty(t, proof)
		assert.True(t, VerifyProof(proof, a, tree.Root()))
	})

	t.Run("two leaves", func(t *testing.T) {
		a, b := leaf("a"), leaf("b")
		tree, err := New([]common.Hash{a, b}, Options{})
		require.NoError(t, err)
		assert.Equal(t, HashPair(a, b), tree.Root())
		assert.Equal(t, 1, tree.Depth())
	})

	t.Run("odd node is carried up", func(t *testing.T) {
		a, b, c := leaf("a"), leaf("b"), leaf("c")
		tree, err := New([]common.Hash{a, b, c}, Options{})
		require.NoError(t, err)

		assert.Equal(t, HashPair(HashPair(a, b), c), tree.Root())

		proofB, err := tree.Proof(b)
		require.NoError(t, err)
		assert.Equal(t, []common.Hash{a, c}, proofB)
		assert.True(t, VerifyProof(proofB, b, tree.Root()))

		proofC, err := tree.Proof(c)
		require.NoError(t, err)
		assert.Equal(t, []common.Hash{HashPair(a, b)}, proofC)
		assert.True(t, VerifyProof(proofC, c, tree.Root()))
	})
}

func TestProofsVerify(t *testing.T) {
	for n := 1; n <= 9; n++ {
		leaves := make([]common.Hash, n)
		for i := range leaves {
			leaves[i] = leaf(string(rune('a' + i)))
		}
		tree, err := New(leaves, Options{})
		require.NoError(t, err)

		for i, l := range leaves {
			proof, err := tree.Proof(l)
			require.NoError(t, err)
			assert.True(t, VerifyProof(proof, l, tree.Root()), "n=%d leaf=%d", n, i)
		}
	}
}

func TestVerifyProofRejectsTampering(t *testing.T) {
	leaves := make([]common.Hash, 7)
	for i := range leaves {
		leaves[i] = leaf(string(rune('a' + i)))
	}
	tree, err := New(leaves, Options{})
	require.NoError(t, err)

	for li, l := range leaves {
		proof, err := tree.Proof(l)
		require.NoError(t, err)
		if li < 6 {
			require.Len(t, proof, 3)
		}

		for i := range proof {
			tampered := append([]common.Hash(nil), proof...)
			tampered[i][31] ^= 0x01
			assert.False(t, VerifyProof(tampered, l, tree.Root()), "leaf=%d sibling=%d", li, i)
		}
	}

	proof, err := tree.Proof(leaves[3])
	require.NoError(t, err)

	t.Run("wrong leaf", func(t *testing.T) {
		assert.False(t, VerifyProof(proof, leaf("z"), tree.Root()))
	})

	t.Run("wrong root", func(t *testing.T) {
		assert.False(t, VerifyProof(proof, leaves[3], leaf("root")))
	})

	t.Run("dropped sibling", func(t *testing.T) {
		assert.False(t, VerifyProof(proof[:len(proof)-1], leaves[3], tree.Root()))
	})
}

func TestUnknownLeaf(t *testing.T) {
	tree, err := New([]common.Hash{leaf("a"), leaf("b")}, Options{})
	require.NoError(t, err)

	_, err = tree.Proof(leaf("c"))
	require.ErrorIs(t, err, ErrUnknownLeaf)

	var unknown UnknownLeafError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, leaf("c"), unknown.Leaf)
}

func TestLeafOrder(t *testing.T) {
	a, b, c, d := leaf("a"), leaf("b"), leaf("c"), leaf("d")

	base, err := New([]common.Hash{a, b, c, d}, Options{})
	require.NoError(t, err)

	t.Run("swap within a pair keeps the root", func(t *testing.T) {
		swapped, err := New([]common.Hash{b, a, d, c}, Options{})
		require.NoError(t, err)
		assert.Equal(t, base.Root(), swapped.Root())
	})

	t.Run("sorted leaves ignore input order", func(t *testing.T) {
		first, err := New([]common.Hash{a, b, c, d}, Options{SortLeaves: true})
		require.NoError(t, err)
		second, err := New([]common.Hash{d, b, a, c}, Options{SortLeaves: true})
		require.NoError(t, err)
		assert.Equal(t, first.Root(), second.Root())
	})
}

func TestDuplicateLeaves(t *testing.T) {
	a, b := leaf("a"), leaf("b")
	tree, err := New([]common.Hash{a, b, a}, Options{})
	require.NoError(t, err)

	proof, err := tree.Proof(a)
	require.NoError(t, err)
	assert.Equal(t, tree.proofAt(0), proof)

	artifact := tree.Artifact()
	assert.Len(t, artifact, 2)
	assert.Equal(t, proof, artifact[a.Hex()].Proofs)
}

func TestArtifact(t *testing.T) {
	leaves := []common.Hash{leaf("a"), leaf("b"), leaf("c")}
	tree, err := New(leaves, Options{})
	require.NoError(t, err)

	artifact := tree.Artifact()
	require.Len(t, artifact, 3)
	for _, l := range leaves {
		entry, ok := artifact[l.Hex()]
		require.True(t, ok)
		assert.Equal(t, tree.Root(), entry.Root)
		assert.Equal(t, l, entry.Leaf)
		assert.True(t, VerifyProof(entry.Proofs, entry.Leaf, entry.Root))
	}
}

// Roots below are those merkletreejs produces with { sortPairs: true } and
// unhashed bytes32 leaves.
func TestKnownRoots(t *testing.T) {
	one := common.HexToHash("0x01")
	two := common.HexToHash("0x02")
	three := common.HexToHash("0x03")

	t.Run("pair", func(t *testing.T) {
		tree, err := New([]common.Hash{two, one}, Options{})
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0xe90b7bceb6e7df5418fb78d8ee546e97c83a08bbccc01a0644d599ccd2a7c2e0"), tree.Root())
	})

	t.Run("three leaves", func(t *testing.T) {
		leaves, err := Leaves([]Permission{{Hash: &one}, {Hash: &two}, {Hash: &three}})
		require.NoError(t, err)
		tree, err := New(leaves, Options{})
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0x9b0225f2c6f59eeaf8302811ea290e95258763189b82dc033158e99a6ef45a87"), tree.Root())

		proof, err := tree.Proof(three)
		require.NoError(t, err)
		assert.Equal(t, []common.Hash{common.HexToHash("0xe90b7bceb6e7df5418fb78d8ee546e97c83a08bbccc01a0644d599ccd2a7c2e0")}, proof)
	})

	t.Run("permission triple", func(t *testing.T) {
		hash, err := PermissionHash(
			common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
			common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"),
			[4]byte{0xa9, 0x05, 0x9c, 0xbb},
		)
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0x849b282201770011f0797e56b03969de9e5dea9969c6f334e54ae4679584e88b"), hash)
	})
}

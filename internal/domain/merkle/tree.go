// Package merkle builds sorted-pair keccak256 Merkle trees over permission leaves
// and produces per-leaf inclusion proofs.
package merkle

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrEmptyTree is returned when a tree is built without leaves
	ErrEmptyTree = errors.New("merkle tree needs at least one leaf")

	// ErrUnknownLeaf is matched by UnknownLeafError
	ErrUnknownLeaf = errors.New("unknown leaf")
)

// UnknownLeafError is returned when a proof is requested for a leaf not in the tree.
type UnknownLeafError struct {
	Leaf common.Hash
}

func (e UnknownLeafError) Error() string {
	return fmt.Sprintf("leaf %s is not part of the tree", e.Leaf.Hex())
}

func (e UnknownLeafError) Is(target error) bool {
	return target == ErrUnknownLeaf
}

// Options controls how the tree is assembled
type Options struct {
	// SortLeaves orders the leaves by value before building, making the root
	// independent of input order.
	SortLeaves bool
}

// Tree is an immutable Merkle tree. layers[0] holds the leaves and the last
// layer holds the root.
type Tree struct {
	layers [][]common.Hash
}

// New builds a tree over the given leaves. Adjacent nodes are paired; an odd
// trailing node is promoted to the next layer unchanged.
func New(leaves []common.Hash, opts Options) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	layer := make([]common.Hash, len(leaves))
	copy(layer, leaves)
	if opts.SortLeaves {
		sort.Slice(layer, func(i, j int) bool {
			return bytes.Compare(layer[i][:], layer[j][:]) < 0
		})
	}

	layers := [][]common.Hash{layer}
	for len(layer) > 1 {
		next := make([]common.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, HashPair(layer[i], layer[i+1]))
		}
		layers = append(layers, next)
		layer = next
	}

	return &Tree{layers: layers}, nil
}

// Root returns the root hash
func (t *Tree) Root() common.Hash {
	return t.layers[len(t.layers)-1][0]
}

// Leaves returns the leaves in tree order
func (t *Tree) Leaves() []common.Hash {
	out := make([]common.Hash, len(t.layers[0]))
	copy(out, t.layers[0])
	return out
}

// Depth returns the number of layers above the leaves
func (t *Tree) Depth() int {
	return len(t.layers) - 1
}

// Proof returns the sibling path for the first occurrence of leaf.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	for i, l := range t.layers[0] {
		if l == leaf {
			return t.proofAt(i), nil
		}
	}
	return nil, UnknownLeafError{Leaf: leaf}
}

// proofAt returns the sibling path for the leaf at index. Layers where the node
// was promoted without a sibling contribute nothing.
func (t *Tree) proofAt(index int) []common.Hash {
	proof := make([]common.Hash, 0, t.Depth())
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		index /= 2
	}
	return proof
}

// VerifyProof folds the proof over the leaf and compares the result with root.
func VerifyProof(proof []common.Hash, leaf, root common.Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = HashPair(computed, sibling)
	}
	return computed == root
}

// HashPair returns keccak256 of the two nodes concatenated in ascending order.
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

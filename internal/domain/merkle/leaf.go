package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	addressType, _ = abi.NewType("address", "", nil)
	bytes4Type, _  = abi.NewType("bytes4", "", nil)

	leafArgs       = abi.Arguments{{Type: bytes32Type}}
	permissionArgs = abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: bytes4Type}}
)

// Permission is one allow-list entry. Either Hash is set directly or it is
// derived from the module, target and selector triple.
type Permission struct {
	Hash     *common.Hash
	Module   common.Address
	Target   common.Address
	Selector [4]byte
}

// Value returns the 32-byte permission value
func (p Permission) Value() (common.Hash, error) {
	if p.Hash != nil {
		return *p.Hash, nil
	}
	return PermissionHash(p.Module, p.Target, p.Selector)
}

// PermissionHash computes keccak256(abi.encode(module, target, selector)).
func PermissionHash(module, target common.Address, selector [4]byte) (common.Hash, error) {
	packed, err := permissionArgs.Pack(module, target, selector)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode permission: %w", err)
	}
	return crypto.Keccak256Hash(packed), nil
}

// EncodeLeaf returns the canonical abi.encode(bytes32) form of a permission.
// For a bytes32 this is the value itself; leaves are not hashed again.
func EncodeLeaf(value common.Hash) (common.Hash, error) {
	packed, err := leafArgs.Pack([32]byte(value))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode leaf: %w", err)
	}
	return common.BytesToHash(packed), nil
}

// Leaves encodes each permission into its leaf form, preserving order.
func Leaves(perms []Permission) ([]common.Hash, error) {
	leaves := make([]common.Hash, 0, len(perms))
	for i, p := range perms {
		value, err := p.Value()
		if err != nil {
			return nil, fmt.Errorf("permission %d: %w", i, err)
		}
		leaf, err := EncodeLeaf(value)
		if err != nil {
			return nil, fmt.Errorf("permission %d: %w", i, err)
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// ProofEntry is the persisted proof for one leaf
type ProofEntry struct {
	Root   common.Hash   `json:"root"`
	Leaf   common.Hash   `json:"leaf"`
	Proofs []common.Hash `json:"proofs"`
}

// Artifact returns the proof entry for every leaf keyed by the leaf hex. A
// duplicated leaf maps to the proof of its first occurrence.
func (t *Tree) Artifact() map[string]ProofEntry {
	root := t.Root()
	out := make(map[string]ProofEntry, len(t.layers[0]))
	for i, leaf := range t.layers[0] {
		key := leaf.Hex()
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = ProofEntry{Root: root, Leaf: leaf, Proofs: t.proofAt(i)}
	}
	return out
}

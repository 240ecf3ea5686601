package merkle

import (
	"bytes"

	"github.com/pkg/errors"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
)

var (
	ErrEmptyTree    = errors.New("merkle tree needs at least one leaf")
	ErrLeafNotFound = errors.New("leaf index out of range")
)

// Tree is an immutable Merkle tree over an ordered set of leaves.
type Tree struct {
	nodes []domain.Hash
	n     int
}

// New builds a tree over leaves in the given order.
func New(leaves []domain.Hash) (*Tree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, ErrEmptyTree
	}
	nodes := make([]domain.Hash, 2*n-1)
	for i, leaf := range leaves {
		nodes[len(nodes)-1-i] = leaf
	}
	for i := len(nodes) - 1 - n; i >= 0; i-- {
		nodes[i] = hashPair(nodes[2*i+1], nodes[2*i+2])
	}
	return &Tree{nodes: nodes, n: n}, nil
}

// Root returns the tree root.
func (t *Tree) Root() domain.Hash { return t.nodes[0] }

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.n }

// Leaf returns leaf i in insertion order.
func (t *Tree) Leaf(i int) (domain.Hash, error) {
	if i < 0 || i >= t.n {
		return domain.Hash{}, errors.Wrapf(ErrLeafNotFound, "index %d of %d", i, t.n)
	}
	return t.nodes[len(t.nodes)-1-i], nil
}

// Proof returns the sibling path from leaf i up to the root.
func (t *Tree) Proof(i int) ([]domain.Hash, error) {
	if i < 0 || i >= t.n {
		return nil, errors.Wrapf(ErrLeafNotFound, "index %d of %d", i, t.n)
	}
	var proof []domain.Hash
	for idx := len(t.nodes) - 1 - i; idx > 0; idx = (idx - 1) / 2 {
		proof = append(proof, t.nodes[sibling(idx)])
	}
	return proof, nil
}

// Verify reports whether proof links leaf to root.
func Verify(root, leaf domain.Hash, proof []domain.Hash) bool {
	return ProcessProof(leaf, proof) == root
}

// ProcessProof folds proof into leaf and returns the implied root.
func ProcessProof(leaf domain.Hash, proof []domain.Hash) domain.Hash {
	computed := leaf
	for _, p := range proof {
		computed = hashPair(computed, p)
	}
	return computed
}

func sibling(i int) int {
	if i%2 == 1 {
		return i + 1
	}
	return i - 1
}

func hashPair(a, b domain.Hash) domain.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256(a[:], b[:])
}

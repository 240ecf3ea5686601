package hashlock

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/protocol/merkle"
)

// MaxParts is the largest number of fills a Merkle lock can encode.
const MaxParts = 1 << 16

// Build derives the hash-lock for fills. Indices must run 0..len-1.
func Build(fills domain.FillSet) (domain.HashLock, error) {
	if len(fills) == 0 {
		return domain.HashLock{}, domain.ErrEmptyFillSet
	}
	for i, f := range fills {
		if f.Index != uint64(i) {
			return domain.HashLock{}, errors.Wrapf(domain.ErrUnknownIndex, "fill at position %d has index %d", i, f.Index)
		}
	}
	return FromHashes(fills.Hashes())
}

// FromHashes derives the hash-lock from secret hashes in fill order.
func FromHashes(hashes []domain.SecretHash) (domain.HashLock, error) {
	switch n := len(hashes); {
	case n == 0:
		return domain.HashLock{}, domain.ErrEmptyFillSet
	case n == 1:
		return domain.HashLock{Kind: domain.HashLockSingle, Value: domain.Hash(hashes[0])}, nil
	case n > MaxParts:
		return domain.HashLock{}, errors.Wrapf(domain.ErrInvalidCount, "%d secrets exceed %d parts", n, MaxParts)
	}

	leaves := Leaves(hashes)
	tree, err := merkle.New(leaves)
	if err != nil {
		return domain.HashLock{}, errors.Wrap(err, "build merkle tree")
	}
	return domain.HashLock{
		Kind:   domain.HashLockMerkle,
		Value:  withParts(tree.Root(), len(hashes)),
		Leaves: leaves,
	}, nil
}

// Leaves returns leaf_i = keccak256(uint64_be(i) ‖ hash_i) for every hash.
func Leaves(hashes []domain.SecretHash) []domain.Hash {
	out := make([]domain.Hash, len(hashes))
	for i, h := range hashes {
		out[i] = crypto.MerkleLeaf(uint64(i), h)
	}
	return out
}

// PartsCount returns how many secrets the lock commits to.
func PartsCount(lock domain.HashLock) int {
	if lock.Kind != domain.HashLockMerkle {
		return 1
	}
	return int(binary.BigEndian.Uint16(lock.Value[:2])) + 1
}

// Root returns the full Merkle root (single locks return their value).
func Root(lock domain.HashLock) (domain.Hash, error) {
	if lock.Kind != domain.HashLockMerkle {
		return lock.Value, nil
	}
	tree, err := merkle.New(lock.Leaves)
	if err != nil {
		return domain.Hash{}, errors.Wrap(err, "build merkle tree")
	}
	return tree.Root(), nil
}

// Proof returns the Merkle proof for fill index. Single locks have an empty proof.
func Proof(lock domain.HashLock, index uint64) ([]domain.Hash, error) {
	if lock.Kind != domain.HashLockMerkle {
		if index != 0 {
			return nil, errors.Wrapf(domain.ErrUnknownIndex, "single-fill lock has no index %d", index)
		}
		return nil, nil
	}
	if index >= uint64(len(lock.Leaves)) {
		return nil, errors.Wrapf(domain.ErrUnknownIndex, "index %d of %d", index, len(lock.Leaves))
	}
	tree, err := merkle.New(lock.Leaves)
	if err != nil {
		return nil, errors.Wrap(err, "build merkle tree")
	}
	return tree.Proof(int(index))
}

// VerifyLeaf checks that hash is the secret hash of fill index under lock,
// using proof against the stored commitment.
func VerifyLeaf(lock domain.HashLock, index uint64, hash domain.SecretHash, proof []domain.Hash) bool {
	switch lock.Kind {
	case domain.HashLockSingle:
		return index == 0 && len(proof) == 0 && domain.Hash(hash) == lock.Value
	case domain.HashLockMerkle:
		parts := PartsCount(lock)
		if index >= uint64(parts) {
			return false
		}
		root := merkle.ProcessProof(crypto.MerkleLeaf(index, hash), proof)
		return withParts(root, parts) == lock.Value
	default:
		return false
	}
}

// Matches reports whether secret unlocks fill index of lock.
func Matches(lock domain.HashLock, index uint64, secret domain.Secret) bool {
	proof, err := Proof(lock, index)
	if err != nil {
		return false
	}
	return VerifyLeaf(lock, index, crypto.HashSecret(secret), proof)
}

// Validate checks that lock is exactly the commitment derived from hashes.
func Validate(lock domain.HashLock, hashes []domain.SecretHash) error {
	want, err := FromHashes(hashes)
	if err != nil {
		return err
	}
	if want.Kind != lock.Kind || want.Value != lock.Value {
		return errors.Errorf("hash-lock %s does not commit to the %d secret hashes", lock.Hex(), len(hashes))
	}
	return nil
}

// withParts packs parts-1 into the top 16 bits of root.
func withParts(root domain.Hash, parts int) domain.Hash {
	binary.BigEndian.PutUint16(root[:2], uint16(parts-1))
	return root
}

package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"fusionswap/internal/domain"
)

// Keccak256 returns the legacy (pre-NIST) Keccak-256 digest of the
// concatenation of data, as used by the EVM.
func Keccak256(data ...[]byte) (out domain.Hash) {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	return out
}

// HashSecret returns keccak256 of the secret's 32 raw bytes.
func HashSecret(s domain.Secret) domain.SecretHash {
	return domain.SecretHash(Keccak256(s[:]))
}

// MerkleLeaf returns keccak256(uint64_be(index) ‖ hash), the packed
// encoding of (uint64, bytes32).
func MerkleLeaf(index uint64, hash domain.SecretHash) domain.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	return Keccak256(idx[:], hash[:])
}

package types

import "encoding/hex"

// HashLockKind tells a single-secret lock from a Merkle multi-secret lock.
type HashLockKind uint8

const (
	HashLockSingle HashLockKind = iota + 1
	HashLockMerkle
)

// String returns a short name for the kind.
func (k HashLockKind) String() string {
	switch k {
	case HashLockSingle:
		return "single"
	case HashLockMerkle:
		return "merkle"
	default:
		return "unknown"
	}
}

// HashLock is the commitment an order is submitted with.
//
// For HashLockSingle, Value is the secret hash and Leaves is empty. For
// HashLockMerkle, Value is the Merkle root over Leaves with the parts count
// packed into its top 16 bits, and Leaves[i] = keccak256(uint64(i) ‖ hash_i).
type HashLock struct {
	Kind   HashLockKind `json:"kind"`
	Value  Hash         `json:"value"`
	Leaves []Hash       `json:"leaves,omitempty"`
}

// Bytes returns the 32-byte commitment.
func (h HashLock) Bytes() []byte {
	b := h.Value
	return b[:]
}

// Hex returns the 0x-prefixed commitment.
func (h HashLock) Hex() string { return "0x" + hex.EncodeToString(h.Value[:]) }

// String returns the 0x-prefixed commitment.
func (h HashLock) String() string { return h.Hex() }

package types

import (
	"encoding/hex"

	"fusionswap/internal/util/memzero"
)

// SecretSize is the byte length of a hash-lock secret.
const SecretSize = 32

// Secret is a hash-lock preimage. Whoever holds it can claim the escrow,
// so it formats as [redacted] and only Hex exposes the bytes.
type Secret [SecretSize]byte

// Hex returns the 0x-prefixed hex encoding used on the wire.
func (s Secret) Hex() string { return "0x" + hex.EncodeToString(s[:]) }

// String implements fmt.Stringer without revealing the secret.
func (Secret) String() string { return "[redacted]" }

// GoString implements fmt.GoStringer without revealing the secret.
func (Secret) GoString() string { return "types.Secret([redacted])" }

// Wipe zeroes the secret in place.
func (s *Secret) Wipe() { memzero.Zero(s[:]) }

// SecretHash is keccak256 of a Secret. It is public from order submission on.
type SecretHash [32]byte

// Hex returns the 0x-prefixed hex encoding.
func (h SecretHash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String returns the 0x-prefixed hex encoding.
func (h SecretHash) String() string { return h.Hex() }

// Fill is one partial fill of an order, gated by its own secret.
type Fill struct {
	Index  uint64
	Secret Secret
	Hash   SecretHash
}

// FillSet holds one fill per secret, ordered by index starting at zero.
type FillSet []Fill

// Hashes returns the secret hashes in index order.
func (fs FillSet) Hashes() []SecretHash {
	out := make([]SecretHash, len(fs))
	for i, f := range fs {
		out[i] = f.Hash
	}
	return out
}

// Wipe zeroes every secret held by the set.
func (fs FillSet) Wipe() {
	for i := range fs {
		fs[i].Secret.Wipe()
	}
}

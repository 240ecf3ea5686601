// Package crypto exposes the minimal primitives used by fusionswap.
//
// Contents
//
//   - Keccak-256 hashing of secrets and packed Merkle leaves (Keccak256,
//     HashSecret, MerkleLeaf)
//   - Secret generation from a CSPRNG (RandomSecret)
//   - secp256k1 signing-key loading, order signing and signer recovery
//     (LoadSigningKey, Sign, RecoverSigner)
//
// # Notes
//
// Secrets are fixed-size array types defined in internal/domain. Callers
// should treat them as sensitive and wipe them when practical to reduce their
// lifetime in memory.
package crypto

// Package hashlock derives the commitment an order is locked with.
//
// A single-fill order is locked by the hash of its only secret. A multi-fill
// order is locked by a Merkle root over one leaf per fill,
//
//	leaf_i = keccak256(uint64_be(i) ‖ keccak256(secret_i))
//
// with the number of parts minus one packed into the top 16 bits of the root.
// The same ordered hashes always give the same 32 bytes, which is what the
// escrow contracts later check revealed secrets against.
package hashlock

// Package merkle builds the keccak256 Merkle tree that commits to the
// per-fill secrets of a multi-fill order.
//
// The layout matches OpenZeppelin's SimpleMerkleTree with leaf sorting
// disabled, which is what the escrow contracts verify against:
//
//   - the tree is a flat array of 2n-1 nodes with the root at index 0;
//   - leaf i is stored at index len-1-i, so leaves sit reversed at the tail;
//   - an internal node is keccak256 of its two children in ascending byte
//     order, which makes proofs independent of left/right position.
//
// Leaves are taken as given (already hashed); the package never rehashes them.
package merkle

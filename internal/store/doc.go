// Package store persists the swap journal on disk.
//
// The journal is a single JSON file (swaps.json) under the fusionswap home
// directory, keyed by order hash. It holds public data only: routes, amounts,
// hash-locks, secret hashes, disclosed indices and statuses. Secrets are
// never written.
//
// Writes go through a temporary file and an atomic rename, so a crash never
// leaves a truncated journal behind.
package store

// Package vault holds the secrets of a single swap.
//
// It generates one random secret per fill, publishes only their hashes, and
// hands a secret out by fill index when the coordinator is ready to disclose
// it. Secrets live in memory only and are zeroed by Wipe.
package vault

// Package app wires application dependencies for the CLI.
//
// Config is read from the environment (see Load). NewWire builds the logger,
// metrics registry, exchange client, swap journal and the quote and swap
// services from it, exposing them via the Wire struct for commands to use.
package app

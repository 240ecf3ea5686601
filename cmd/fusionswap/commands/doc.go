// Package commands defines the fusionswap CLI and wires dependencies for subcommands.
//
// Commands
//
//   - routes                  List the configured swap routes
//   - quote <route> [amount]  Price a swap without placing it
//   - swap <route> [amount]   Place an order and drive it to a terminal status
//   - history                 List journaled swaps, newest first
//   - status <order-hash>     Show the exchange status and journal entry of an order
//
// # Implementation
//
// Configuration comes from the environment (see internal/app.Config); the
// persistent flags override it. The root command builds the dependency graph
// (journal, exchange client, quote and swap services) before any subcommand
// runs. Interrupting a running swap cancels it: secrets are discarded and the
// order is left to expire at the exchange.
package commands

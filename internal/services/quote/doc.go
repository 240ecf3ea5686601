// Package quote resolves named swap routes, converts human token amounts to
// base units, and fetches quotes from the exchange service.
//
// One parameterised route replaces per-direction quote functions: a route
// names the source chain/token and destination chain/token, and every quote
// goes through the same code path.
package quote

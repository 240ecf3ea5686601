// Package swap coordinates one cross-chain swap from quote to terminal status.
//
// A swap moves through quoting, committing, submitting and awaiting-fills:
//
//  1. Quote the route and pick the preset, which fixes the number of secrets.
//  2. Generate the secrets in a vault and derive the hash-lock.
//  3. Submit the order with the hash-lock and the public secret hashes.
//  4. Poll the exchange for fills whose escrows are deployed and for the
//     order status. Each eligible secret is submitted at most once; a
//     failed submission is retried on the next report.
//  5. Stop on executed, expired or refunded, report the status and wipe
//     the secrets.
//
// The caller's context bounds the whole run. Cancelling it wipes the secrets
// and stops all network calls; it does not touch the order itself. Too many
// consecutive polling failures end Await with ErrPollingExhausted while the
// secrets are kept, so the caller can Await again or Close.
package swap

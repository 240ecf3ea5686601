// Package sim is an in-memory exchange service for local runs and tests.
//
// Exchange implements domain.ExchangeService directly and serves the same
// REST API the exchange client speaks (see Handler). It behaves like a
// cooperative resolver network:
//
//   - quotes are priced from static USD token prices;
//   - a submitted order must carry a hash-lock that matches its secret hashes
//     and, over HTTP, a signature from the maker wallet;
//   - each readiness poll deploys the escrows of one more fill;
//   - a secret is accepted once, only for a fill whose escrows are deployed
//     and only when it matches the committed hash-lock;
//   - the order is executed once every secret is in, and optionally expires
//     (or is refunded when partly filled) after a number of status polls.
//
// All state is held in memory and lost on process exit.
package sim

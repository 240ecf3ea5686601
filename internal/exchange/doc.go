// Package exchange provides an HTTP implementation of the
// domain.ExchangeService interface for a Fusion+ style intent-based
// cross-chain exchange.
//
// Endpoints used, relative to the configured base URL:
//
//	GET  /quoter/v1.0/quote/receive
//	POST /relayer/v1.0/submit
//	GET  /orders/v1.0/order/ready-to-accept-secret-fills/{orderHash}
//	POST /relayer/v1.0/submit/secret
//	GET  /orders/v1.0/order/status/{orderHash}
//
// All requests are JSON over HTTP, carry the API key as a bearer token and
// accept a context for cancellation and deadlines. Non-2xx responses are
// returned as *StatusError.
//
// Orders are signed by the maker: the signature is a secp256k1 signature over
// keccak256 of the JSON submission with an empty signature field (see
// OrderDigest).
package exchange

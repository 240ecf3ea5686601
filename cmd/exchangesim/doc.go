// Package main runs the in-memory exchange simulator used by fusionswap during
// development and tests. It serves the same REST API as the real exchange, so
// the fusionswap CLI can be pointed at it with ONEINCH_API_URL.
//
// HTTP API
//
//	GET /quoter/v1.0/quote/receive?srcChain&dstChain&srcTokenAddress&dstTokenAddress&amount&walletAddress
//	    Price a swap from static token prices and remember the quote.
//
//	POST /relayer/v1.0/submit
//	    Accept a signed order for a remembered quote. The hash-lock must match
//	    the secret hashes and the signature must recover to the wallet.
//
//	GET /orders/v1.0/order/ready-to-accept-secret-fills/{orderHash}
//	    Deploy the escrows of one more fill, then list deployed fills still
//	    waiting for their secret.
//
//	POST /relayer/v1.0/submit/secret
//	    Accept the secret of a deployed fill.
//
//	GET /orders/v1.0/order/status/{orderHash}
//	    Report pending, partially-filled, executed, expired or refunded.
//
//	GET /metrics
//	    Prometheus metrics.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - A debug-level access log records method, path, remote, status, bytes
//     and duration for each request.
//   - The default listen address is :8080.
package main

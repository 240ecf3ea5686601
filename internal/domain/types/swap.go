package types

import (
	"time"

	"github.com/holiman/uint256"
)

// SwapState is the coordinator's position in the protocol.
type SwapState string

const (
	SwapStateQuoting       SwapState = "quoting"
	SwapStateCommitting    SwapState = "committing"
	SwapStateSubmitting    SwapState = "submitting"
	SwapStateAwaitingFills SwapState = "awaiting-fills"
	SwapStateTerminal      SwapState = "terminal"
	SwapStateCancelled     SwapState = "cancelled"
	SwapStateFailed        SwapState = "failed"
)

// String returns the string form of the state.
func (s SwapState) String() string { return string(s) }

// SwapRequest is the caller's intent for one swap attempt.
type SwapRequest struct {
	Route  Route
	Amount *uint256.Int
	Wallet Address
	// Preset forces an execution strategy; empty takes the quote's recommendation.
	Preset PresetName
	Fee    *FeeConfig
	Source string
}

// SwapResult is the outcome of a swap that reached a terminal status.
type SwapResult struct {
	OrderHash    OrderHash
	QuoteID      QuoteID
	Status       OrderStatus
	SecretsCount int
	Disclosed    []uint64
	Elapsed      time.Duration
}

// SwapRecord is the journal entry for a submitted order. It never carries
// secret material.
type SwapRecord struct {
	OrderHash    OrderHash   `json:"order_hash"`
	QuoteID      QuoteID     `json:"quote_id"`
	Route        string      `json:"route"`
	SrcChainID   ChainID     `json:"src_chain_id"`
	DstChainID   ChainID     `json:"dst_chain_id"`
	Amount       string      `json:"amount"`
	Preset       PresetName  `json:"preset"`
	HashLock     string      `json:"hash_lock"`
	SecretHashes []string    `json:"secret_hashes"`
	Disclosed    []uint64    `json:"disclosed"`
	State        SwapState   `json:"state"`
	Status       OrderStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
	CreatedUTC   int64       `json:"created_utc"`
	UpdatedUTC   int64       `json:"updated_utc"`
}

package types

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// Route is a swap direction: which token on which chain is sold for which
// token on which chain.
type Route struct {
	Name          string  `json:"name" yaml:"name"`
	SrcChainID    ChainID `json:"src_chain_id" yaml:"src_chain_id"`
	DstChainID    ChainID `json:"dst_chain_id" yaml:"dst_chain_id"`
	SrcToken      Address `json:"src_token" yaml:"src_token"`
	DstToken      Address `json:"dst_token" yaml:"dst_token"`
	SrcDecimals   uint8   `json:"src_decimals" yaml:"src_decimals"`
	DstDecimals   uint8   `json:"dst_decimals" yaml:"dst_decimals"`
	DefaultAmount string  `json:"default_amount,omitempty" yaml:"default_amount,omitempty"`
}

// String describes the route as "name (src/token -> dst/token)".
func (r Route) String() string {
	return fmt.Sprintf("%s (%s/%s -> %s/%s)", r.Name, r.SrcChainID, r.SrcToken.Hex(), r.DstChainID, r.DstToken.Hex())
}

// QuoteRequest asks the exchange service to price Amount (in source token
// base units) along Route.
type QuoteRequest struct {
	Route          Route
	Amount         *uint256.Int
	Wallet         Address
	EnableEstimate bool
	Source         string
}

// Preset is an execution strategy attached to a quote. SecretsCount decides
// how many secrets (and therefore fills) the order is split into.
type Preset struct {
	SecretsCount       int           `json:"secrets_count"`
	AuctionDuration    time.Duration `json:"auction_duration"`
	AllowPartialFills  bool          `json:"allow_partial_fills"`
	AllowMultipleFills bool          `json:"allow_multiple_fills"`
}

// Quote is the priced offer an order is built from.
type Quote struct {
	ID                QuoteID
	Route             Route
	SrcAmount         *uint256.Int
	DstAmount         *uint256.Int
	RecommendedPreset PresetName
	Presets           map[PresetName]Preset
}

// Preset returns the named preset, or the recommended one when name is empty.
func (q Quote) Preset(name PresetName) (PresetName, Preset, bool) {
	if name == "" {
		name = q.RecommendedPreset
	}
	p, ok := q.Presets[name]
	return name, p, ok
}

// FeeConfig is the optional integrator fee taken from the destination amount.
type FeeConfig struct {
	TakingFeeBps      uint16  `json:"taking_fee_bps"`
	TakingFeeReceiver Address `json:"taking_fee_receiver"`
}

// OrderRequest is everything the exchange service needs to place an order.
type OrderRequest struct {
	Quote        Quote
	Wallet       Address
	HashLock     HashLock
	SecretHashes []SecretHash
	Preset       PresetName
	Fee          *FeeConfig
	Source       string
}

// OrderReceipt is the service-assigned identity of a submitted order.
type OrderReceipt struct {
	OrderHash OrderHash
	QuoteID   QuoteID
}

// ReadyFill reports a fill whose escrows are deployed and which now waits
// for its secret.
type ReadyFill struct {
	Index                 uint64 `json:"idx"`
	SrcEscrowDeployTxHash string `json:"srcEscrowDeployTxHash,omitempty"`
	DstEscrowDeployTxHash string `json:"dstEscrowDeployTxHash,omitempty"`
}

// OrderStatus is the lifecycle status reported by the exchange service.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPartiallyFilled OrderStatus = "partially-filled"
	OrderStatusExecuted        OrderStatus = "executed"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusRefunded        OrderStatus = "refunded"
)

// String returns the wire form of the status.
func (s OrderStatus) String() string { return string(s) }

// IsTerminal reports whether no further protocol action follows s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusExecuted, OrderStatusExpired, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPartiallyFilled,
		OrderStatusExecuted, OrderStatusExpired, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

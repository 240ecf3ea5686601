package domain

import (
	interfaces "fusionswap/internal/domain/interfaces"
	types "fusionswap/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ChainID      = types.ChainID
	OrderHash    = types.OrderHash
	QuoteID      = types.QuoteID
	PresetName   = types.PresetName
	Address      = types.Address
	Hash         = types.Hash
	Secret       = types.Secret
	SecretHash   = types.SecretHash
	Fill         = types.Fill
	FillSet      = types.FillSet
	HashLockKind = types.HashLockKind
	HashLock     = types.HashLock
	Route        = types.Route
	QuoteRequest = types.QuoteRequest
	Preset       = types.Preset
	Quote        = types.Quote
	FeeConfig    = types.FeeConfig
	OrderRequest = types.OrderRequest
	OrderReceipt = types.OrderReceipt
	ReadyFill    = types.ReadyFill
	OrderStatus  = types.OrderStatus
	SwapState    = types.SwapState
	SwapRequest  = types.SwapRequest
	SwapResult   = types.SwapResult
	SwapRecord   = types.SwapRecord
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	ExchangeService = interfaces.ExchangeService
	SecretVault     = interfaces.SecretVault
	QuoteService    = interfaces.QuoteService
	SwapService     = interfaces.SwapService
	SwapStore       = interfaces.SwapStore
)

// Constants re-exported from the types subpackage.
const (
	SecretSize = types.SecretSize

	ChainEthereum = types.ChainEthereum
	ChainOptimism = types.ChainOptimism
	ChainPolygon  = types.ChainPolygon
	ChainBase     = types.ChainBase
	ChainArbitrum = types.ChainArbitrum

	PresetFast   = types.PresetFast
	PresetMedium = types.PresetMedium
	PresetSlow   = types.PresetSlow
	PresetCustom = types.PresetCustom

	HashLockSingle = types.HashLockSingle
	HashLockMerkle = types.HashLockMerkle

	OrderStatusPending         = types.OrderStatusPending
	OrderStatusPartiallyFilled = types.OrderStatusPartiallyFilled
	OrderStatusExecuted        = types.OrderStatusExecuted
	OrderStatusExpired         = types.OrderStatusExpired
	OrderStatusRefunded        = types.OrderStatusRefunded

	SwapStateQuoting       = types.SwapStateQuoting
	SwapStateCommitting    = types.SwapStateCommitting
	SwapStateSubmitting    = types.SwapStateSubmitting
	SwapStateAwaitingFills = types.SwapStateAwaitingFills
	SwapStateTerminal      = types.SwapStateTerminal
	SwapStateCancelled     = types.SwapStateCancelled
	SwapStateFailed        = types.SwapStateFailed
)

package types

import (
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// ChainID is an EVM chain identifier (10 = Optimism, 42161 = Arbitrum).
type ChainID uint64

// String returns the decimal form of the chain id.
func (id ChainID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Well-known chains used by the built-in routes.
const (
	ChainEthereum ChainID = 1
	ChainOptimism ChainID = 10
	ChainPolygon  ChainID = 137
	ChainBase     ChainID = 8453
	ChainArbitrum ChainID = 42161
)

// OrderHash identifies a submitted order at the exchange service.
type OrderHash string

// String returns the string form of the order hash.
func (h OrderHash) String() string { return string(h) }

// QuoteID identifies a quote handed out by the exchange service.
type QuoteID string

// String returns the string form of the quote identifier.
func (id QuoteID) String() string { return string(id) }

// PresetName names an execution strategy offered with a quote.
type PresetName string

// String returns the string form of the preset name.
func (p PresetName) String() string { return string(p) }

const (
	PresetFast   PresetName = "fast"
	PresetMedium PresetName = "medium"
	PresetSlow   PresetName = "slow"
	PresetCustom PresetName = "custom"
)

// Address is an EVM account or token address.
type Address = common.Address

// Hash is a 32-byte keccak256 digest (Merkle leaves and roots).
type Hash [32]byte

// Hex returns the 0x-prefixed hex encoding.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String returns the 0x-prefixed hex encoding.
func (h Hash) String() string { return h.Hex() }

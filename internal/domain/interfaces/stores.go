package interfaces

import domaintypes "fusionswap/internal/domain/types"

// SwapStore journals submitted orders. Records never hold secrets.
type SwapStore interface {
	SaveSwap(record domaintypes.SwapRecord) error
	LoadSwap(orderHash domaintypes.OrderHash) (domaintypes.SwapRecord, bool, error)
	ListSwaps() ([]domaintypes.SwapRecord, error)
}

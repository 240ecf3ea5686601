package interfaces

import (
	"context"

	"github.com/holiman/uint256"

	domaintypes "fusionswap/internal/domain/types"
)

// SecretVault generates the secrets of one swap and hands them out by index.
type SecretVault interface {
	Generate(count int) (domaintypes.FillSet, error)
	Reveal(index uint64) (domaintypes.Secret, error)
	Hashes() []domaintypes.SecretHash
	Len() int
	Wipe()
}

// QuoteService resolves routes and amounts and fetches quotes.
type QuoteService interface {
	Route(name string) (domaintypes.Route, error)
	Routes() []domaintypes.Route
	ParseAmount(route domaintypes.Route, amount string) (*uint256.Int, error)
	Quote(
		ctx context.Context,
		route domaintypes.Route,
		amount string,
		wallet domaintypes.Address,
	) (domaintypes.Quote, error)
}

// SwapService drives a swap from quote to terminal status.
type SwapService interface {
	Execute(
		ctx context.Context,
		req domaintypes.SwapRequest,
	) (domaintypes.SwapResult, error)
}

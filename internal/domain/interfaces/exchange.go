package interfaces

import (
	"context"

	domaintypes "fusionswap/internal/domain/types"
)

// ExchangeService is the remote service that prices routes, accepts orders,
// tracks escrow deployment and collects secrets, all with context.
type ExchangeService interface {
	GetQuote(ctx context.Context, req domaintypes.QuoteRequest) (domaintypes.Quote, error)
	SubmitOrder(
		ctx context.Context,
		req domaintypes.OrderRequest,
	) (domaintypes.OrderReceipt, error)

	// ReadyToAcceptSecretFills lists fills whose escrows are deployed and
	// which are waiting for their secret.
	ReadyToAcceptSecretFills(
		ctx context.Context,
		orderHash domaintypes.OrderHash,
	) ([]domaintypes.ReadyFill, error)
	SubmitSecret(
		ctx context.Context,
		orderHash domaintypes.OrderHash,
		secret domaintypes.Secret,
	) error
	OrderStatus(
		ctx context.Context,
		orderHash domaintypes.OrderHash,
	) (domaintypes.OrderStatus, error)
}

package sim_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/exchange/sim"
	"fusionswap/internal/metrics"
	"fusionswap/internal/protocol/hashlock"
)

var (
	weth   = common.HexToAddress("0x4200000000000000000000000000000000000006")
	usdc   = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	wallet = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
)

var opArb = domain.Route{
	Name:       "op-arb",
	SrcChainID: domain.ChainOptimism,
	DstChainID: domain.ChainArbitrum,
	SrcToken:   weth,
	DstToken:   usdc,
}

func quote(t *testing.T, ex *sim.Exchange) domain.Quote {
	t.Helper()
	q, err := ex.GetQuote(context.Background(), domain.QuoteRequest{
		Route:  opArb,
		Amount: uint256.NewInt(500_000_000_000_000),
		Wallet: wallet,
	})
	require.NoError(t, err)
	return q
}

// secrets returns n distinct secrets with their hashes.
func secrets(n int) ([]domain.Secret, []domain.SecretHash) {
	ss := make([]domain.Secret, n)
	hs := make([]domain.SecretHash, n)
	for i := range ss {
		ss[i] = domain.Secret{byte(i + 1), 0x5e}
		hs[i] = crypto.HashSecret(ss[i])
	}
	return ss, hs
}

func place(t *testing.T, ex *sim.Exchange, preset domain.PresetName, n int) (domain.OrderHash, []domain.Secret) {
	t.Helper()
	q := quote(t, ex)
	ss, hs := secrets(n)
	lock, err := hashlock.FromHashes(hs)
	require.NoError(t, err)
	receipt, err := ex.SubmitOrder(context.Background(), domain.OrderRequest{
		Quote:        q,
		Wallet:       wallet,
		HashLock:     lock,
		SecretHashes: hs,
		Preset:       preset,
	})
	require.NoError(t, err)
	return receipt.OrderHash, ss
}

func TestGetQuote_Prices(t *testing.T) {
	ex := sim.New(sim.DefaultConfig(), zaptest.NewLogger(t), nil)
	q := quote(t, ex)

	// 0.0005 WETH at 2500 USD is 1.25 USDC.
	assert.Equal(t, "1250000", q.DstAmount.Dec())
	assert.Equal(t, uint8(18), q.Route.SrcDecimals)
	assert.Equal(t, uint8(6), q.Route.DstDecimals)
	assert.Equal(t, domain.PresetFast, q.RecommendedPreset)
	assert.NotEmpty(t, q.ID)

	q2 := quote(t, ex)
	assert.NotEqual(t, q.ID, q2.ID)
}

func TestGetQuote_UnknownToken(t *testing.T) {
	ex := sim.New(sim.DefaultConfig(), nil, nil)
	route := opArb
	route.DstToken = common.HexToAddress("0x01")
	_, err := ex.GetQuote(context.Background(), domain.QuoteRequest{Route: route, Amount: uint256.NewInt(1)})
	require.ErrorIs(t, err, sim.ErrUnknownToken)
}

func TestSubmitOrder_Validation(t *testing.T) {
	ex := sim.New(sim.DefaultConfig(), nil, nil)
	ctx := context.Background()
	_, hs := secrets(2)
	lock, err := hashlock.FromHashes(hs)
	require.NoError(t, err)

	t.Run("unknown quote", func(t *testing.T) {
		_, err := ex.SubmitOrder(ctx, domain.OrderRequest{
			Quote: domain.Quote{ID: "nope"}, HashLock: lock, SecretHashes: hs, Preset: domain.PresetMedium,
		})
		require.ErrorIs(t, err, sim.ErrUnknownQuote)
	})

	t.Run("lock mismatch", func(t *testing.T) {
		bad := lock
		bad.Value[31] ^= 1
		_, err := ex.SubmitOrder(ctx, domain.OrderRequest{
			Quote: quote(t, ex), HashLock: bad, SecretHashes: hs, Preset: domain.PresetMedium,
		})
		require.ErrorIs(t, err, sim.ErrBadOrder)
	})

	t.Run("count does not match preset", func(t *testing.T) {
		_, err := ex.SubmitOrder(ctx, domain.OrderRequest{
			Quote: quote(t, ex), HashLock: lock, SecretHashes: hs, Preset: domain.PresetFast,
		})
		require.ErrorIs(t, err, sim.ErrBadOrder)
	})

	t.Run("quote is single use", func(t *testing.T) {
		q := quote(t, ex)
		req := domain.OrderRequest{Quote: q, Wallet: wallet, HashLock: lock, SecretHashes: hs, Preset: domain.PresetMedium}
		_, err := ex.SubmitOrder(ctx, req)
		require.NoError(t, err)
		_, err = ex.SubmitOrder(ctx, req)
		require.ErrorIs(t, err, sim.ErrUnknownQuote)
	})
}

func TestOrderLifecycle(t *testing.T) {
	m := metrics.NewExchange(nil)
	ex := sim.New(sim.DefaultConfig(), zaptest.NewLogger(t), m)
	ctx := context.Background()
	hash, ss := place(t, ex, domain.PresetMedium, 2)

	maker, ok := ex.Maker(hash)
	require.True(t, ok)
	assert.Equal(t, wallet, maker)

	// Fill 1 is not deployed yet.
	require.ErrorIs(t, ex.SubmitSecret(ctx, hash, ss[1]), sim.ErrNotReady)

	ready, err := ex.ReadyToAcceptSecretFills(ctx, hash)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, uint64(0), ready[0].Index)
	assert.NotEmpty(t, ready[0].SrcEscrowDeployTxHash)

	require.NoError(t, ex.SubmitSecret(ctx, hash, ss[0]))
	require.ErrorIs(t, ex.SubmitSecret(ctx, hash, ss[0]), sim.ErrAlreadyRevealed)
	require.ErrorIs(t, ex.SubmitSecret(ctx, hash, domain.Secret{0xff}), sim.ErrSecretMismatch)

	st, err := ex.OrderStatus(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPartiallyFilled, st)

	ready, err = ex.ReadyToAcceptSecretFills(ctx, hash)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, uint64(1), ready[0].Index)

	require.NoError(t, ex.SubmitSecret(ctx, hash, ss[1]))
	st, err = ex.OrderStatus(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusExecuted, st)

	ready, err = ex.ReadyToAcceptSecretFills(ctx, hash)
	require.NoError(t, err)
	assert.Empty(t, ready)
	require.ErrorIs(t, ex.SubmitSecret(ctx, hash, ss[1]), sim.ErrOrderClosed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orders.WithLabelValues("executed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Orders.WithLabelValues("pending")))
}

func TestOrderExpiry(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.ExpireAfterPolls = 2
	ex := sim.New(cfg, nil, nil)
	ctx := context.Background()

	expired, _ := place(t, ex, domain.PresetMedium, 2)
	refunded, ss := place(t, ex, domain.PresetMedium, 2)
	_, err := ex.ReadyToAcceptSecretFills(ctx, refunded)
	require.NoError(t, err)
	require.NoError(t, ex.SubmitSecret(ctx, refunded, ss[0]))

	for i := 0; i < 2; i++ {
		st, err := ex.OrderStatus(ctx, expired)
		require.NoError(t, err)
		assert.False(t, st.IsTerminal())
		_, err = ex.OrderStatus(ctx, refunded)
		require.NoError(t, err)
	}

	st, err := ex.OrderStatus(ctx, expired)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusExpired, st)
	st, err = ex.OrderStatus(ctx, refunded)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, st)
}

func TestUnknownOrder(t *testing.T) {
	ex := sim.New(sim.DefaultConfig(), nil, nil)
	ctx := context.Background()
	_, err := ex.OrderStatus(ctx, "0xmissing")
	require.ErrorIs(t, err, sim.ErrUnknownOrder)
	_, err = ex.ReadyToAcceptSecretFills(ctx, "0xmissing")
	require.ErrorIs(t, err, sim.ErrUnknownOrder)
	require.ErrorIs(t, ex.SubmitSecret(ctx, "0xmissing", domain.Secret{}), sim.ErrUnknownOrder)
}

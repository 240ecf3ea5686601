package swap_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fusionswap/internal/domain"
	"fusionswap/internal/metrics"
	"fusionswap/internal/protocol/hashlock"
	"fusionswap/internal/services/swap"
)

var fastPolling = swap.Config{
	PollInterval:    time.Millisecond,
	MaxPollInterval: 4 * time.Millisecond,
	MaxPollFailures: 3,
}

func newService(t *testing.T, ex domain.ExchangeService, store domain.SwapStore, cfg swap.Config) (*swap.Service, *metrics.Swap) {
	t.Helper()
	m := metrics.NewSwap(nil)
	return swap.New(ex, store, cfg, zaptest.NewLogger(t), m), m
}

func request() domain.SwapRequest {
	return domain.SwapRequest{
		Route:  opArb,
		Amount: uint256.NewInt(500_000_000_000_000),
		Source: "fusionswap-test",
	}
}

func TestExecute_TwoFillsEndToEnd(t *testing.T) {
	ex := newExchange(2,
		step{ready: []uint64{0}, status: domain.OrderStatusPending},
		step{ready: []uint64{1}, status: domain.OrderStatusPartiallyFilled},
		step{status: domain.OrderStatusExecuted},
	)
	store := &memStore{}
	svc, m := newService(t, ex, store, fastPolling)

	res, err := svc.Execute(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusExecuted, res.Status)
	assert.Equal(t, testOrderHash, res.OrderHash)
	assert.Equal(t, domain.QuoteID("quote-1"), res.QuoteID)
	assert.Equal(t, 2, res.SecretsCount)
	assert.Equal(t, []uint64{0, 1}, res.Disclosed)
	assert.Equal(t, []uint64{0, 1}, ex.accepted)

	// The order carries a merkle lock over both public hashes.
	lock := ex.order.HashLock
	assert.Equal(t, domain.HashLockMerkle, lock.Kind)
	require.Len(t, ex.order.SecretHashes, 2)
	require.NoError(t, hashlock.Validate(lock, ex.order.SecretHashes))
	assert.Equal(t, domain.PresetFast, ex.order.Preset)
	assert.Equal(t, "fusionswap-test", ex.order.Source)
	for i, s := range ex.secrets {
		assert.True(t, hashlock.Matches(lock, i, s), "secret %d", i)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SecretsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("executed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Polls))

	rec, ok, err := store.LoadSwap(testOrderHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.SwapStateTerminal, rec.State)
	assert.Equal(t, domain.OrderStatusExecuted, rec.Status)
	assert.Equal(t, []uint64{0, 1}, rec.Disclosed)
	assert.Equal(t, "op-arb", rec.Route)
	assert.Equal(t, lock.Hex(), rec.HashLock)
	assert.Equal(t,
		[]domain.SwapState{domain.SwapStateSubmitting, domain.SwapStateAwaitingFills, domain.SwapStateTerminal},
		store.states())

	// No journal entry ever carries a secret.
	for _, r := range store.history {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		for _, s := range ex.secrets {
			assert.NotContains(t, string(raw), s.Hex()[2:])
		}
	}
}

func TestExecute_SingleSecretUsesPlainHash(t *testing.T) {
	ex := newExchange(1,
		step{ready: []uint64{0}},
		step{status: domain.OrderStatusExecuted},
	)
	svc, _ := newService(t, ex, nil, fastPolling)

	res, err := svc.Execute(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res.Disclosed)

	lock := ex.order.HashLock
	assert.Equal(t, domain.HashLockSingle, lock.Kind)
	assert.Equal(t, domain.Hash(ex.order.SecretHashes[0]), lock.Value)
	assert.True(t, hashlock.Matches(lock, 0, ex.secrets[0]))
}

func TestAwait_DisclosesEachIndexAtMostOnce(t *testing.T) {
	ex := newExchange(2,
		step{ready: []uint64{0}},
		step{ready: []uint64{0}},
		step{ready: []uint64{1, 0, 1}},
		step{ready: []uint64{0, 1}, status: domain.OrderStatusPartiallyFilled},
		step{status: domain.OrderStatusExecuted},
	)
	svc, _ := newService(t, ex, nil, fastPolling)

	res, err := svc.Execute(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, res.Disclosed)
	assert.Equal(t, []uint64{0, 1}, ex.accepted)
	_, submits := ex.counts()
	assert.Equal(t, 2, submits)
}

func TestAwait_TerminalStatusStopsDisclosure(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusExecuted,
		domain.OrderStatusExpired,
		domain.OrderStatusRefunded,
	} {
		t.Run(status.String(), func(t *testing.T) {
			ex := newExchange(2, step{ready: []uint64{0, 1}, status: status})
			svc, _ := newService(t, ex, nil, fastPolling)

			sw, err := svc.Place(context.Background(), request())
			require.NoError(t, err)
			res, err := sw.Await(context.Background())
			require.NoError(t, err)

			assert.Equal(t, status, res.Status)
			assert.Empty(t, res.Disclosed)
			_, submits := ex.counts()
			assert.Zero(t, submits)
			assert.Equal(t, domain.SwapStateTerminal, sw.State())

			_, err = swap.VaultOf(sw).Reveal(0)
			assert.ErrorIs(t, err, domain.ErrUnknownIndex, "secrets wiped on exit")
		})
	}
}

func TestAwait_PendingForeverRunsUntilCancelled(t *testing.T) {
	ex := newExchange(2, step{status: domain.OrderStatusPending})
	svc, m := newService(t, ex, nil, fastPolling)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.Execute(ctx, request())
	require.ErrorIs(t, err, domain.ErrCancelled)
	ready, _ := ex.counts()
	assert.Greater(t, ready, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("cancelled")))
}

func TestAwait_CancellationStopsCallsAndWipes(t *testing.T) {
	ex := newExchange(2,
		step{ready: []uint64{0}},
		step{ready: []uint64{1}},
		step{status: domain.OrderStatusExecuted},
	)
	store := &memStore{}
	svc, _ := newService(t, ex, store, fastPolling)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex.onAccept = func(uint64) { cancel() }

	sw, err := svc.Place(ctx, request())
	require.NoError(t, err)
	_, err = sw.Await(ctx)
	require.ErrorIs(t, err, domain.ErrCancelled)

	assert.Equal(t, []uint64{0}, sw.Disclosed())
	assert.Equal(t, domain.SwapStateCancelled, sw.State())
	ready, submits := ex.counts()
	assert.Equal(t, 1, ready)
	assert.Equal(t, 1, submits)

	for i := uint64(0); i < 2; i++ {
		_, err := swap.VaultOf(sw).Reveal(i)
		assert.ErrorIs(t, err, domain.ErrUnknownIndex)
	}

	rec, ok, _ := store.LoadSwap(testOrderHash)
	require.True(t, ok)
	assert.Equal(t, domain.SwapStateCancelled, rec.State)
	assert.Contains(t, rec.Error, "cancelled")
}

func TestAwait_EndedSwapReplaysOutcome(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ex := newExchange(2,
			step{ready: []uint64{0}},
			step{ready: []uint64{1}},
			step{status: domain.OrderStatusExecuted},
		)
		store := &memStore{}
		svc, m := newService(t, ex, store, fastPolling)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ex.onAccept = func(uint64) { cancel() }

		sw, err := svc.Place(ctx, request())
		require.NoError(t, err)
		_, first := sw.Await(ctx)
		require.ErrorIs(t, first, domain.ErrCancelled)
		ready, submits := ex.counts()
		writes := len(store.states())

		_, err = sw.Await(context.Background())
		require.ErrorIs(t, err, domain.ErrCancelled)
		assert.Equal(t, first.Error(), err.Error())

		r2, s2 := ex.counts()
		assert.Equal(t, ready, r2)
		assert.Equal(t, submits, s2)
		assert.Equal(t, domain.SwapStateCancelled, sw.State())
		assert.Len(t, store.states(), writes)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("cancelled")))
		assert.Zero(t, testutil.ToFloat64(m.Swaps.WithLabelValues("failed")))

		rec, ok, _ := store.LoadSwap(testOrderHash)
		require.True(t, ok)
		assert.Equal(t, domain.SwapStateCancelled, rec.State)
	})

	t.Run("terminal", func(t *testing.T) {
		ex := newExchange(1,
			step{ready: []uint64{0}},
			step{status: domain.OrderStatusExecuted},
		)
		svc, m := newService(t, ex, nil, fastPolling)

		sw, err := svc.Place(context.Background(), request())
		require.NoError(t, err)
		first, err := sw.Await(context.Background())
		require.NoError(t, err)
		ready, submits := ex.counts()

		again, err := sw.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)

		r2, s2 := ex.counts()
		assert.Equal(t, ready, r2)
		assert.Equal(t, submits, s2)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("executed")))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.Polls))
	})
}

func TestAwait_FailedSecretIsRetried(t *testing.T) {
	ex := newExchange(1,
		step{ready: []uint64{0}},
		step{ready: []uint64{0}},
		step{status: domain.OrderStatusExecuted},
	)
	ex.submitErrs = []error{errors.New("relayer busy")}
	svc, m := newService(t, ex, nil, fastPolling)

	res, err := svc.Execute(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res.Disclosed)
	assert.Equal(t, []uint64{0}, ex.accepted)
	_, submits := ex.counts()
	assert.Equal(t, 2, submits)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecretsSubmitted))
}

func TestAwait_TransientErrorsAreTolerated(t *testing.T) {
	ex := newExchange(1,
		step{readyErr: errors.New("502 bad gateway")},
		step{statusErr: errors.New("connection reset")},
		step{status: "cancelled"},
		step{ready: []uint64{0}},
		step{status: domain.OrderStatusExecuted},
	)
	svc, m := newService(t, ex, nil, fastPolling)

	res, err := svc.Execute(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusExecuted, res.Status)
	assert.Equal(t, []uint64{0}, res.Disclosed)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PollFailures))
}

func TestAwait_PollingExhaustedKeepsSecrets(t *testing.T) {
	ex := newExchange(2, step{readyErr: errors.New("timeout")})
	svc, _ := newService(t, ex, nil, swap.Config{
		PollInterval:    time.Millisecond,
		MaxPollInterval: 2 * time.Millisecond,
		MaxPollFailures: 2,
	})

	sw, err := svc.Place(context.Background(), request())
	require.NoError(t, err)
	defer sw.Close()

	_, err = sw.Await(context.Background())
	require.ErrorIs(t, err, domain.ErrPollingExhausted)
	ready, _ := ex.counts()
	assert.Equal(t, 3, ready)

	_, err = swap.VaultOf(sw).Reveal(1)
	require.NoError(t, err, "secrets kept for a later Await")

	ex.setSteps(
		step{ready: []uint64{0, 1}},
		step{status: domain.OrderStatusExecuted},
	)
	res, err := sw.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, res.Disclosed)
}

func TestAwait_UnknownIndexIsFatal(t *testing.T) {
	ex := newExchange(1, step{ready: []uint64{5}})
	svc, _ := newService(t, ex, nil, fastPolling)

	sw, err := svc.Place(context.Background(), request())
	require.NoError(t, err)
	_, err = sw.Await(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownIndex)
	assert.Equal(t, domain.SwapStateFailed, sw.State())
	ready, submits := ex.counts()
	assert.Equal(t, 1, ready)
	assert.Zero(t, submits)
}

func TestAwait_ClosedSwap(t *testing.T) {
	ex := newExchange(1, step{status: domain.OrderStatusExecuted})
	svc, _ := newService(t, ex, nil, fastPolling)

	sw, err := svc.Place(context.Background(), request())
	require.NoError(t, err)
	sw.Close()
	sw.Close()

	_, err = sw.Await(context.Background())
	require.Error(t, err)
	ready, _ := ex.counts()
	assert.Zero(t, ready)
}

func TestPlace_QuoteFailures(t *testing.T) {
	t.Run("exchange error", func(t *testing.T) {
		ex := newExchange(1)
		ex.quoteErr = errors.New("insufficient liquidity")
		svc, m := newService(t, ex, nil, fastPolling)

		_, err := svc.Execute(context.Background(), request())
		require.ErrorIs(t, err, domain.ErrQuoteUnavailable)
		assert.Zero(t, ex.orderCalls)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("quote_unavailable")))
	})

	t.Run("preset not offered", func(t *testing.T) {
		ex := newExchange(1)
		svc, _ := newService(t, ex, nil, fastPolling)
		req := request()
		req.Preset = domain.PresetSlow

		_, err := svc.Place(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrQuoteUnavailable)
		assert.Zero(t, ex.orderCalls)
	})
}

func TestPlace_InvalidSecretsCount(t *testing.T) {
	ex := newExchange(0)
	svc, _ := newService(t, ex, nil, fastPolling)

	_, err := svc.Place(context.Background(), request())
	require.ErrorIs(t, err, domain.ErrInvalidCount)
	assert.Zero(t, ex.orderCalls)
}

func TestPlace_SubmissionFailed(t *testing.T) {
	ex := newExchange(2)
	ex.orderErr = errors.New("invalid signature")
	store := &memStore{}
	svc, _ := newService(t, ex, store, fastPolling)

	_, err := svc.Place(context.Background(), request())
	require.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Empty(t, store.history)
}

func TestPlace_InvalidAmount(t *testing.T) {
	ex := newExchange(1)
	svc, _ := newService(t, ex, nil, fastPolling)
	req := request()
	req.Amount = uint256.NewInt(0)

	_, err := svc.Place(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Zero(t, ex.quoteCalls)
}

func TestPlace_AlreadyCancelled(t *testing.T) {
	ex := newExchange(1)
	svc, _ := newService(t, ex, nil, fastPolling)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Place(ctx, request())
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.Zero(t, ex.quoteCalls)
}

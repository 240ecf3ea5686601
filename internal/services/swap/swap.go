package swap

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fusionswap/internal/domain"
	"fusionswap/internal/services/vault"
)

var errClosed = errors.New("swap closed")

// Swap is one submitted order awaiting its fills.
type Swap struct {
	svc     *Service
	vault   *vault.Vault
	receipt domain.OrderReceipt
	lock    domain.HashLock
	hashes  []domain.SecretHash
	started time.Time
	log     *zap.Logger

	mu        sync.Mutex
	disclosed map[uint64]struct{}
	state     domain.SwapState
	status    domain.OrderStatus
	record    domain.SwapRecord
	closed    bool

	// Set once the swap ends; later Await calls replay them.
	ended  bool
	result domain.SwapResult
	endErr error
}

// OrderHash returns the order's identity at the exchange service.
func (sw *Swap) OrderHash() domain.OrderHash { return sw.receipt.OrderHash }

// QuoteID returns the quote the order was built from.
func (sw *Swap) QuoteID() domain.QuoteID { return sw.receipt.QuoteID }

// HashLock returns the hash-lock committed in the order.
func (sw *Swap) HashLock() domain.HashLock { return sw.lock }

// SecretHashes returns the public secret hashes in index order.
func (sw *Swap) SecretHashes() []domain.SecretHash {
	return slices.Clone(sw.hashes)
}

// State returns the coordinator state.
func (sw *Swap) State() domain.SwapState {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.state
}

// Status returns the last order status seen.
func (sw *Swap) Status() domain.OrderStatus {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.status
}

// Disclosed returns the indices whose secrets were accepted, ascending.
func (sw *Swap) Disclosed() []uint64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.disclosedLocked()
}

func (sw *Swap) disclosedLocked() []uint64 {
	out := make([]uint64, 0, len(sw.disclosed))
	for i := range sw.disclosed {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Close wipes the secrets. A closed swap cannot be awaited again. Close does
// not cancel the order at the exchange service.
func (sw *Swap) Close() {
	sw.mu.Lock()
	sw.closed = true
	sw.mu.Unlock()
	sw.vault.Wipe()
}

// Await polls the exchange service until the order reaches a terminal status.
//
// Each iteration reads the ready fills and the order status concurrently.
// A terminal status ends the loop before anything else is disclosed;
// otherwise every ready index not yet disclosed gets its secret submitted,
// in ascending order. An index is marked disclosed only after the exchange
// accepts it, so a failed submission is retried on the next report.
//
// Errors:
//   - ErrCancelled when ctx ends; secrets are wiped.
//   - ErrPollingExhausted after Config.MaxPollFailures consecutive failed
//     iterations; secrets are kept and Await may be called again.
//   - ErrUnknownIndex when the exchange reports an index outside the
//     order; secrets are wiped.
//
// Once the swap has ended (terminal status, cancellation or failure) Await
// returns the same outcome again without contacting the exchange service.
func (sw *Swap) Await(ctx context.Context) (domain.SwapResult, error) {
	sw.mu.Lock()
	closed, ended := sw.closed, sw.ended
	res, endErr := sw.result, sw.endErr
	sw.mu.Unlock()
	if ended {
		res.Disclosed = slices.Clone(res.Disclosed)
		return res, endErr
	}
	if closed {
		return domain.SwapResult{}, errClosed
	}

	cfg := sw.svc.cfg
	m := sw.svc.metrics
	sw.setState(domain.SwapStateAwaitingFills, "")
	sw.log.Info("awaiting fills", zap.Int("secrets_count", len(sw.hashes)))

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return domain.SwapResult{}, sw.cancel(err)
		}

		ready, status, err := sw.poll(ctx)
		m.Polls.Inc()
		if err == nil {
			sw.observe(status)
			if status.IsTerminal() {
				return sw.finish(status), nil
			}
			err = sw.disclose(ctx, ready)
		}

		if err != nil {
			if ctx.Err() != nil {
				return domain.SwapResult{}, sw.cancel(ctx.Err())
			}
			if errors.Is(err, domain.ErrUnknownIndex) {
				return domain.SwapResult{}, sw.fail(err)
			}
			failures++
			m.PollFailures.Inc()
			sw.log.Warn("polling iteration failed",
				zap.Int("consecutive_failures", failures),
				zap.Error(err),
			)
			if failures > cfg.MaxPollFailures {
				err = errors.Wrapf(domain.ErrPollingExhausted, "%d consecutive failures, last: %v", failures, err)
				sw.setState(domain.SwapStateAwaitingFills, err.Error())
				m.Swaps.WithLabelValues("polling_exhausted").Inc()
				return domain.SwapResult{}, err
			}
		} else {
			failures = 0
		}

		if err := sleep(ctx, backoff(cfg, failures)); err != nil {
			return domain.SwapResult{}, sw.cancel(err)
		}
	}
}

// poll issues the two per-iteration reads concurrently.
func (sw *Swap) poll(ctx context.Context) ([]domain.ReadyFill, domain.OrderStatus, error) {
	var (
		ready  []domain.ReadyFill
		status domain.OrderStatus
	)
	ex := sw.svc.exchange
	hash := sw.receipt.OrderHash

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := ex.ReadyToAcceptSecretFills(gctx, hash)
		if err != nil {
			return errors.Wrap(err, "ready fills")
		}
		ready = r
		return nil
	})
	g.Go(func() error {
		st, err := ex.OrderStatus(gctx, hash)
		if err != nil {
			return errors.Wrap(err, "order status")
		}
		if !st.Valid() {
			return errors.Errorf("order status: unknown value %q", st)
		}
		status = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return ready, status, nil
}

// disclose submits the secret of every ready index not yet disclosed.
func (sw *Swap) disclose(ctx context.Context, ready []domain.ReadyFill) error {
	if len(ready) == 0 {
		return nil
	}
	fills := slices.Clone(ready)
	slices.SortStableFunc(fills, func(a, b domain.ReadyFill) int {
		switch {
		case a.Index < b.Index:
			return -1
		case a.Index > b.Index:
			return 1
		default:
			return 0
		}
	})

	for _, f := range fills {
		if sw.isDisclosed(f.Index) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		secret, err := sw.vault.Reveal(f.Index)
		if err != nil {
			return err
		}
		err = sw.svc.exchange.SubmitSecret(ctx, sw.receipt.OrderHash, secret)
		secret.Wipe()
		if err != nil {
			return errors.Wrapf(err, "submit secret %d", f.Index)
		}

		sw.mu.Lock()
		sw.disclosed[f.Index] = struct{}{}
		sw.mu.Unlock()
		sw.svc.metrics.SecretsSubmitted.Inc()
		sw.log.Info("secret submitted",
			zap.Uint64("index", f.Index),
			zap.String("secret_hash", sw.hashes[f.Index].Hex()),
			zap.String("src_escrow_tx", f.SrcEscrowDeployTxHash),
			zap.String("dst_escrow_tx", f.DstEscrowDeployTxHash),
		)
		sw.save()
	}
	return nil
}

func (sw *Swap) isDisclosed(index uint64) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	_, ok := sw.disclosed[index]
	return ok
}

// observe records a status change.
func (sw *Swap) observe(status domain.OrderStatus) {
	sw.mu.Lock()
	changed := sw.status != status
	sw.status = status
	sw.mu.Unlock()
	if changed {
		sw.log.Info("order status changed", zap.Stringer("status", status))
		sw.save()
	}
}

func (sw *Swap) finish(status domain.OrderStatus) domain.SwapResult {
	sw.vault.Wipe()
	sw.setState(domain.SwapStateTerminal, "")
	elapsed := time.Since(sw.started)

	m := sw.svc.metrics
	m.Swaps.WithLabelValues(status.String()).Inc()
	m.Duration.Observe(elapsed.Seconds())

	res := domain.SwapResult{
		OrderHash:    sw.receipt.OrderHash,
		QuoteID:      sw.receipt.QuoteID,
		Status:       status,
		SecretsCount: len(sw.hashes),
		Disclosed:    sw.Disclosed(),
		Elapsed:      elapsed,
	}
	sw.log.Info("swap finished",
		zap.Stringer("status", status),
		zap.Int("disclosed", len(res.Disclosed)),
		zap.Duration("elapsed", elapsed),
	)
	sw.end(res, nil)
	return res
}

func (sw *Swap) cancel(cause error) error {
	sw.vault.Wipe()
	err := cancelled(cause)
	sw.setState(domain.SwapStateCancelled, err.Error())
	sw.svc.metrics.Swaps.WithLabelValues("cancelled").Inc()
	sw.log.Info("swap cancelled", zap.Int("disclosed", len(sw.Disclosed())))
	sw.end(domain.SwapResult{}, err)
	return err
}

func (sw *Swap) fail(err error) error {
	sw.vault.Wipe()
	sw.setState(domain.SwapStateFailed, err.Error())
	sw.svc.metrics.Swaps.WithLabelValues("failed").Inc()
	sw.log.Error("swap failed", zap.Error(err))
	sw.end(domain.SwapResult{}, err)
	return err
}

func (sw *Swap) end(res domain.SwapResult, err error) {
	sw.mu.Lock()
	sw.ended = true
	sw.result = res
	sw.endErr = err
	sw.mu.Unlock()
}

func (sw *Swap) setState(state domain.SwapState, reason string) {
	sw.mu.Lock()
	sw.state = state
	sw.record.Error = reason
	sw.mu.Unlock()
	sw.save()
}

// save writes the journal record. The journal is best effort: a failed write
// is logged and the swap carries on.
func (sw *Swap) save() {
	store := sw.svc.store
	if store == nil {
		return
	}
	sw.mu.Lock()
	rec := sw.record
	rec.State = sw.state
	rec.Status = sw.status
	rec.Disclosed = sw.disclosedLocked()
	rec.SecretHashes = slices.Clone(rec.SecretHashes)
	rec.UpdatedUTC = time.Now().Unix()
	sw.mu.Unlock()

	if err := store.SaveSwap(rec); err != nil {
		sw.log.Warn("journal write failed", zap.Error(err))
	}
}

// backoff doubles the poll interval per consecutive failure up to the cap.
func backoff(cfg Config, failures int) time.Duration {
	d := cfg.PollInterval
	for i := 0; i < failures && d < cfg.MaxPollInterval; i++ {
		d *= 2
	}
	return min(d, cfg.MaxPollInterval)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

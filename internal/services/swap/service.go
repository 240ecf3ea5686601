package swap

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fusionswap/internal/domain"
	"fusionswap/internal/logging"
	"fusionswap/internal/metrics"
	"fusionswap/internal/protocol/hashlock"
	"fusionswap/internal/services/vault"
)

// Defaults for Config fields left at zero.
const (
	DefaultPollInterval    = time.Second
	DefaultMaxPollInterval = 30 * time.Second
	DefaultMaxPollFailures = 10
)

// Config tunes the polling loop.
type Config struct {
	// PollInterval is the wait between polling iterations.
	PollInterval time.Duration
	// MaxPollInterval caps the wait after consecutive failures, which
	// doubles it each time.
	MaxPollInterval time.Duration
	// MaxPollFailures is how many consecutive failed iterations are
	// tolerated before Await gives up with ErrPollingExhausted.
	MaxPollFailures int
	// Rand is the secret entropy source; nil uses crypto/rand.
	Rand io.Reader
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollInterval < c.PollInterval {
		c.MaxPollInterval = DefaultMaxPollInterval
		if c.MaxPollInterval < c.PollInterval {
			c.MaxPollInterval = c.PollInterval
		}
	}
	if c.MaxPollFailures <= 0 {
		c.MaxPollFailures = DefaultMaxPollFailures
	}
	return c
}

// Service places orders and drives them to a terminal status.
//
// Each swap gets its own vault, hash-lock and disclosed set; a Service holds
// no per-swap state and may run any number of swaps concurrently.
type Service struct {
	exchange domain.ExchangeService
	store    domain.SwapStore
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Swap
}

// New constructs a swap Service. store, log and m may be nil.
func New(
	exchange domain.ExchangeService,
	store domain.SwapStore,
	cfg Config,
	log *zap.Logger,
	m *metrics.Swap,
) *Service {
	if m == nil {
		m = metrics.NewSwap(nil)
	}
	return &Service{
		exchange: exchange,
		store:    store,
		cfg:      cfg.withDefaults(),
		log:      logging.OrNop(log),
		metrics:  m,
	}
}

// Execute places the order described by req and awaits its terminal status.
// Secrets are wiped before Execute returns, whatever the outcome.
func (s *Service) Execute(ctx context.Context, req domain.SwapRequest) (domain.SwapResult, error) {
	sw, err := s.Place(ctx, req)
	if err != nil {
		return domain.SwapResult{}, err
	}
	defer sw.Close()
	return sw.Await(ctx)
}

// Place quotes, commits and submits the order described by req.
//
// Steps:
//  1. Fetch a quote for the route and select the preset (the request's, or
//     the quote's recommendation).
//  2. Generate preset.SecretsCount secrets and derive the hash-lock.
//  3. Submit the order with the hash-lock and secret hashes.
//
// Nothing has been committed anywhere when Place fails, and the secrets are
// already wiped.
func (s *Service) Place(ctx context.Context, req domain.SwapRequest) (*Swap, error) {
	started := time.Now()
	log := s.log.With(zap.String("route", req.Route.Name))

	if req.Amount == nil || req.Amount.IsZero() {
		return nil, errors.Wrap(domain.ErrInvalidAmount, "amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, s.abort(cancelled(err), "cancelled")
	}

	// Quoting.
	log.Debug("requesting quote", zap.Stringer("state", domain.SwapStateQuoting))
	q, err := s.exchange.GetQuote(ctx, domain.QuoteRequest{
		Route:          req.Route,
		Amount:         req.Amount,
		Wallet:         req.Wallet,
		EnableEstimate: true,
		Source:         req.Source,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.abort(cancelled(ctx.Err()), "cancelled")
		}
		return nil, s.abort(errors.Wrapf(domain.ErrQuoteUnavailable, "route %s: %v", req.Route.Name, err), "quote_unavailable")
	}
	presetName, preset, ok := q.Preset(req.Preset)
	if !ok {
		return nil, s.abort(errors.Wrapf(domain.ErrQuoteUnavailable, "preset %q not offered by quote %s", presetName, q.ID), "quote_unavailable")
	}
	log = log.With(
		zap.String("quote_id", q.ID.String()),
		zap.String("preset", presetName.String()),
		zap.Int("secrets_count", preset.SecretsCount),
	)

	// Committing.
	log.Debug("generating secrets", zap.Stringer("state", domain.SwapStateCommitting))
	v := vault.New(s.cfg.Rand)
	fills, err := v.Generate(preset.SecretsCount)
	if err != nil {
		return nil, s.abort(err, "failed")
	}
	lock, err := hashlock.Build(fills)
	hashes := fills.Hashes()
	fills.Wipe()
	if err != nil {
		v.Wipe()
		return nil, s.abort(err, "failed")
	}

	// Submitting.
	log.Debug("submitting order",
		zap.Stringer("state", domain.SwapStateSubmitting),
		zap.Stringer("hash_lock_kind", lock.Kind),
		zap.String("hash_lock", lock.Hex()),
	)
	receipt, err := s.exchange.SubmitOrder(ctx, domain.OrderRequest{
		Quote:        q,
		Wallet:       req.Wallet,
		HashLock:     lock,
		SecretHashes: hashes,
		Preset:       presetName,
		Fee:          req.Fee,
		Source:       req.Source,
	})
	if err != nil {
		v.Wipe()
		if ctx.Err() != nil {
			return nil, s.abort(cancelled(ctx.Err()), "cancelled")
		}
		return nil, s.abort(errors.Wrapf(domain.ErrSubmissionFailed, "%v", err), "submission_failed")
	}
	if receipt.QuoteID == "" {
		receipt.QuoteID = q.ID
	}

	log = log.With(zap.String("order_hash", receipt.OrderHash.String()))
	log.Info("order submitted", zap.String("hash_lock", lock.Hex()))

	sw := &Swap{
		svc:       s,
		vault:     v,
		receipt:   receipt,
		lock:      lock,
		hashes:    hashes,
		disclosed: make(map[uint64]struct{}, len(hashes)),
		state:     domain.SwapStateSubmitting,
		status:    domain.OrderStatusPending,
		started:   started,
		log:       log,
		record: domain.SwapRecord{
			OrderHash:    receipt.OrderHash,
			QuoteID:      receipt.QuoteID,
			Route:        req.Route.Name,
			SrcChainID:   req.Route.SrcChainID,
			DstChainID:   req.Route.DstChainID,
			Amount:       req.Amount.Dec(),
			Preset:       presetName,
			HashLock:     lock.Hex(),
			SecretHashes: hexHashes(hashes),
			CreatedUTC:   started.Unix(),
		},
	}
	sw.save()
	return sw, nil
}

// abort counts a swap that ended before an order existed.
func (s *Service) abort(err error, outcome string) error {
	s.metrics.Swaps.WithLabelValues(outcome).Inc()
	s.log.Warn("swap aborted", zap.String("outcome", outcome), zap.Error(err))
	return err
}

func cancelled(cause error) error {
	return errors.Wrap(domain.ErrCancelled, cause.Error())
}

func hexHashes(hashes []domain.SecretHash) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.Hex()
	}
	return out
}

// Compile-time assertion that Service implements domain.SwapService.
var _ domain.SwapService = (*Service)(nil)

package sim

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/logging"
	"fusionswap/internal/metrics"
	"fusionswap/internal/protocol/hashlock"
)

// Simulator errors.
var (
	ErrUnknownToken    = errors.New("unknown token")
	ErrUnknownQuote    = errors.New("unknown quote")
	ErrUnknownOrder    = errors.New("unknown order")
	ErrBadOrder        = errors.New("malformed order")
	ErrBadSignature    = errors.New("signature does not match maker")
	ErrOrderClosed     = errors.New("order closed")
	ErrNotReady        = errors.New("fill not ready for secret")
	ErrAlreadyRevealed = errors.New("secret already submitted")
	ErrSecretMismatch  = errors.New("secret matches no fill")
)

// Token is a priced token known to the quoter.
type Token struct {
	Symbol   string
	Decimals uint8
	PriceUSD decimal.Decimal
}

// Config shapes simulator behaviour.
type Config struct {
	Tokens            map[domain.Address]Token
	Presets           map[domain.PresetName]domain.Preset
	RecommendedPreset domain.PresetName
	// ExpireAfterPolls ends an unfinished order after that many status
	// polls; 0 never expires.
	ExpireAfterPolls int
	// APIKey, when set, is required as a bearer token on every request.
	APIKey string
}

// DefaultConfig prices WETH and USDC on Optimism and Arbitrum and offers the
// usual fast, medium and slow presets.
func DefaultConfig() Config {
	usd := decimal.NewFromInt(1)
	eth := decimal.NewFromInt(2500)
	return Config{
		Tokens: map[domain.Address]Token{
			common.HexToAddress("0x4200000000000000000000000000000000000006"): {Symbol: "WETH", Decimals: 18, PriceUSD: eth},
			common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"): {Symbol: "WETH", Decimals: 18, PriceUSD: eth},
			common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"): {Symbol: "USDC", Decimals: 6, PriceUSD: usd},
			common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"): {Symbol: "USDC", Decimals: 6, PriceUSD: usd},
		},
		Presets: map[domain.PresetName]domain.Preset{
			domain.PresetFast:   {SecretsCount: 1, AuctionDuration: 3 * time.Minute},
			domain.PresetMedium: {SecretsCount: 2, AuctionDuration: 6 * time.Minute, AllowPartialFills: true, AllowMultipleFills: true},
			domain.PresetSlow:   {SecretsCount: 4, AuctionDuration: 10 * time.Minute, AllowPartialFills: true, AllowMultipleFills: true},
		},
		RecommendedPreset: domain.PresetFast,
	}
}

type order struct {
	hash     domain.OrderHash
	quote    domain.Quote
	maker    domain.Address
	lock     domain.HashLock
	hashes   []domain.SecretHash
	deployed int
	revealed map[uint64]bool
	status   domain.OrderStatus
	polls    int
}

// Exchange is the simulated exchange service.
type Exchange struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Exchange

	mu       sync.Mutex
	quotes   map[domain.QuoteID]domain.Quote
	orders   map[domain.OrderHash]*order
	quoteSeq uint64
}

// New returns an empty simulator. log and m may be nil.
func New(cfg Config, log *zap.Logger, m *metrics.Exchange) *Exchange {
	if m == nil {
		m = metrics.NewExchange(nil)
	}
	return &Exchange{
		cfg:     cfg,
		log:     logging.OrNop(log),
		metrics: m,
		quotes:  make(map[domain.QuoteID]domain.Quote),
		orders:  make(map[domain.OrderHash]*order),
	}
}

// GetQuote prices req from the configured token prices.
func (e *Exchange) GetQuote(_ context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	src, ok := e.cfg.Tokens[req.Route.SrcToken]
	if !ok {
		return domain.Quote{}, errors.Wrapf(ErrUnknownToken, "source %s", req.Route.SrcToken.Hex())
	}
	dst, ok := e.cfg.Tokens[req.Route.DstToken]
	if !ok {
		return domain.Quote{}, errors.Wrapf(ErrUnknownToken, "destination %s", req.Route.DstToken.Hex())
	}
	if req.Amount == nil || req.Amount.IsZero() {
		return domain.Quote{}, errors.Wrap(domain.ErrInvalidAmount, "amount must be positive")
	}
	if dst.PriceUSD.IsZero() {
		return domain.Quote{}, errors.Wrapf(ErrUnknownToken, "destination %s has no price", dst.Symbol)
	}

	in := decimal.NewFromBigInt(req.Amount.ToBig(), -int32(src.Decimals))
	out := in.Mul(src.PriceUSD).Div(dst.PriceUSD).Shift(int32(dst.Decimals)).Truncate(0)
	dstAmount, overflow := uint256.FromBig(out.BigInt())
	if overflow {
		return domain.Quote{}, errors.Wrap(domain.ErrInvalidAmount, "destination amount overflows")
	}

	route := req.Route
	route.SrcDecimals, route.DstDecimals = src.Decimals, dst.Decimals

	e.mu.Lock()
	defer e.mu.Unlock()
	e.quoteSeq++
	q := domain.Quote{
		ID:                domain.QuoteID("sim-quote-" + strconv.FormatUint(e.quoteSeq, 10)),
		Route:             route,
		SrcAmount:         new(uint256.Int).Set(req.Amount),
		DstAmount:         dstAmount,
		RecommendedPreset: e.cfg.RecommendedPreset,
		Presets:           e.cfg.Presets,
	}
	e.quotes[q.ID] = q
	e.log.Info("quote issued",
		zap.String("quote_id", q.ID.String()),
		zap.String("src", src.Symbol),
		zap.String("dst", dst.Symbol),
		zap.String("src_amount", q.SrcAmount.Dec()),
		zap.String("dst_amount", q.DstAmount.Dec()),
	)
	return q, nil
}

// SubmitOrder accepts an order for a previously issued quote. Each quote
// backs one order.
func (e *Exchange) SubmitOrder(_ context.Context, req domain.OrderRequest) (domain.OrderReceipt, error) {
	lock, err := hashlock.FromHashes(req.SecretHashes)
	if err != nil {
		return domain.OrderReceipt{}, errors.Wrap(ErrBadOrder, err.Error())
	}
	if lock.Value != req.HashLock.Value {
		return domain.OrderReceipt{}, errors.Wrap(ErrBadOrder, "hash-lock does not match secret hashes")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.quotes[req.Quote.ID]
	if !ok {
		return domain.OrderReceipt{}, errors.Wrapf(ErrUnknownQuote, "%s", req.Quote.ID)
	}
	preset, ok := q.Presets[req.Preset]
	if !ok {
		return domain.OrderReceipt{}, errors.Wrapf(ErrBadOrder, "preset %q not offered", req.Preset)
	}
	if len(req.SecretHashes) != preset.SecretsCount {
		return domain.OrderReceipt{}, errors.Wrapf(ErrBadOrder, "%d secret hashes, preset %s wants %d",
			len(req.SecretHashes), req.Preset, preset.SecretsCount)
	}
	delete(e.quotes, q.ID)

	hash := domain.OrderHash(crypto.Keccak256([]byte(q.ID), lock.Value[:], req.Wallet[:]).Hex())
	o := &order{
		hash:     hash,
		quote:    q,
		maker:    req.Wallet,
		lock:     lock,
		hashes:   append([]domain.SecretHash(nil), req.SecretHashes...),
		revealed: make(map[uint64]bool, len(req.SecretHashes)),
	}
	e.orders[hash] = o
	e.setStatus(o, domain.OrderStatusPending)
	e.log.Info("order accepted",
		zap.String("order_hash", hash.String()),
		zap.String("quote_id", q.ID.String()),
		zap.Stringer("hash_lock_kind", lock.Kind),
		zap.Int("secrets_count", len(o.hashes)),
	)
	return domain.OrderReceipt{OrderHash: hash, QuoteID: q.ID}, nil
}

// ReadyToAcceptSecretFills deploys the escrows of one more fill, then lists
// every deployed fill still waiting for its secret.
func (e *Exchange) ReadyToAcceptSecretFills(_ context.Context, hash domain.OrderHash) ([]domain.ReadyFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[hash]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOrder, "%s", hash)
	}
	if o.status.IsTerminal() {
		return nil, nil
	}
	if o.deployed < len(o.hashes) {
		o.deployed++
		e.log.Debug("escrows deployed", zap.String("order_hash", hash.String()), zap.Int("index", o.deployed-1))
	}

	var out []domain.ReadyFill
	for i := 0; i < o.deployed; i++ {
		idx := uint64(i)
		if o.revealed[idx] {
			continue
		}
		out = append(out, domain.ReadyFill{
			Index:                 idx,
			SrcEscrowDeployTxHash: escrowTx(hash, "src", idx),
			DstEscrowDeployTxHash: escrowTx(hash, "dst", idx),
		})
	}
	return out, nil
}

// SubmitSecret accepts the secret of a deployed fill.
func (e *Exchange) SubmitSecret(_ context.Context, hash domain.OrderHash, secret domain.Secret) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[hash]
	if !ok {
		return errors.Wrapf(ErrUnknownOrder, "%s", hash)
	}
	if o.status.IsTerminal() {
		return errors.Wrapf(ErrOrderClosed, "status %s", o.status)
	}

	h := crypto.HashSecret(secret)
	index := -1
	for i, want := range o.hashes {
		if want == h {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrSecretMismatch
	}
	idx := uint64(index)
	switch {
	case index >= o.deployed:
		return errors.Wrapf(ErrNotReady, "index %d", idx)
	case o.revealed[idx]:
		return errors.Wrapf(ErrAlreadyRevealed, "index %d", idx)
	case !hashlock.Matches(o.lock, idx, secret):
		return errors.Wrapf(ErrSecretMismatch, "index %d fails hash-lock proof", idx)
	}

	o.revealed[idx] = true
	if len(o.revealed) == len(o.hashes) {
		e.setStatus(o, domain.OrderStatusExecuted)
	} else {
		e.setStatus(o, domain.OrderStatusPartiallyFilled)
	}
	e.log.Info("secret accepted",
		zap.String("order_hash", hash.String()),
		zap.Uint64("index", idx),
		zap.Stringer("status", o.status),
	)
	return nil
}

// OrderStatus reports the order's status, expiring it once the configured
// number of polls has passed.
func (e *Exchange) OrderStatus(_ context.Context, hash domain.OrderHash) (domain.OrderStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[hash]
	if !ok {
		return "", errors.Wrapf(ErrUnknownOrder, "%s", hash)
	}
	o.polls++
	if e.cfg.ExpireAfterPolls > 0 && o.polls > e.cfg.ExpireAfterPolls && !o.status.IsTerminal() {
		if len(o.revealed) > 0 {
			e.setStatus(o, domain.OrderStatusRefunded)
		} else {
			e.setStatus(o, domain.OrderStatusExpired)
		}
		e.log.Info("order timed out", zap.String("order_hash", hash.String()), zap.Stringer("status", o.status))
	}
	return o.status, nil
}

// Maker returns the wallet that placed order hash.
func (e *Exchange) Maker(hash domain.OrderHash) (domain.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[hash]
	if !ok {
		return domain.Address{}, false
	}
	return o.maker, true
}

// setStatus moves o to status and keeps the gauge in step. Callers hold e.mu.
func (e *Exchange) setStatus(o *order, status domain.OrderStatus) {
	if o.status == status {
		return
	}
	if o.status != "" {
		e.metrics.Orders.WithLabelValues(o.status.String()).Dec()
	}
	o.status = status
	e.metrics.Orders.WithLabelValues(status.String()).Inc()
}

func escrowTx(hash domain.OrderHash, side string, index uint64) string {
	return crypto.Keccak256([]byte(hash), []byte(side), []byte(strconv.FormatUint(index, 10))).Hex()
}

var _ domain.ExchangeService = (*Exchange)(nil)

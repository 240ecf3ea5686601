package swap_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
)

var opArb = domain.Route{
	Name:        "op-arb",
	SrcChainID:  domain.ChainOptimism,
	DstChainID:  domain.ChainArbitrum,
	SrcToken:    common.HexToAddress("0x4200000000000000000000000000000000000006"),
	DstToken:    common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
	SrcDecimals: 18,
	DstDecimals: 6,
}

const testOrderHash = domain.OrderHash("0x6f72646572")

// step scripts one polling iteration. The last step repeats.
type step struct {
	ready     []uint64
	status    domain.OrderStatus
	readyErr  error
	statusErr error
}

// scriptedExchange replays steps and checks submitted secrets against the
// hashes of the submitted order.
type scriptedExchange struct {
	mu sync.Mutex

	quote      domain.Quote
	quoteErr   error
	orderErr   error
	quoteCalls int
	orderCalls int
	order      domain.OrderRequest

	steps       []step
	readyCalls  int
	statusCalls int

	submitErrs  []error
	submitCalls int
	accepted    []uint64
	secrets     map[uint64]domain.Secret
	onAccept    func(index uint64)
}

func newExchange(secretsCount int, steps ...step) *scriptedExchange {
	return &scriptedExchange{
		quote: domain.Quote{
			ID:                "quote-1",
			Route:             opArb,
			SrcAmount:         uint256.NewInt(500_000_000_000_000),
			DstAmount:         uint256.NewInt(1_250_000),
			RecommendedPreset: domain.PresetFast,
			Presets: map[domain.PresetName]domain.Preset{
				domain.PresetFast: {SecretsCount: secretsCount},
			},
		},
		steps:   steps,
		secrets: map[uint64]domain.Secret{},
	}
}

func (e *scriptedExchange) setSteps(steps ...step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps = steps
	e.readyCalls, e.statusCalls = 0, 0
}

func (e *scriptedExchange) at(n int) step {
	if len(e.steps) == 0 {
		return step{status: domain.OrderStatusPending}
	}
	if n >= len(e.steps) {
		n = len(e.steps) - 1
	}
	return e.steps[n]
}

func (e *scriptedExchange) GetQuote(_ context.Context, _ domain.QuoteRequest) (domain.Quote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.quoteCalls++
	if e.quoteErr != nil {
		return domain.Quote{}, e.quoteErr
	}
	return e.quote, nil
}

func (e *scriptedExchange) SubmitOrder(_ context.Context, req domain.OrderRequest) (domain.OrderReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderCalls++
	if e.orderErr != nil {
		return domain.OrderReceipt{}, e.orderErr
	}
	e.order = req
	return domain.OrderReceipt{OrderHash: testOrderHash, QuoteID: req.Quote.ID}, nil
}

func (e *scriptedExchange) ReadyToAcceptSecretFills(_ context.Context, _ domain.OrderHash) ([]domain.ReadyFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.at(e.readyCalls)
	e.readyCalls++
	if s.readyErr != nil {
		return nil, s.readyErr
	}
	out := make([]domain.ReadyFill, len(s.ready))
	for i, idx := range s.ready {
		out[i] = domain.ReadyFill{Index: idx, SrcEscrowDeployTxHash: "0xsrc", DstEscrowDeployTxHash: "0xdst"}
	}
	return out, nil
}

func (e *scriptedExchange) OrderStatus(_ context.Context, _ domain.OrderHash) (domain.OrderStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.at(e.statusCalls)
	e.statusCalls++
	if s.statusErr != nil {
		return "", s.statusErr
	}
	if s.status == "" {
		return domain.OrderStatusPending, nil
	}
	return s.status, nil
}

func (e *scriptedExchange) SubmitSecret(_ context.Context, _ domain.OrderHash, secret domain.Secret) error {
	e.mu.Lock()
	call := e.submitCalls
	e.submitCalls++
	if call < len(e.submitErrs) && e.submitErrs[call] != nil {
		err := e.submitErrs[call]
		e.mu.Unlock()
		return err
	}
	h := crypto.HashSecret(secret)
	index := -1
	for i, want := range e.order.SecretHashes {
		if want == h {
			index = i
		}
	}
	if index < 0 {
		e.mu.Unlock()
		return errors.New("secret matches no hash of the order")
	}
	e.accepted = append(e.accepted, uint64(index))
	e.secrets[uint64(index)] = secret
	hook := e.onAccept
	e.mu.Unlock()

	if hook != nil {
		hook(uint64(index))
	}
	return nil
}

func (e *scriptedExchange) counts() (ready, submits int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readyCalls, e.submitCalls
}

// memStore keeps every saved record version.
type memStore struct {
	mu      sync.Mutex
	history []domain.SwapRecord
}

func (s *memStore) SaveSwap(rec domain.SwapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, rec)
	return nil
}

func (s *memStore) LoadSwap(hash domain.OrderHash) (domain.SwapRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].OrderHash == hash {
			return s.history[i], true, nil
		}
	}
	return domain.SwapRecord{}, false, nil
}

func (s *memStore) ListSwaps() ([]domain.SwapRecord, error) {
	rec, ok, _ := s.LoadSwap(testOrderHash)
	if !ok {
		return nil, nil
	}
	return []domain.SwapRecord{rec}, nil
}

func (s *memStore) states() []domain.SwapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SwapState
	for _, r := range s.history {
		if len(out) == 0 || out[len(out)-1] != r.State {
			out = append(out, r.State)
		}
	}
	return out
}

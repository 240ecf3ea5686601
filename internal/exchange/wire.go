package exchange

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
)

// Request paths.
const (
	PathQuote        = "/quoter/v1.0/quote/receive"
	PathSubmitOrder  = "/relayer/v1.0/submit"
	PathSubmitSecret = "/relayer/v1.0/submit/secret"
	PathReadyFills   = "/orders/v1.0/order/ready-to-accept-secret-fills/"
	PathOrderStatus  = "/orders/v1.0/order/status/"
)

// QuoteResponse is the body of a quote.
type QuoteResponse struct {
	QuoteID           string                `json:"quoteId"`
	SrcTokenAmount    string                `json:"srcTokenAmount"`
	DstTokenAmount    string                `json:"dstTokenAmount"`
	RecommendedPreset string                `json:"recommendedPreset"`
	Presets           map[string]PresetWire `json:"presets"`
}

// PresetWire is a preset as sent by the quoter. AuctionDuration is in seconds.
type PresetWire struct {
	SecretsCount       int   `json:"secretsCount"`
	AuctionDuration    int64 `json:"auctionDuration"`
	AllowPartialFills  bool  `json:"allowPartialFills"`
	AllowMultipleFills bool  `json:"allowMultipleFills"`
}

// FeeWire is the optional integrator fee.
type FeeWire struct {
	TakingFeeBps      uint16 `json:"takingFeeBps"`
	TakingFeeReceiver string `json:"takingFeeReceiver"`
}

// OrderSubmission is the body of an order submission.
type OrderSubmission struct {
	QuoteID         string   `json:"quoteId"`
	SrcChainID      uint64   `json:"srcChainId"`
	DstChainID      uint64   `json:"dstChainId"`
	WalletAddress   string   `json:"walletAddress"`
	SrcTokenAddress string   `json:"srcTokenAddress"`
	DstTokenAddress string   `json:"dstTokenAddress"`
	Amount          string   `json:"amount"`
	HashLock        string   `json:"hashLock"`
	SecretHashes    []string `json:"secretHashes"`
	Preset          string   `json:"preset"`
	Fee             *FeeWire `json:"fee,omitempty"`
	Source          string   `json:"source,omitempty"`
	Signature       string   `json:"signature,omitempty"`
}

// OrderAccepted is the response to an order submission.
type OrderAccepted struct {
	OrderHash string `json:"orderHash"`
	QuoteID   string `json:"quoteId"`
}

// ReadyFillsResponse lists fills waiting for their secret.
type ReadyFillsResponse struct {
	Fills []domain.ReadyFill `json:"fills"`
}

// SecretSubmission is the body of a secret submission.
type SecretSubmission struct {
	OrderHash string `json:"orderHash"`
	Secret    string `json:"secret"`
}

// StatusResponse carries an order's status.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of a non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QuoteQuery encodes req as quote query parameters.
func QuoteQuery(req domain.QuoteRequest) map[string]string {
	return map[string]string{
		"srcChain":        req.Route.SrcChainID.String(),
		"dstChain":        req.Route.DstChainID.String(),
		"srcTokenAddress": req.Route.SrcToken.Hex(),
		"dstTokenAddress": req.Route.DstToken.Hex(),
		"amount":          req.Amount.Dec(),
		"walletAddress":   req.Wallet.Hex(),
		"enableEstimate":  strconv.FormatBool(req.EnableEstimate),
		"source":          req.Source,
	}
}

// DecodeQuote converts a quote response for route.
func DecodeQuote(route domain.Route, resp QuoteResponse) (domain.Quote, error) {
	if resp.QuoteID == "" {
		return domain.Quote{}, errors.New("quote: missing quoteId")
	}
	src, err := uint256.FromDecimal(resp.SrcTokenAmount)
	if err != nil {
		return domain.Quote{}, errors.Wrapf(err, "quote: srcTokenAmount %q", resp.SrcTokenAmount)
	}
	dst, err := uint256.FromDecimal(resp.DstTokenAmount)
	if err != nil {
		return domain.Quote{}, errors.Wrapf(err, "quote: dstTokenAmount %q", resp.DstTokenAmount)
	}
	presets := make(map[domain.PresetName]domain.Preset, len(resp.Presets))
	for name, p := range resp.Presets {
		presets[domain.PresetName(name)] = domain.Preset{
			SecretsCount:       p.SecretsCount,
			AuctionDuration:    time.Duration(p.AuctionDuration) * time.Second,
			AllowPartialFills:  p.AllowPartialFills,
			AllowMultipleFills: p.AllowMultipleFills,
		}
	}
	return domain.Quote{
		ID:                domain.QuoteID(resp.QuoteID),
		Route:             route,
		SrcAmount:         src,
		DstAmount:         dst,
		RecommendedPreset: domain.PresetName(resp.RecommendedPreset),
		Presets:           presets,
	}, nil
}

// EncodeQuote is the inverse of DecodeQuote.
func EncodeQuote(q domain.Quote) QuoteResponse {
	presets := make(map[string]PresetWire, len(q.Presets))
	for name, p := range q.Presets {
		presets[name.String()] = PresetWire{
			SecretsCount:       p.SecretsCount,
			AuctionDuration:    int64(p.AuctionDuration / time.Second),
			AllowPartialFills:  p.AllowPartialFills,
			AllowMultipleFills: p.AllowMultipleFills,
		}
	}
	return QuoteResponse{
		QuoteID:           q.ID.String(),
		SrcTokenAmount:    q.SrcAmount.Dec(),
		DstTokenAmount:    q.DstAmount.Dec(),
		RecommendedPreset: q.RecommendedPreset.String(),
		Presets:           presets,
	}
}

// NewOrderSubmission builds the unsigned submission for req.
func NewOrderSubmission(req domain.OrderRequest) OrderSubmission {
	hashes := make([]string, len(req.SecretHashes))
	for i, h := range req.SecretHashes {
		hashes[i] = h.Hex()
	}
	sub := OrderSubmission{
		QuoteID:         req.Quote.ID.String(),
		SrcChainID:      uint64(req.Quote.Route.SrcChainID),
		DstChainID:      uint64(req.Quote.Route.DstChainID),
		WalletAddress:   req.Wallet.Hex(),
		SrcTokenAddress: req.Quote.Route.SrcToken.Hex(),
		DstTokenAddress: req.Quote.Route.DstToken.Hex(),
		HashLock:        req.HashLock.Hex(),
		SecretHashes:    hashes,
		Preset:          req.Preset.String(),
		Source:          req.Source,
	}
	if req.Quote.SrcAmount != nil {
		sub.Amount = req.Quote.SrcAmount.Dec()
	}
	if req.Fee != nil {
		sub.Fee = &FeeWire{
			TakingFeeBps:      req.Fee.TakingFeeBps,
			TakingFeeReceiver: req.Fee.TakingFeeReceiver.Hex(),
		}
	}
	return sub
}

// OrderDigest is keccak256 of the JSON submission with Signature cleared.
func OrderDigest(sub OrderSubmission) (domain.Hash, error) {
	sub.Signature = ""
	b, err := json.Marshal(sub)
	if err != nil {
		return domain.Hash{}, errors.Wrap(err, "encode order")
	}
	return crypto.Keccak256(b), nil
}

// DecodeHash parses a 0x-prefixed 32-byte hex value.
func DecodeHash(s string) (domain.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return domain.Hash{}, errors.Wrapf(err, "hash %q", s)
	}
	if len(b) != len(domain.Hash{}) {
		return domain.Hash{}, errors.Errorf("hash %q: %d bytes, want 32", s, len(b))
	}
	var h domain.Hash
	copy(h[:], b)
	return h, nil
}

// DecodeSecret parses a 0x-prefixed 32-byte secret.
func DecodeSecret(s string) (domain.Secret, error) {
	h, err := DecodeHash(s)
	if err != nil {
		return domain.Secret{}, errors.New("secret: malformed")
	}
	return domain.Secret(h), nil
}

// DecodeAddress parses a hex account address.
func DecodeAddress(s string) (domain.Address, error) {
	if !common.IsHexAddress(s) {
		return domain.Address{}, errors.Errorf("address %q", s)
	}
	return common.HexToAddress(s), nil
}

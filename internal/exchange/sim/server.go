package sim

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/exchange"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Handler serves the exchange REST API.
//
//	GET  /quoter/v1.0/quote/receive
//	POST /relayer/v1.0/submit
//	POST /relayer/v1.0/submit/secret
//	GET  /orders/v1.0/order/ready-to-accept-secret-fills/{orderHash}
//	GET  /orders/v1.0/order/status/{orderHash}
func (e *Exchange) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+exchange.PathQuote, e.handleQuote)
	mux.HandleFunc("POST "+exchange.PathSubmitOrder, e.handleSubmitOrder)
	mux.HandleFunc("POST "+exchange.PathSubmitSecret, e.handleSubmitSecret)
	mux.HandleFunc("GET "+exchange.PathReadyFills+"{orderHash}", e.handleReadyFills)
	mux.HandleFunc("GET "+exchange.PathOrderStatus+"{orderHash}", e.handleStatus)
	return e.accessLog(e.authenticate(mux))
}

func (e *Exchange) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	srcChain, err := strconv.ParseUint(q.Get("srcChain"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "srcChain: "+err.Error())
		return
	}
	dstChain, err := strconv.ParseUint(q.Get("dstChain"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "dstChain: "+err.Error())
		return
	}
	srcToken, err := exchange.DecodeAddress(q.Get("srcTokenAddress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "srcTokenAddress: "+err.Error())
		return
	}
	dstToken, err := exchange.DecodeAddress(q.Get("dstTokenAddress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "dstTokenAddress: "+err.Error())
		return
	}
	amount, err := uint256.FromDecimal(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount: "+err.Error())
		return
	}
	wallet, err := exchange.DecodeAddress(q.Get("walletAddress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "walletAddress: "+err.Error())
		return
	}

	quote, err := e.GetQuote(r.Context(), domain.QuoteRequest{
		Route: domain.Route{
			SrcChainID: domain.ChainID(srcChain),
			DstChainID: domain.ChainID(dstChain),
			SrcToken:   srcToken,
			DstToken:   dstToken,
		},
		Amount:         amount,
		Wallet:         wallet,
		EnableEstimate: q.Get("enableEstimate") == "true",
		Source:         q.Get("source"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exchange.EncodeQuote(quote))
}

func (e *Exchange) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var sub exchange.OrderSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "decode order: "+err.Error())
		return
	}
	req, err := orderRequest(sub)
	if err != nil {
		writeErr(w, err)
		return
	}
	receipt, err := e.SubmitOrder(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exchange.OrderAccepted{
		OrderHash: receipt.OrderHash.String(),
		QuoteID:   receipt.QuoteID.String(),
	})
}

func (e *Exchange) handleSubmitSecret(w http.ResponseWriter, r *http.Request) {
	var sub exchange.SecretSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "decode secret submission")
		return
	}
	secret, err := exchange.DecodeSecret(sub.Secret)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = e.SubmitSecret(r.Context(), domain.OrderHash(sub.OrderHash), secret)
	secret.Wipe()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (e *Exchange) handleReadyFills(w http.ResponseWriter, r *http.Request) {
	fills, err := e.ReadyToAcceptSecretFills(r.Context(), domain.OrderHash(r.PathValue("orderHash")))
	if err != nil {
		writeErr(w, err)
		return
	}
	if fills == nil {
		fills = []domain.ReadyFill{}
	}
	writeJSON(w, http.StatusOK, exchange.ReadyFillsResponse{Fills: fills})
}

func (e *Exchange) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := e.OrderStatus(r.Context(), domain.OrderHash(r.PathValue("orderHash")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exchange.StatusResponse{Status: st.String()})
}

// orderRequest checks the maker signature on sub and converts it.
func orderRequest(sub exchange.OrderSubmission) (domain.OrderRequest, error) {
	wallet, err := exchange.DecodeAddress(sub.WalletAddress)
	if err != nil {
		return domain.OrderRequest{}, errors.Wrap(ErrBadOrder, err.Error())
	}
	sig, err := hexutil.Decode(sub.Signature)
	if err != nil {
		return domain.OrderRequest{}, errors.Wrap(ErrBadSignature, "malformed signature")
	}
	digest, err := exchange.OrderDigest(sub)
	if err != nil {
		return domain.OrderRequest{}, errors.Wrap(ErrBadOrder, err.Error())
	}
	signer, err := crypto.RecoverSigner(digest, sig)
	if err != nil || signer != wallet {
		return domain.OrderRequest{}, ErrBadSignature
	}

	lockValue, err := exchange.DecodeHash(sub.HashLock)
	if err != nil {
		return domain.OrderRequest{}, errors.Wrap(ErrBadOrder, err.Error())
	}
	hashes := make([]domain.SecretHash, len(sub.SecretHashes))
	for i, s := range sub.SecretHashes {
		h, err := exchange.DecodeHash(s)
		if err != nil {
			return domain.OrderRequest{}, errors.Wrapf(ErrBadOrder, "secret hash %d: %v", i, err)
		}
		hashes[i] = domain.SecretHash(h)
	}

	req := domain.OrderRequest{
		Quote:        domain.Quote{ID: domain.QuoteID(sub.QuoteID)},
		Wallet:       wallet,
		HashLock:     domain.HashLock{Value: lockValue},
		SecretHashes: hashes,
		Preset:       domain.PresetName(sub.Preset),
		Source:       sub.Source,
	}
	if sub.Fee != nil {
		receiver, err := exchange.DecodeAddress(sub.Fee.TakingFeeReceiver)
		if err != nil {
			return domain.OrderRequest{}, errors.Wrap(ErrBadOrder, "fee receiver")
		}
		req.Fee = &domain.FeeConfig{TakingFeeBps: sub.Fee.TakingFeeBps, TakingFeeReceiver: receiver}
	}
	return req, nil
}

func (e *Exchange) authenticate(next http.Handler) http.Handler {
	if e.cfg.APIKey == "" {
		return next
	}
	want := "Bearer " + e.cfg.APIKey
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code  int
	bytes int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// accessLog records method, path, remote, status, bytes and duration.
func (e *Exchange) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.code == 0 {
			rec.code = http.StatusOK
		}
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		e.metrics.Requests.WithLabelValues(pattern, strconv.Itoa(rec.code)).Inc()
		e.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.code),
			zap.Int("bytes", rec.bytes),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, exchange.ErrorResponse{Error: msg})
}

// writeErr maps simulator errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrUnknownOrder), errors.Is(err, ErrUnknownQuote):
		code = http.StatusNotFound
	case errors.Is(err, ErrBadSignature):
		code = http.StatusUnauthorized
	case errors.Is(err, ErrAlreadyRevealed), errors.Is(err, ErrOrderClosed):
		code = http.StatusConflict
	case errors.Is(err, ErrNotReady):
		code = http.StatusTooEarly
	}
	writeError(w, code, err.Error())
}

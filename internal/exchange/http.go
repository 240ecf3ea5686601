package exchange

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/logging"
)

// maxErrorBody bounds how much of a non-2xx body is kept in a StatusError.
const maxErrorBody = 4 << 10

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("exchange %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// HTTP talks to the exchange service over its REST API.
type HTTP struct {
	Base   string
	APIKey string
	HTTP   *http.Client

	key *ecdsa.PrivateKey
	log *zap.Logger
}

// NewHTTP returns a client for base. key signs submitted orders and may be
// nil for read-only use.
func NewHTTP(base, apiKey string, key *ecdsa.PrivateKey, log *zap.Logger) *HTTP {
	return &HTTP{
		Base:   strings.TrimRight(base, "/"),
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: 30 * time.Second},
		key:    key,
		log:    logging.OrNop(log),
	}
}

// GetQuote prices req.
func (c *HTTP) GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if req.Amount == nil {
		return domain.Quote{}, errors.New("quote: nil amount")
	}
	q := url.Values{}
	for k, v := range QuoteQuery(req) {
		q.Set(k, v)
	}
	var resp QuoteResponse
	if err := c.getJSON(ctx, PathQuote+"?"+q.Encode(), &resp); err != nil {
		return domain.Quote{}, err
	}
	return DecodeQuote(req.Route, resp)
}

// SubmitOrder signs and submits req.
func (c *HTTP) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderReceipt, error) {
	if c.key == nil {
		return domain.OrderReceipt{}, errors.New("submit order: no signing key")
	}
	sub := NewOrderSubmission(req)
	digest, err := OrderDigest(sub)
	if err != nil {
		return domain.OrderReceipt{}, err
	}
	sig, err := crypto.Sign(c.key, digest)
	if err != nil {
		return domain.OrderReceipt{}, errors.Wrap(err, "sign order")
	}
	sub.Signature = hexutil.Encode(sig)

	var out OrderAccepted
	if err := c.post(ctx, PathSubmitOrder, sub, &out); err != nil {
		return domain.OrderReceipt{}, err
	}
	if out.OrderHash == "" {
		return domain.OrderReceipt{}, errors.New("submit order: missing orderHash")
	}
	return domain.OrderReceipt{
		OrderHash: domain.OrderHash(out.OrderHash),
		QuoteID:   domain.QuoteID(out.QuoteID),
	}, nil
}

// ReadyToAcceptSecretFills lists the fills of order waiting for a secret.
func (c *HTTP) ReadyToAcceptSecretFills(ctx context.Context, order domain.OrderHash) ([]domain.ReadyFill, error) {
	var out ReadyFillsResponse
	if err := c.getJSON(ctx, PathReadyFills+url.PathEscape(order.String()), &out); err != nil {
		return nil, err
	}
	return out.Fills, nil
}

// SubmitSecret discloses secret for order.
func (c *HTTP) SubmitSecret(ctx context.Context, order domain.OrderHash, secret domain.Secret) error {
	body := SecretSubmission{OrderHash: order.String(), Secret: secret.Hex()}
	return c.post(ctx, PathSubmitSecret, body, nil)
}

// OrderStatus returns the lifecycle status of order.
func (c *HTTP) OrderStatus(ctx context.Context, order domain.OrderHash) (domain.OrderStatus, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, PathOrderStatus+url.PathEscape(order.String()), &out); err != nil {
		return "", err
	}
	st := domain.OrderStatus(out.Status)
	if !st.Valid() {
		return "", errors.Errorf("order status: unknown value %q", out.Status)
	}
	return st, nil
}

func (c *HTTP) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

// do sends req and decodes a 2xx body into out. Request bodies are never
// logged; they may carry a secret.
func (c *HTTP) do(req *http.Request, path string, out any) error {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Accept", "application/json")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "exchange %s %s", req.Method, path)
	}
	defer resp.Body.Close()
	c.log.Debug("exchange request",
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.Int("code", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return &StatusError{
			Method:  req.Method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "exchange %s %s: decode response", req.Method, path)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e ErrorResponse
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

var _ domain.ExchangeService = (*HTTP)(nil)

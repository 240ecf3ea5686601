package quote

import (
	"context"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fusionswap/internal/domain"
	"fusionswap/internal/logging"
)

// Service fetches quotes for routes from a route table.
type Service struct {
	exchange domain.ExchangeService
	routes   map[string]domain.Route
	source   string
	log      *zap.Logger
}

// New constructs a quote Service over routes, keyed by route name.
func New(
	exchange domain.ExchangeService,
	routes map[string]domain.Route,
	source string,
	log *zap.Logger,
) *Service {
	return &Service{
		exchange: exchange,
		routes:   routes,
		source:   source,
		log:      logging.OrNop(log),
	}
}

// Route returns the route called name.
func (s *Service) Route(name string) (domain.Route, error) {
	r, ok := s.routes[name]
	if !ok {
		return domain.Route{}, errors.Wrapf(domain.ErrUnknownRoute, "%q", name)
	}
	return r, nil
}

// Routes returns all routes sorted by name.
func (s *Service) Routes() []domain.Route {
	out := make([]domain.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseAmount converts a decimal amount of the route's source token into base
// units. An empty amount takes the route default.
func (s *Service) ParseAmount(route domain.Route, amount string) (*uint256.Int, error) {
	if amount == "" {
		amount = route.DefaultAmount
	}
	return ParseAmount(amount, route.SrcDecimals)
}

// Request builds the quote request for amount along route.
func (s *Service) Request(route domain.Route, amount string, wallet domain.Address) (domain.QuoteRequest, error) {
	base, err := s.ParseAmount(route, amount)
	if err != nil {
		return domain.QuoteRequest{}, err
	}
	return domain.QuoteRequest{
		Route:          route,
		Amount:         base,
		Wallet:         wallet,
		EnableEstimate: true,
		Source:         s.source,
	}, nil
}

// Quote fetches a quote for amount along route.
func (s *Service) Quote(
	ctx context.Context,
	route domain.Route,
	amount string,
	wallet domain.Address,
) (domain.Quote, error) {
	req, err := s.Request(route, amount, wallet)
	if err != nil {
		return domain.Quote{}, err
	}
	q, err := s.exchange.GetQuote(ctx, req)
	if err != nil {
		return domain.Quote{}, errors.Wrapf(domain.ErrQuoteUnavailable, "route %s: %v", route.Name, err)
	}
	s.log.Debug("quote received",
		zap.String("route", route.Name),
		zap.String("quote_id", q.ID.String()),
		zap.String("src_amount", FormatAmount(q.SrcAmount, route.SrcDecimals)),
		zap.String("dst_amount", FormatAmount(q.DstAmount, route.DstDecimals)),
		zap.String("recommended_preset", q.RecommendedPreset.String()),
	)
	return q, nil
}

// ParseAmount converts a positive decimal string into base units of a token
// with the given decimals. More fractional digits than decimals is an error,
// as is exponent notation, which would let a short string expand into an
// arbitrarily large integer.
func ParseAmount(amount string, decimals uint8) (*uint256.Int, error) {
	if strings.ContainsAny(amount, "eE") {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q: exponent notation not accepted", amount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q: %v", amount, err)
	}
	if !d.IsPositive() {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q must be positive", amount)
	}
	base := d.Shift(int32(decimals))
	if !base.Equal(base.Truncate(0)) {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q has more than %d decimals", amount, decimals)
	}
	v, overflow := uint256.FromBig(base.BigInt())
	if overflow {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q overflows 256 bits", amount)
	}
	return v, nil
}

// FormatAmount renders base units as a decimal string of the token.
func FormatAmount(v *uint256.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}

// Compile-time assertion that Service implements domain.QuoteService.
var _ domain.QuoteService = (*Service)(nil)

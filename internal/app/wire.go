package app

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"fusionswap/internal/domain"
	"fusionswap/internal/exchange"
	"fusionswap/internal/logging"
	"fusionswap/internal/metrics"
	quotesvc "fusionswap/internal/services/quote"
	swapsvc "fusionswap/internal/services/swap"
	"fusionswap/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   Config
	Log      *zap.Logger
	Registry *prometheus.Registry
	Exchange domain.ExchangeService
	Journal  domain.SwapStore
	Quotes   *quotesvc.Service
	Swaps    *swapsvc.Service

	// Wallet is the maker address: derived from PrivateKey when set,
	// otherwise ADDRESS. CanSign reports whether orders can be placed.
	Wallet  domain.Address
	CanSign bool
}

// NewWire constructs the dependency graph from cfg. ex replaces the HTTP
// exchange client when non-nil.
func NewWire(cfg Config, log *zap.Logger, ex domain.ExchangeService) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logging.OrNop(log)

	var (
		key    *ecdsa.PrivateKey
		wallet domain.Address
	)
	if cfg.PrivateKey != "" {
		k, addr, err := cfg.Wallet()
		if err != nil {
			return nil, err
		}
		key, wallet = k, addr
	} else if cfg.Address != "" {
		wallet = common.HexToAddress(cfg.Address)
	}

	routes, err := cfg.Routes()
	if err != nil {
		return nil, err
	}
	table := make(map[string]domain.Route, len(routes))
	for _, r := range routes {
		table[r.Name] = r
	}

	home, err := cfg.HomeDir()
	if err != nil {
		return nil, err
	}
	journal := store.NewSwapFileStore(home)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if ex == nil {
		ex = exchange.NewHTTP(cfg.APIURL, cfg.APIKey, key, log.Named("exchange"))
	}

	quotes := quotesvc.New(ex, table, cfg.Source, log.Named("quote"))
	swaps := swapsvc.New(ex, journal, swapsvc.Config{
		PollInterval:    cfg.PollInterval,
		MaxPollInterval: cfg.MaxPollInterval,
		MaxPollFailures: cfg.MaxPollFailures,
	}, log.Named("swap"), metrics.NewSwap(reg))

	log.Debug("wired",
		zap.String("api_url", cfg.APIURL),
		zap.String("home", home),
		zap.Int("routes", len(routes)),
		zap.String("wallet", wallet.Hex()),
		zap.Bool("can_sign", key != nil),
	)

	return &Wire{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Exchange: ex,
		Journal:  journal,
		Quotes:   quotes,
		Swaps:    swaps,
		Wallet:   wallet,
		CanSign:  key != nil,
	}, nil
}

// SwapRequest builds a swap request for route and amount using the
// configured wallet, fee and source.
func (w *Wire) SwapRequest(routeName, amount string, preset domain.PresetName) (domain.SwapRequest, error) {
	route, err := w.Quotes.Route(routeName)
	if err != nil {
		return domain.SwapRequest{}, err
	}
	amt, err := w.Quotes.ParseAmount(route, amount)
	if err != nil {
		return domain.SwapRequest{}, err
	}
	return domain.SwapRequest{
		Route:  route,
		Amount: amt,
		Wallet: w.Wallet,
		Preset: preset,
		Fee:    w.Config.Fee(),
		Source: w.Config.Source,
	}, nil
}

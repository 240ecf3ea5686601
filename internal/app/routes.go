package app

import (
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"fusionswap/internal/domain"
)

var (
	wethOptimism = common.HexToAddress("0x4200000000000000000000000000000000000006")
	usdcArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
)

// DefaultRoutes returns the built-in route table.
func DefaultRoutes() []domain.Route {
	return []domain.Route{
		{
			Name:          "op-arb",
			SrcChainID:    domain.ChainOptimism,
			DstChainID:    domain.ChainArbitrum,
			SrcToken:      wethOptimism,
			DstToken:      usdcArbitrum,
			SrcDecimals:   18,
			DstDecimals:   6,
			DefaultAmount: "0.0005",
		},
		{
			Name:          "arb-op",
			SrcChainID:    domain.ChainArbitrum,
			DstChainID:    domain.ChainOptimism,
			SrcToken:      usdcArbitrum,
			DstToken:      wethOptimism,
			SrcDecimals:   6,
			DstDecimals:   18,
			DefaultAmount: "0.5",
		},
	}
}

// routeFile is the YAML layout of FUSIONSWAP_ROUTES:
//
//	routes:
//	  - name: base-arb
//	    src_chain_id: 8453
//	    dst_chain_id: 42161
//	    src_token: "0x..."
//	    dst_token: "0x..."
//	    src_decimals: 6
//	    dst_decimals: 6
//	    default_amount: "10"
type routeFile struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	Name          string `yaml:"name"`
	SrcChainID    uint64 `yaml:"src_chain_id"`
	DstChainID    uint64 `yaml:"dst_chain_id"`
	SrcToken      string `yaml:"src_token"`
	DstToken      string `yaml:"dst_token"`
	SrcDecimals   uint8  `yaml:"src_decimals"`
	DstDecimals   uint8  `yaml:"dst_decimals"`
	DefaultAmount string `yaml:"default_amount"`
}

// ParseRoutes decodes a YAML route table.
func ParseRoutes(b []byte) ([]domain.Route, error) {
	var f routeFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(domain.ErrInvalidConfig, "routes: "+err.Error())
	}
	out := make([]domain.Route, 0, len(f.Routes))
	for i, e := range f.Routes {
		switch {
		case e.Name == "":
			return nil, errors.Wrapf(domain.ErrInvalidConfig, "routes[%d]: missing name", i)
		case e.SrcChainID == 0 || e.DstChainID == 0:
			return nil, errors.Wrapf(domain.ErrInvalidConfig, "route %s: chain ids required", e.Name)
		case !common.IsHexAddress(e.SrcToken) || !common.IsHexAddress(e.DstToken):
			return nil, errors.Wrapf(domain.ErrInvalidConfig, "route %s: token addresses required", e.Name)
		}
		out = append(out, domain.Route{
			Name:          e.Name,
			SrcChainID:    domain.ChainID(e.SrcChainID),
			DstChainID:    domain.ChainID(e.DstChainID),
			SrcToken:      common.HexToAddress(e.SrcToken),
			DstToken:      common.HexToAddress(e.DstToken),
			SrcDecimals:   e.SrcDecimals,
			DstDecimals:   e.DstDecimals,
			DefaultAmount: e.DefaultAmount,
		})
	}
	return out, nil
}

// Routes returns the built-in routes merged with RoutesFile, where entries
// from the file replace built-ins of the same name.
func (c Config) Routes() ([]domain.Route, error) {
	byName := make(map[string]domain.Route)
	for _, r := range DefaultRoutes() {
		byName[r.Name] = r
	}
	if c.RoutesFile != "" {
		b, err := os.ReadFile(c.RoutesFile)
		if err != nil {
			return nil, errors.Wrap(err, "read routes file")
		}
		extra, err := ParseRoutes(b)
		if err != nil {
			return nil, err
		}
		for _, r := range extra {
			byName[r.Name] = r
		}
	}
	out := make([]domain.Route, 0, len(byName))
	for _, r := range byName {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

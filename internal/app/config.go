package app

import (
	"context"
	"crypto/ecdsa"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
)

// MaxFeeBps is 100%.
const MaxFeeBps = 10_000

// Config holds runtime options, read from the environment.
type Config struct {
	APIURL     string `env:"ONEINCH_API_URL,default=https://api.1inch.dev/fusion-plus"`
	APIKey     string `env:"ONEINCH_API_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	// Address is optional; when set it must match PrivateKey.
	Address string `env:"ADDRESS"`
	Source  string `env:"SOURCE_APP_NAME,default=fusionswap"`

	Home       string `env:"FUSIONSWAP_HOME"`   // journal directory, default ~/.fusionswap
	RoutesFile string `env:"FUSIONSWAP_ROUTES"` // optional YAML route table

	PollInterval    time.Duration `env:"POLL_INTERVAL,default=1s"`
	MaxPollInterval time.Duration `env:"MAX_POLL_INTERVAL,default=30s"`
	MaxPollFailures int           `env:"MAX_POLL_FAILURES,default=10"`

	TakingFeeBps      uint16 `env:"TAKING_FEE_BPS,default=0"`
	TakingFeeReceiver string `env:"TAKING_FEE_RECEIVER"`

	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=console"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load reads Config from the process environment.
func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads Config through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return Config{}, errors.Wrap(domain.ErrInvalidConfig, err.Error())
	}
	return cfg, nil
}

// Validate checks the fields that do not need the signing key.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(domain.ErrInvalidConfig, "ONEINCH_API_URL %q is not an http(s) URL", c.APIURL)
	}
	if c.Address != "" && !common.IsHexAddress(c.Address) {
		return errors.Wrapf(domain.ErrInvalidConfig, "ADDRESS %q is not an address", c.Address)
	}
	if c.PollInterval <= 0 {
		return errors.Wrap(domain.ErrInvalidConfig, "POLL_INTERVAL must be positive")
	}
	if c.MaxPollInterval < c.PollInterval {
		return errors.Wrap(domain.ErrInvalidConfig, "MAX_POLL_INTERVAL must be at least POLL_INTERVAL")
	}
	if c.MaxPollFailures < 1 {
		return errors.Wrap(domain.ErrInvalidConfig, "MAX_POLL_FAILURES must be at least 1")
	}
	if c.TakingFeeBps > MaxFeeBps {
		return errors.Wrapf(domain.ErrInvalidConfig, "TAKING_FEE_BPS %d exceeds %d", c.TakingFeeBps, MaxFeeBps)
	}
	if c.TakingFeeBps > 0 && !common.IsHexAddress(c.TakingFeeReceiver) {
		return errors.Wrap(domain.ErrInvalidConfig, "TAKING_FEE_RECEIVER must be an address when a fee is set")
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return errors.Wrapf(domain.ErrInvalidConfig, "LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// Wallet parses the signing key and returns it with its address.
func (c Config) Wallet() (*ecdsa.PrivateKey, domain.Address, error) {
	if c.PrivateKey == "" {
		return nil, domain.Address{}, errors.Wrap(domain.ErrInvalidConfig, "PRIVATE_KEY not set")
	}
	key, addr, err := crypto.LoadSigningKey(c.PrivateKey)
	if err != nil {
		// The parse error may quote the key.
		return nil, domain.Address{}, errors.Wrap(domain.ErrInvalidConfig, "PRIVATE_KEY is not a secp256k1 key")
	}
	if c.Address != "" && common.HexToAddress(c.Address) != addr {
		return nil, domain.Address{}, errors.Wrapf(domain.ErrInvalidConfig, "ADDRESS %s does not match PRIVATE_KEY (%s)", c.Address, addr.Hex())
	}
	return key, addr, nil
}

// Fee returns the configured taking fee, or nil when none is set.
func (c Config) Fee() *domain.FeeConfig {
	if c.TakingFeeBps == 0 {
		return nil
	}
	return &domain.FeeConfig{
		TakingFeeBps:      c.TakingFeeBps,
		TakingFeeReceiver: common.HexToAddress(c.TakingFeeReceiver),
	}
}

// HomeDir returns Home, or ~/.fusionswap when unset.
func (c Config) HomeDir() (string, error) {
	if c.Home != "" {
		return c.Home, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(dir, ".fusionswap"), nil
}

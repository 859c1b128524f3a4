package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from file and environment.
type Config struct {
	// RPCURL is the Ethereum JSON-RPC endpoint. Required.
	RPCURL string `yaml:"rpc_url"`

	// ListenAddr enables the SSE transport when set. Empty means stdio.
	ListenAddr string `yaml:"listen_addr"`

	// RequestTimeout bounds a single tool call, including all node
	// round-trips it performs.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// DefaultGasPriceWei is used for the gas cost estimate when the
	// gas price read fails.
	DefaultGasPriceWei int64 `yaml:"default_gas_price_wei"`

	LogLevel string `yaml:"log_level"`
}

// Environment variables override file values.
const (
	envRPCURL      = "ETH_RPC_URL"
	envListenAddr  = "MCP_LISTEN_ADDR"
	envLogLevel    = "LOG_LEVEL"
	envGasPriceWei = "DEFAULT_GAS_PRICE_WEI"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultGasPriceWei    = 20_000_000_000 // 20 gwei
	defaultLogLevel       = "info"
)

// Load reads the config from a YAML file path and applies environment
// overrides. An empty path skips the file and configures from environment
// and defaults only.
func Load(path string) (Config, error) {
	cfg := Config{
		RequestTimeout:     defaultRequestTimeout,
		DefaultGasPriceWei: defaultGasPriceWei,
		LogLevel:           defaultLogLevel,
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "os.Open")
		}
		defer func() {
			_ = f.Close()
		}()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(err, "yaml decode")
		}
	}

	if v := os.Getenv(envRPCURL); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envGasPriceWei); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", envGasPriceWei)
		}
		cfg.DefaultGasPriceWei = p
	}

	// Fallbacks
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DefaultGasPriceWei == 0 {
		cfg.DefaultGasPriceWei = defaultGasPriceWei
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate reports all configuration problems at once rather than stopping
// at the first.
func (c Config) validate() error {
	var err error
	if c.RPCURL == "" {
		err = multierr.Append(err, errors.Errorf("rpc_url is required (set it in the config file or via %s)", envRPCURL))
	}
	if c.RequestTimeout < 0 {
		err = multierr.Append(err, errors.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.DefaultGasPriceWei < 0 {
		err = multierr.Append(err, errors.Errorf("default_gas_price_wei must not be negative, got %d", c.DefaultGasPriceWei))
	}
	return err
}

/*
Package config contains the configuration of near-go tools: the set of
networks (RPC endpoint and contract per network), transaction defaults and
application settings. Configuration is loaded explicitly and passed around as
a value, there is no global state.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/neterr"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path to the config file.
const DefaultConfigPath = "./config/neargo.yml"

// Known network names.
const (
	MainNet = "mainnet"
	TestNet = "testnet"
)

// Version is the version of near-go, set at build time ("dev" for plain
// builds).
var Version = "dev"

// Config is the top level struct representing the configuration.
type Config struct {
	Networks    map[string]Network `yaml:"Networks"`
	Transaction TxDefaults         `yaml:"Transaction"`
	Application Application        `yaml:"Application"`
}

// Default returns the configuration with the default Transaction and
// Application settings and no networks.
func Default() Config {
	return Config{
		Networks: make(map[string]Network),
		Transaction: TxDefaults{
			Gas: DefaultGas,
		},
		Application: Application{
			LogLevel:       "info",
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// LoadFile loads the config from the provided path. Errors returned match
// neterr.ErrConfig.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, configError(fmt.Errorf("unable to read config: %w", err))
	}
	cfg, err := Load(data)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load decodes and validates the config from YAML data. Unknown fields are
// an error.
func Load(data []byte) (Config, error) {
	var cfg = Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, configError(fmt.Errorf("failed to unmarshal config YAML: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every network entry and the transaction defaults. Errors
// returned match neterr.ErrConfig.
func (c Config) Validate() error {
	for _, name := range c.NetworkNames() {
		if err := c.Networks[name].Validate(); err != nil {
			return configError(fmt.Errorf("network %q: %w", name, err))
		}
	}
	if err := c.Transaction.Validate(); err != nil {
		return configError(fmt.Errorf("transaction: %w", err))
	}
	if err := c.Application.Validate(); err != nil {
		return configError(fmt.Errorf("application: %w", err))
	}
	return nil
}

// NetworkNames returns sorted names of the configured networks.
func (c Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Network returns the configuration of the named network, an unknown
// network is a neterr.ErrConfig error.
func (c Config) Network(name string) (Network, error) {
	n, ok := c.Networks[strings.ToLower(name)]
	if !ok {
		return Network{}, configError(fmt.Errorf("unknown network %q (configured: %s)", name, strings.Join(c.NetworkNames(), ", ")))
	}
	if err := n.Validate(); err != nil {
		return Network{}, configError(fmt.Errorf("network %q: %w", name, err))
	}
	return n, nil
}

func configError(err error) error {
	return neterr.New(neterr.KindConfig, neterr.StepLoadConfig, err)
}

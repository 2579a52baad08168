package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration.
type Config struct {
	RPC RPCConfig `yaml:"rpc"`

	// Contract is the Passthrough contract hash (LE hex) or address.
	Contract string `yaml:"contract"`

	// Storage keeps the local mirror of the contract storage.
	Storage dbconfig.DBConfiguration `yaml:"storage"`
}

// RPCConfig describes Neo RPC connection.
type RPCConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

const defaultTimeout = 15 * time.Second

// DefaultConfig returns configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		RPC: RPCConfig{
			DialTimeout:    defaultTimeout,
			RequestTimeout: defaultTimeout,
		},
		Storage: dbconfig.DBConfiguration{
			Type: dbconfig.BoltDB,
			BoltDBOptions: dbconfig.BoltDBOptions{
				FilePath: "passthrough.bolt",
			},
		},
	}
}

// LoadConfig reads configuration from the YAML file. Empty path means
// default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// ContractHash returns configured Passthrough contract hash.
func (c *Config) ContractHash() (util.Uint160, error) {
	if c.Contract == "" {
		return util.Uint160{}, errors.New("missing contract in config")
	}
	return parseHash(c.Contract)
}

// parseHash decodes Neo address or LE hex script hash.
func parseHash(s string) (util.Uint160, error) {
	if h, err := address.StringToUint160(s); err == nil {
		return h, nil
	}

	h, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid address or script hash %q", s)
	}
	return h, nil
}

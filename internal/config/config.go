package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"

	"mccwk.com/arcard/internal/storage"
)

const (
	BackendArweave = "arweave"
	BackendMemory  = "memory"
)

var (
	ErrMissingCredential   = errors.New("no wallet credential configured: set WALLET_KEYS or WALLET_FILE")
	ErrMalformedCredential = errors.New("wallet credential is malformed")
)

// Error is a fatal configuration problem.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Config struct {
	WalletKeys string `envconfig:"WALLET_KEYS"`
	WalletFile string `envconfig:"WALLET_FILE"`

	Gateway       string        `envconfig:"ARCARD_GATEWAY" default:"https://arweave.net"`
	Backend       string        `envconfig:"ARCARD_BACKEND" default:"arweave"`
	FetchTimeout  time.Duration `envconfig:"ARCARD_FETCH_TIMEOUT" default:"30s"`
	MemoryBalance string        `envconfig:"ARCARD_MEMORY_BALANCE" default:"1000000000000"`

	Credential storage.Credential `ignored:"true"`
}

// Load reads the environment and parses the wallet credential exactly once.
// A missing or unparsable credential is a fatal *Error.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, &Error{Field: "environment", Err: err}
	}

	switch c.Backend {
	case BackendArweave, BackendMemory:
	default:
		return nil, &Error{Field: "ARCARD_BACKEND", Err: fmt.Errorf("unknown backend %q: must be %s or %s", c.Backend, BackendArweave, BackendMemory)}
	}

	if _, ok := new(big.Int).SetString(c.MemoryBalance, 10); !ok {
		return nil, &Error{Field: "ARCARD_MEMORY_BALANCE", Err: fmt.Errorf("not an integer: %q", c.MemoryBalance)}
	}

	raw, field, err := c.credentialSource()
	if err != nil {
		return nil, err
	}
	cred, err := storage.ParseCredential(raw)
	if err != nil {
		return nil, &Error{Field: field, Err: fmt.Errorf("%w: %v", ErrMalformedCredential, err)}
	}
	c.Credential = cred

	return &c, nil
}

func (c *Config) credentialSource() ([]byte, string, error) {
	if c.WalletKeys != "" {
		return []byte(c.WalletKeys), "WALLET_KEYS", nil
	}
	if c.WalletFile == "" {
		return nil, "", &Error{Field: "WALLET_KEYS", Err: ErrMissingCredential}
	}

	path, err := homedir.Expand(c.WalletFile)
	if err != nil {
		return nil, "", &Error{Field: "WALLET_FILE", Err: err}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &Error{Field: "WALLET_FILE", Err: fmt.Errorf("failed to read wallet file: %w", err)}
	}
	return b, "WALLET_FILE", nil
}

// InitialBalance is the winston balance every memory-backend wallet starts with.
func (c *Config) InitialBalance() *big.Int {
	n, ok := new(big.Int).SetString(c.MemoryBalance, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

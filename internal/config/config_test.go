package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWK = `{"kty":"RSA","n":"abc","e":"AQAB"}`

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WALLET_KEYS", "WALLET_FILE", "ARCARD_GATEWAY", "ARCARD_BACKEND",
		"ARCARD_FETCH_TIMEOUT", "ARCARD_MEMORY_BALANCE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_KEYS", testJWK)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://arweave.net", c.Gateway)
	assert.Equal(t, BackendArweave, c.Backend)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, "1000000000000", c.InitialBalance().String())
	assert.JSONEq(t, testJWK, string(c.Credential.Bytes()))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_KEYS", testJWK)
	t.Setenv("ARCARD_GATEWAY", "http://localhost:1984")
	t.Setenv("ARCARD_BACKEND", "memory")
	t.Setenv("ARCARD_FETCH_TIMEOUT", "5s")
	t.Setenv("ARCARD_MEMORY_BALANCE", "42")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1984", c.Gateway)
	assert.Equal(t, BackendMemory, c.Backend)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
	assert.Equal(t, "42", c.InitialBalance().String())
}

func TestLoad_MissingCredential(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingCredential)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "WALLET_KEYS", cfgErr.Field)
}

func TestLoad_MalformedCredential(t *testing.T) {
	for _, raw := range []string{"not json", "[]", "{}", `"key"`} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("WALLET_KEYS", raw)

			_, err := Load()
			assert.ErrorIs(t, err, ErrMalformedCredential)
		})
	}
}

func TestLoad_WalletFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, []byte(testJWK), 0o600))
	t.Setenv("WALLET_FILE", path)

	c, err := Load()
	require.NoError(t, err)
	assert.JSONEq(t, testJWK, string(c.Credential.Bytes()))
}

func TestLoad_WalletKeysWinOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_KEYS", testJWK)
	t.Setenv("WALLET_FILE", filepath.Join(t.TempDir(), "does-not-exist.json"))

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_MissingWalletFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_FILE", filepath.Join(t.TempDir(), "nope.json"))

	_, err := Load()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "WALLET_FILE", cfgErr.Field)
}

func TestLoad_BadBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_KEYS", testJWK)
	t.Setenv("ARCARD_BACKEND", "s3")

	_, err := Load()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ARCARD_BACKEND", cfgErr.Field)
}

func TestLoad_BadMemoryBalance(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_KEYS", testJWK)
	t.Setenv("ARCARD_MEMORY_BALANCE", "1.5")

	_, err := Load()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ARCARD_MEMORY_BALANCE", cfgErr.Field)
}

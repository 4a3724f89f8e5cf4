package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"sync"
)

// DefaultFeePerByte is the memory backend's price in winston per payload byte.
const DefaultFeePerByte = 1000

// Memory is an in-process, content-addressed Client. Transaction ids are the
// base64url sha256 of the payload, so uploading identical content twice
// yields the same id.
type Memory struct {
	mu         sync.Mutex
	balances   map[string]*big.Int
	objects    map[string][]byte
	feePerByte int64
	initial    *big.Int
}

// NewMemory creates a Memory client where every address starts with
// initialBalance winston.
func NewMemory(initialBalance *big.Int) *Memory {
	if initialBalance == nil {
		initialBalance = new(big.Int)
	}
	return &Memory{
		balances:   make(map[string]*big.Int),
		objects:    make(map[string][]byte),
		feePerByte: DefaultFeePerByte,
		initial:    new(big.Int).Set(initialBalance),
	}
}

func (m *Memory) ResolveAddress(ctx context.Context, cred Credential) (string, error) {
	if cred.IsZero() {
		return "", ErrEmptyCredential
	}
	sum := sha256.Sum256(cred.Bytes())
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

func (m *Memory) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balanceLocked(address)), nil
}

func (m *Memory) EstimateFee(ctx context.Context, payload []byte) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.fee(payload), nil
}

// Submit stores payload and charges the fee to the credential's address. An
// underfunded wallet gets a 402 receipt rather than an error, the same way a
// gateway rejects a post.
func (m *Memory) Submit(ctx context.Context, payload []byte, cred Credential) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	addr, err := m.ResolveAddress(ctx, cred)
	if err != nil {
		return Receipt{}, err
	}
	fee := m.fee(payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balanceLocked(addr)
	if bal.Cmp(fee) < 0 {
		return Receipt{StatusCode: http.StatusPaymentRequired}, nil
	}
	bal.Sub(bal, fee)

	sum := sha256.Sum256(payload)
	id := base64.RawURLEncoding.EncodeToString(sum[:])
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.objects[id] = stored

	return Receipt{Success: true, TransactionID: id, StatusCode: http.StatusOK}, nil
}

func (m *Memory) FetchContent(ctx context.Context, id string, opts FetchOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	data, ok := m.objects[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !opts.Decode {
		return []byte(base64.RawURLEncoding.EncodeToString(data)), nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) fee(payload []byte) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(len(payload))), big.NewInt(m.feePerByte))
}

func (m *Memory) balanceLocked(addr string) *big.Int {
	bal, ok := m.balances[addr]
	if !ok {
		bal = new(big.Int).Set(m.initial)
		m.balances[addr] = bal
	}
	return bal
}

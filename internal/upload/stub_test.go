package upload

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"mccwk.com/arcard/internal/storage"
)

type stubClient struct {
	mu sync.Mutex

	address    string
	addressErr error
	balance    *big.Int
	balanceErr error
	fee        *big.Int
	feeErr     error
	receipt    storage.Receipt
	submitErr  error
	content    map[string][]byte
	fetchErr   error

	submits   int
	fetches   int
	lastFetch storage.FetchOptions
}

func (s *stubClient) ResolveAddress(ctx context.Context, cred storage.Credential) (string, error) {
	return s.address, s.addressErr
}

func (s *stubClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return s.balance, s.balanceErr
}

func (s *stubClient) EstimateFee(ctx context.Context, payload []byte) (*big.Int, error) {
	return s.fee, s.feeErr
}

func (s *stubClient) Submit(ctx context.Context, payload []byte, cred storage.Credential) (storage.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
	return s.receipt, s.submitErr
}

func (s *stubClient) FetchContent(ctx context.Context, id string, opts storage.FetchOptions) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	s.lastFetch = opts
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	data, ok := s.content[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

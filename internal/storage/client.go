package storage

import (
	"context"
	"math/big"
)

// Receipt is what the network answered to a submission.
type Receipt struct {
	Success       bool
	TransactionID string
	StatusCode    int
}

// FetchOptions controls how stored content is returned.
type FetchOptions struct {
	// Decode returns the original payload bytes. When false the payload is
	// returned in the network's base64url transport encoding.
	Decode bool
}

// Client is the narrow surface of the storage network the app depends on.
// Amounts are in atomic units (winston for Arweave).
type Client interface {
	ResolveAddress(ctx context.Context, cred Credential) (string, error)
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	EstimateFee(ctx context.Context, payload []byte) (*big.Int, error)
	Submit(ctx context.Context, payload []byte, cred Credential) (Receipt, error)
	FetchContent(ctx context.Context, id string, opts FetchOptions) ([]byte, error)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/everFinance/goar"
	"github.com/everFinance/goar/types"
	"github.com/everFinance/goar/utils"
)

// DefaultGateway is the public Arweave gateway.
const DefaultGateway = "https://arweave.net"

// Getter performs plain gateway reads.
type Getter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Arweave talks to an Arweave gateway. Signing, pricing and posting go
// through goar; balance and data reads use the gateway's HTTP endpoints.
type Arweave struct {
	gateway     string
	contentType string
	getter      Getter
	client      *goar.Client

	mu      sync.Mutex
	wallets map[string]*goar.Wallet
}

// NewArweave builds the client once; it is shared by every caller.
// contentType is sent as the Content-Type tag on uploads when non-empty.
func NewArweave(gateway, contentType string, getter Getter) *Arweave {
	if gateway == "" {
		gateway = DefaultGateway
	}
	gateway = strings.TrimRight(gateway, "/")
	return &Arweave{
		gateway:     gateway,
		contentType: contentType,
		getter:      getter,
		client:      goar.NewClient(gateway),
		wallets:     make(map[string]*goar.Wallet),
	}
}

// Gateway returns the base URL content is served from.
func (a *Arweave) Gateway() string {
	return a.gateway
}

func (a *Arweave) ResolveAddress(ctx context.Context, cred Credential) (string, error) {
	if cred.IsZero() {
		return "", ErrEmptyCredential
	}
	signer, err := goar.NewSigner(cred.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to load wallet key: %w", err)
	}
	return signer.Address, nil
}

func (a *Arweave) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	body, err := a.getter.Fetch(ctx, a.gateway+"/wallet/"+address+"/balance")
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}
	return parseAtomic(body)
}

func (a *Arweave) EstimateFee(ctx context.Context, payload []byte) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reward, err := a.client.GetTransactionPrice(len(payload), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction price: %w", err)
	}
	return big.NewInt(reward), nil
}

// Submit signs payload as a data transaction and posts it. A gateway that
// answers the post with a 4xx or 5xx yields an unsuccessful receipt carrying
// that status; transport failures are returned as errors.
func (a *Arweave) Submit(ctx context.Context, payload []byte, cred Credential) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	w, err := a.wallet(cred)
	if err != nil {
		return Receipt{}, err
	}

	var tags []types.Tag
	if a.contentType != "" {
		tags = append(tags, types.Tag{Name: "Content-Type", Value: a.contentType})
	}

	reward, err := w.Client.GetTransactionPrice(len(payload), nil)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to get transaction price: %w", err)
	}
	anchor, err := w.Client.GetTransactionAnchor()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to get transaction anchor: %w", err)
	}

	tx := &types.Transaction{
		Format:   2,
		LastTx:   anchor,
		Owner:    w.Owner(),
		Quantity: "0",
		Tags:     utils.TagsEncode(tags),
		Data:     utils.Base64Encode(payload),
		DataSize: strconv.Itoa(len(payload)),
		Reward:   strconv.FormatInt(reward, 10),
	}
	if err := w.Signer.SignTx(tx); err != nil {
		return Receipt{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	uploader, err := goar.CreateUploader(w.Client, tx, nil)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to prepare upload: %w", err)
	}
	if err := uploader.Once(); err != nil {
		if uploader.LastResponseStatus >= http.StatusBadRequest {
			return Receipt{StatusCode: uploader.LastResponseStatus}, nil
		}
		return Receipt{}, err
	}

	status := uploader.LastResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	return Receipt{Success: true, TransactionID: tx.ID, StatusCode: status}, nil
}

func (a *Arweave) FetchContent(ctx context.Context, id string, opts FetchOptions) ([]byte, error) {
	url := a.gateway + "/" + id
	if !opts.Decode {
		url = a.gateway + "/tx/" + id + "/data"
	}
	body, err := a.getter.Fetch(ctx, url)
	if err != nil {
		var se interface{ StatusCode() int }
		if errors.As(err, &se) && se.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return body, nil
}

func (a *Arweave) wallet(cred Credential) (*goar.Wallet, error) {
	if cred.IsZero() {
		return nil, ErrEmptyCredential
	}
	key := string(cred.Bytes())

	a.mu.Lock()
	defer a.mu.Unlock()
	if w, ok := a.wallets[key]; ok {
		return w, nil
	}
	w, err := goar.NewWallet(cred.Bytes(), a.gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	a.wallets[key] = w
	return w, nil
}

func parseAtomic(body []byte) (*big.Int, error) {
	s := strings.TrimSpace(string(body))
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

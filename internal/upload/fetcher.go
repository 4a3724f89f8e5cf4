package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mccwk.com/arcard/internal/storage"
)

// ContentFetcher retrieves uploaded artifacts by transaction id. Retrieval is
// best effort: failures are logged, never retried.
type ContentFetcher struct {
	client storage.Client
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func NewContentFetcher(client storage.Client, logger *slog.Logger) *ContentFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentFetcher{client: client, logger: logger}
}

// Fetch returns the decoded artifact stored under id. Asking again for the
// id retrieved last returns ErrAlreadyFetched without a network call.
func (f *ContentFetcher) Fetch(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.New("empty transaction id")
	}

	f.mu.Lock()
	if id == f.last {
		f.mu.Unlock()
		return "", ErrAlreadyFetched
	}
	prev := f.last
	f.last = id
	f.mu.Unlock()

	data, err := f.client.FetchContent(ctx, id, storage.FetchOptions{Decode: true})
	if err != nil {
		f.logger.Error("failed to fetch data from Arweave", "id", id, "error", err)
		f.mu.Lock()
		if f.last == id {
			f.last = prev
		}
		f.mu.Unlock()
		return "", err
	}

	f.logger.Debug("content retrieved", "id", id, "bytes", len(data))
	return string(data), nil
}

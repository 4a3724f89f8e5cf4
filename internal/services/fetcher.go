package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// pendingRetryDelay is how long to wait before re-reading a resource the
// gateway answered with 202 Accepted (transaction seen but not yet seeded).
var pendingRetryDelay = 750 * time.Millisecond

// StatusError is returned for non-2xx gateway responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

func (e *StatusError) StatusCode() int {
	return e.Code
}

type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *Fetcher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "arcard/1.0")
	req.Header.Set("Accept", "*/*")
	// Payloads are compared byte for byte after retrieval.
	req.Header.Set("Accept-Encoding", "identity")
	return req, nil
}

// Fetch retrieves the body at url. A 202 is retried once after a short delay.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		body, retry, err := f.fetchOnce(ctx, url, attempt == 0)
		if err != nil {
			return nil, err
		}
		if !retry {
			return body, nil
		}

		t := time.NewTimer(pendingRetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
		case <-t.C:
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after retries", url)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string, mayRetry bool) ([]byte, bool, error) {
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		if mayRetry {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, true, nil
		}
		return nil, false, &StatusError{URL: url, Code: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, false, nil
}

package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccwk.com/arcard/internal/storage"
)

func TestContentFetcher_Fetch(t *testing.T) {
	client := &stubClient{content: map[string][]byte{"abc123": []byte("<div>card</div>")}}
	f := NewContentFetcher(client, discardLogger())

	got, err := f.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "<div>card</div>", got)
	assert.True(t, client.lastFetch.Decode)
	assert.Equal(t, 1, client.fetches)
}

func TestContentFetcher_SkipsRepeatedID(t *testing.T) {
	client := &stubClient{content: map[string][]byte{
		"a": []byte("A"),
		"b": []byte("B"),
	}}
	f := NewContentFetcher(client, discardLogger())
	ctx := context.Background()

	_, err := f.Fetch(ctx, "a")
	require.NoError(t, err)

	_, err = f.Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrAlreadyFetched)
	assert.Equal(t, 1, client.fetches)

	got, err := f.Fetch(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", got)
	assert.Equal(t, 2, client.fetches)
}

func TestContentFetcher_FailureAllowsRetry(t *testing.T) {
	client := &stubClient{fetchErr: errors.New("gateway timeout")}
	f := NewContentFetcher(client, discardLogger())
	ctx := context.Background()

	_, err := f.Fetch(ctx, "abc123")
	assert.EqualError(t, err, "gateway timeout")

	client.fetchErr = nil
	client.content = map[string][]byte{"abc123": []byte("ok")}
	got, err := f.Fetch(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, client.fetches)
}

func TestContentFetcher_NotFound(t *testing.T) {
	f := NewContentFetcher(&stubClient{}, discardLogger())
	_, err := f.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.Fetch(context.Background(), "")
	assert.Error(t, err)
}

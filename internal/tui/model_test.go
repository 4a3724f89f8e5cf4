package tui

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/logging"
	"mccwk.com/arcard/internal/services"
	"mccwk.com/arcard/internal/storage"
	"mccwk.com/arcard/internal/upload"
)

func newTestModel(t *testing.T) (Model, *form.State) {
	t.Helper()
	cred, err := storage.ParseCredential([]byte(`{"kty":"RSA","n":"tui","e":"AQAB"}`))
	require.NoError(t, err)

	sink := logging.NewMemorySink(50, slog.LevelDebug)
	logger := slog.New(sink)
	mem := storage.NewMemory(big.NewInt(1000000000000))
	state := form.New()

	m := NewModel(context.Background(), state, Deps{
		Workflow:  upload.NewWorkflow(mem, cred, logger),
		Fetcher:   upload.NewContentFetcher(mem, logger),
		Renderer:  services.NewRenderer("notty"),
		Extractor: services.NewExtractor(),
		LogSink:   sink,
		Gateway:   "https://arweave.net",
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	return m, state
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_TypingWritesThrough(t *testing.T) {
	m, state := newTestModel(t)

	m = typeText(t, m, "Genesis")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "alice")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "site")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "https://example.com")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	_ = typeText(t, m, "first card")

	assert.Equal(t, card.Metadata{
		Title:       "Genesis",
		Owner:       "alice",
		Links:       []card.LinkEntry{{Href: "https://example.com", Text: "site"}},
		Description: "first card",
	}, state.Metadata())
}

func TestModel_AddLink(t *testing.T) {
	m, state := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.Len(t, state.Metadata().Links, 3)

	// Focus moves to the new link's text input.
	m = typeText(t, m, "third")
	assert.Equal(t, "third", state.Metadata().Links[2].Text)
	assert.Contains(t, m.View(), "Link 3 Text:")
}

func TestModel_Balance(t *testing.T) {
	m, state := newTestModel(t)

	msg := m.refreshBalance()()
	m = update(t, m, msg)
	assert.Equal(t, "1", state.Snapshot().Balance)
	assert.Contains(t, m.View(), "AR Token Balance: 1")
}

func TestModel_SubmitAndRetrieve(t *testing.T) {
	m, state := newTestModel(t)
	m = typeText(t, m, "Genesis")

	m, cmd := m.submit()
	require.NotNil(t, cmd)
	assert.True(t, state.Snapshot().Submitting)
	assert.Contains(t, m.View(), "Uploading...")

	// A second submit while the first is outstanding is refused.
	_, again := m.submit()
	assert.Equal(t, notifyMsg{level: "warning", message: form.ErrSubmitInFlight.Error()}, again())

	done, ok := cmd().(submitDoneMsg)
	require.True(t, ok)
	require.Equal(t, upload.StatusSuccess, done.result.Status)
	m = update(t, m, done)

	snap := state.Snapshot()
	assert.False(t, snap.Submitting)
	assert.Equal(t, done.result.TransactionID, snap.TransactionID)
	assert.Contains(t, m.View(), "Success! Transaction ID:")

	retrieved, ok := m.retrieve(snap.TransactionID)().(retrievedMsg)
	require.True(t, ok)
	require.NoError(t, retrieved.err)
	m = update(t, m, retrieved)

	assert.True(t, state.Snapshot().HasContent)
	assert.True(t, m.verified)
	view := m.View()
	assert.Contains(t, view, "Fetch Data")
	assert.Contains(t, view, "matches upload")
}

func TestModel_FailedSubmit(t *testing.T) {
	m, state := newTestModel(t)

	attempt, meta, err := state.BeginSubmit()
	require.NoError(t, err)
	failed := upload.Failed(upload.StageSubmit, "status 500")
	failed.StatusCode = 500
	m = update(t, m, submitDoneMsg{attempt: attempt, meta: meta, result: failed})

	snap := state.Snapshot()
	assert.Empty(t, snap.TransactionID)
	assert.False(t, snap.HasContent)
	assert.Contains(t, m.View(), "Failed to upload file to Arweave. Status: 500")
}

func TestModel_StaleRetrievalDropped(t *testing.T) {
	m, state := newTestModel(t)
	m = update(t, m, retrievedMsg{id: "someone-else", content: "<h1>x</h1>"})
	assert.False(t, state.Snapshot().HasContent)
	assert.NotContains(t, m.View(), "Fetch Data")
}

func TestModel_QuitClosesForm(t *testing.T) {
	m, state := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	_, _, err := state.BeginSubmit()
	assert.ErrorIs(t, err, form.ErrClosed)
}

func TestModel_LogPanel(t *testing.T) {
	m, _ := newTestModel(t)
	slog.New(m.deps.LogSink).Info("hello from the log")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.True(t, m.showLogPanel)
	assert.Contains(t, m.View(), "hello from the log")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.False(t, m.showLogPanel)
}

func TestRenderCard(t *testing.T) {
	out := RenderCard(card.Metadata{
		Title:       "Genesis",
		Owner:       "alice",
		Links:       []card.LinkEntry{{Href: "https://a", Text: "A"}, {Href: "https://b", Text: "B"}},
		Description: "first",
	}, 80)

	assert.Contains(t, out, "Genesis")
	assert.Contains(t, out, "Owner: alice")
	assert.Contains(t, out, "Description")
	assert.Less(t, strings.Index(out, "https://a"), strings.Index(out, "https://b"))
}

func TestWrapAndTruncate(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "abcdefg", truncate("abcdefg", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))

	cut := truncate("カードのタイトルです", 9)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "カード...", cut)
	assert.Equal(t, "é-card", truncate("é-card", 6))
}

func TestModel_VerifiesAgainstRetrievedUpload(t *testing.T) {
	m, state := newTestModel(t)
	m = typeText(t, m, "First")

	m, cmd := m.submit()
	first := cmd().(submitDoneMsg)
	require.Equal(t, upload.StatusSuccess, first.result.Status)
	m = update(t, m, first)
	m = update(t, m, m.retrieve(first.result.TransactionID)())
	require.True(t, m.verified)

	// A second upload whose retrieval fails leaves the first card on screen.
	m = typeText(t, m, " edit")
	m, cmd = m.submit()
	second := cmd().(submitDoneMsg)
	require.Equal(t, upload.StatusSuccess, second.result.Status)
	require.NotEqual(t, first.result.TransactionID, second.result.TransactionID)
	m = update(t, m, second)
	m = update(t, m, retrievedMsg{id: second.result.TransactionID, err: errors.New("gateway timeout")})

	snap := state.Snapshot()
	assert.Equal(t, first.result.TransactionID, snap.RetrievedID)

	m = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 50})
	assert.True(t, m.verified)
	assert.Contains(t, m.View(), "matches upload")
}

func TestModel_UnknownUploadIsUnverified(t *testing.T) {
	m, state := newTestModel(t)

	attempt, meta, err := state.BeginSubmit()
	require.NoError(t, err)
	m = update(t, m, submitDoneMsg{attempt: attempt, meta: meta, result: upload.Succeeded("abc123", "0.01")})
	delete(m.submitted, "abc123")

	m = update(t, m, retrievedMsg{id: "abc123", content: "<h1>T</h1>"})
	assert.True(t, state.Snapshot().HasContent)
	assert.False(t, m.verified)
	assert.Contains(t, m.View(), "unverified")
}

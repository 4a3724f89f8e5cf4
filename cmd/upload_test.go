package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
)

func TestParseLinks(t *testing.T) {
	links, err := parseLinks([]string{"Site=https://example.com", " Search = https://x.test/?q=a=b "})
	require.NoError(t, err)
	assert.Equal(t, []card.LinkEntry{
		{Text: "Site", Href: "https://example.com"},
		{Text: "Search", Href: "https://x.test/?q=a=b"},
	}, links)

	links, err = parseLinks(nil)
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = parseLinks([]string{"no-separator"})
	assert.Error(t, err)
}

func TestFillState(t *testing.T) {
	state := form.New()
	err := fillState(state, "T", "O", "D", []card.LinkEntry{
		{Text: "A", Href: "https://a"},
		{Text: "B", Href: "https://b"},
	})
	require.NoError(t, err)

	assert.Equal(t, card.Metadata{
		Title:       "T",
		Owner:       "O",
		Links:       []card.LinkEntry{{Href: "https://a", Text: "A"}, {Href: "https://b", Text: "B"}},
		Description: "D",
	}, state.Metadata())
}

func TestFillState_NoLinksKeepsEmptyEntry(t *testing.T) {
	state := form.New()
	require.NoError(t, fillState(state, "T", "", "", nil))
	assert.Equal(t, []card.LinkEntry{{}}, state.Metadata().Links)
}

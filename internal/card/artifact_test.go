package card

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestBuildArtifact_AnchorsFollowLinkOrder(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("links=%d", n), func(t *testing.T) {
			m := Metadata{Title: "T", Owner: "O", Description: "D"}
			for i := 0; i < n; i++ {
				m.Links = append(m.Links, LinkEntry{
					Href: fmt.Sprintf("https://example.com/%d", i),
					Text: fmt.Sprintf("link %d", i),
				})
			}

			html, err := BuildArtifact(m)
			require.NoError(t, err)

			anchors := parse(t, html).Find("a")
			require.Equal(t, n, anchors.Length())
			anchors.Each(func(i int, s *goquery.Selection) {
				href, _ := s.Attr("href")
				assert.Equal(t, m.Links[i].Href, href)
				assert.Equal(t, m.Links[i].Text, s.Text())
			})
			assert.Equal(t, n, parse(t, html).Find("br").Length())
		})
	}
}

func TestBuildArtifact_Layout(t *testing.T) {
	html, err := BuildArtifact(Metadata{
		Title:       "Genesis",
		Owner:       "alice",
		Links:       []LinkEntry{{Href: "http://x", Text: "X"}},
		Description: "first card",
	})
	require.NoError(t, err)

	doc := parse(t, html)
	assert.Equal(t, "Genesis", doc.Find("h1").Text())
	assert.Equal(t, "Owner: alice", doc.Find("h3").Text())
	assert.Equal(t, "Description", doc.Find("h2").Text())
	assert.Equal(t, "first card", doc.Find("h2").NextFiltered("p").Text())

	target, _ := doc.Find("a").Attr("target")
	assert.Equal(t, "_blank", target)
	style, _ := doc.Find("div").First().Attr("style")
	assert.Contains(t, style, "border-radius: 15px")
}

func TestBuildArtifact_Deterministic(t *testing.T) {
	m := Metadata{
		Title: "T",
		Owner: "O",
		Links: []LinkEntry{{Href: "http://a", Text: "A"}, {Href: "http://b", Text: "B"}},
	}
	first, err := BuildArtifact(m)
	require.NoError(t, err)
	second, err := BuildArtifact(m.Clone())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildArtifact_EscapesValues(t *testing.T) {
	html, err := BuildArtifact(Metadata{
		Title: `<script>alert(1)</script>`,
		Links: []LinkEntry{{Href: "javascript:alert(1)", Text: "<b>x</b>"}},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "javascript:")
	doc := parse(t, html)
	assert.Equal(t, `<script>alert(1)</script>`, doc.Find("h1").Text())
	assert.Equal(t, "<b>x</b>", doc.Find("a").Text())
}

func TestBuildArtifact_EmptyMetadata(t *testing.T) {
	html, err := BuildArtifact(New())
	require.NoError(t, err)
	assert.Equal(t, 1, parse(t, html).Find("a").Length())
	assert.Equal(t, []byte(html), Payload(html))
}

func TestClone_DoesNotAlias(t *testing.T) {
	m := Metadata{Links: []LinkEntry{{Href: "a", Text: "A"}}}
	c := m.Clone()
	c.Links[0].Text = "changed"
	assert.Equal(t, "A", m.Links[0].Text)
}

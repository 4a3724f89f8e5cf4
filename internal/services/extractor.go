package services

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mccwk.com/arcard/internal/card"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractCard reads card metadata back out of an uploaded artifact.
func (e *Extractor) ExtractCard(html string) (card.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return card.Metadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var m card.Metadata
	m.Title = e.CollapseWhitespace(doc.Find("h1").First().Text())

	owner := e.CollapseWhitespace(doc.Find("h3").First().Text())
	m.Owner = strings.TrimSpace(strings.TrimPrefix(owner, "Owner:"))

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m.Links = append(m.Links, card.LinkEntry{
			Href: href,
			Text: e.CollapseWhitespace(s.Text()),
		})
	})

	// The description is the paragraph following the "Description" heading.
	doc.Find("h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "Description" {
			return true
		}
		m.Description = e.CollapseWhitespace(s.NextFiltered("p").Text())
		return false
	})

	return m, nil
}

// Verify reports whether html is an artifact carrying want. Whitespace inside
// values is compared collapsed, the same way a browser would show it.
func (e *Extractor) Verify(html string, want card.Metadata) (bool, error) {
	got, err := e.ExtractCard(html)
	if err != nil {
		return false, err
	}
	if got.Title != e.CollapseWhitespace(want.Title) ||
		got.Owner != e.CollapseWhitespace(want.Owner) ||
		got.Description != e.CollapseWhitespace(want.Description) ||
		len(got.Links) != len(want.Links) {
		return false, nil
	}
	for i, l := range want.Links {
		if got.Links[i].Href != l.Href || got.Links[i].Text != e.CollapseWhitespace(l.Text) {
			return false, nil
		}
	}
	return true, nil
}

// CollapseWhitespace reduces runs of whitespace to single spaces while
// preserving paragraphs.
func (e *Extractor) CollapseWhitespace(text string) string {
	paragraphs := strings.Split(text, "\n\n")

	var cleaned []string
	for _, para := range paragraphs {
		fields := strings.Fields(para)
		if len(fields) > 0 {
			cleaned = append(cleaned, strings.Join(fields, " "))
		}
	}

	return strings.Join(cleaned, "\n\n")
}

package services

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer prepares retrieved content for display. Anything fetched from the
// network is untrusted, even when this app wrote it.
type Renderer struct {
	policy *bluemonday.Policy
	style  string
}

// NewRenderer creates a Renderer. style is a glamour standard style name
// ("dark", "light", "notty", ...); empty picks one from the terminal.
func NewRenderer(style string) *Renderer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowStyles(
		"border", "border-radius", "width", "height", "background",
		"box-shadow", "padding", "margin", "margin-top", "margin-right",
		"text-align", "display", "flex-direction", "justify-content",
	).Globally()

	return &Renderer{policy: p, style: style}
}

// Sanitize strips scripts, event handlers and anything else outside the
// card's vocabulary.
func (r *Renderer) Sanitize(html string) string {
	return r.policy.Sanitize(html)
}

// Terminal renders sanitized HTML as styled terminal text wrapped at width.
func (r *Renderer) Terminal(html string, width int) (string, error) {
	md, err := htmltomarkdown.ConvertString(r.Sanitize(html))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if r.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

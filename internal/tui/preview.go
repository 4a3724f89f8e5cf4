package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mccwk.com/arcard/internal/card"
)

// cardWidth mirrors the artifact's fixed 400px card.
const cardWidth = 44

// RenderCard draws m as a terminal card with the same fields, in the same
// order, as the uploaded artifact.
func RenderCard(m card.Metadata, width int) string {
	if width <= 0 || width > cardWidth {
		width = cardWidth
	}
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Width(inner).
		Align(lipgloss.Center)

	ownerStyle := lipgloss.NewStyle().
		Bold(true).
		Width(inner).
		Align(lipgloss.Center)

	linkStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Underline(true)

	hrefStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243"))

	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("13")).
		Width(inner).
		Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(titleStyle.Render(wrapText(m.Title, inner)) + "\n\n")
	b.WriteString(ownerStyle.Render(wrapText("Owner: "+m.Owner, inner)) + "\n\n")

	var links []string
	for _, l := range m.Links {
		line := linkStyle.Render(l.Text)
		if l.Href != "" {
			line += " " + hrefStyle.Render(l.Href)
		}
		links = append(links, lipgloss.PlaceHorizontal(inner, lipgloss.Center, line))
	}
	b.WriteString(strings.Join(links, "\n") + "\n\n")

	b.WriteString(headingStyle.Render("Description") + "\n")
	b.WriteString(lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(wrapText(m.Description, inner)))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("217")).
		Background(lipgloss.Color("24")).
		Padding(1, 1).
		Width(width)

	return cardStyle.Render(b.String())
}

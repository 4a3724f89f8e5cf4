package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// wrapText wraps text to the specified width, breaking on word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		if len(line) <= width {
			result.WriteString(line)
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) > width {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// truncate shortens s to n terminal cells, marking the cut with an ellipsis.
// Multi-byte characters are never split.
func truncate(s string, n int) string {
	if n <= 3 {
		return s
	}
	return ansi.Truncate(s, n, "...")
}

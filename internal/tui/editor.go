package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
)

type fieldKind int

const (
	kindTitle fieldKind = iota
	kindOwner
	kindLinkText
	kindLinkHref
)

type editorField struct {
	kind  fieldKind
	link  int
	input textinput.Model
}

// EditorModel holds the inputs for one card. Focus order is title, owner,
// each link's text and URL, description, then the upload button.
type EditorModel struct {
	fields      []editorField
	description textarea.Model
	focusIndex  int
	width       int
}

func NewEditorModel(meta card.Metadata) EditorModel {
	m := EditorModel{width: 40}
	m.fields = append(m.fields,
		editorField{kind: kindTitle, input: newInput("Title: ", "My card", meta.Title)},
		editorField{kind: kindOwner, input: newInput("Owner: ", "name or address", meta.Owner)},
	)
	for i, l := range meta.Links {
		m.fields = append(m.fields, linkFields(i, l)...)
	}

	m.description = textarea.New()
	m.description.Placeholder = "Describe the card..."
	m.description.SetWidth(m.width)
	m.description.SetHeight(4)
	m.description.SetValue(meta.Description)

	m.focus()
	return m
}

func newInput(prompt, placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

func linkFields(index int, l card.LinkEntry) []editorField {
	n := index + 1
	return []editorField{
		{kind: kindLinkText, link: index, input: newInput(fmt.Sprintf("Link %d Text: ", n), "Website", l.Text)},
		{kind: kindLinkHref, link: index, input: newInput(fmt.Sprintf("Link %d URL: ", n), "https://example.com", l.Href)},
	}
}

func (m EditorModel) descriptionIndex() int { return len(m.fields) }

func (m EditorModel) buttonIndex() int { return len(m.fields) + 1 }

// OnButton reports whether the upload button has focus.
func (m EditorModel) OnButton() bool {
	return m.focusIndex == m.buttonIndex()
}

// AddLink appends inputs for a link the form state just grew.
func (m *EditorModel) AddLink(index int) {
	m.fields = append(m.fields, linkFields(index, card.LinkEntry{})...)
	m.focusIndex = len(m.fields) - 2
	m.focus()
}

func (m *EditorModel) SetWidth(width int) {
	if width < 30 {
		width = 30
	}
	m.width = width
	for i := range m.fields {
		m.fields[i].input.Width = width - lipgloss.Width(m.fields[i].input.Prompt) - 2
	}
	m.description.SetWidth(width)
}

func (m *EditorModel) cycle(delta int) {
	total := m.buttonIndex() + 1
	m.focusIndex = (m.focusIndex + delta + total) % total
	m.focus()
}

func (m *EditorModel) focus() {
	for i := range m.fields {
		if i == m.focusIndex {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
	if m.focusIndex == m.descriptionIndex() {
		m.description.Focus()
	} else {
		m.description.Blur()
	}
}

// Update routes msg to the focused input and writes any change through to
// the form state.
func (m EditorModel) Update(msg tea.Msg, state *form.State) (EditorModel, tea.Cmd, error) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			m.cycle(1)
			return m, nil, nil
		case "shift+tab":
			m.cycle(-1)
			return m, nil, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case m.focusIndex < len(m.fields):
		f := &m.fields[m.focusIndex]
		before := f.input.Value()
		f.input, cmd = f.input.Update(msg)
		if after := f.input.Value(); after != before {
			if err := writeField(state, *f, after); err != nil {
				return m, cmd, err
			}
		}
	case m.focusIndex == m.descriptionIndex():
		before := m.description.Value()
		m.description, cmd = m.description.Update(msg)
		if after := m.description.Value(); after != before {
			if err := state.SetField(form.FieldDescription, after); err != nil {
				return m, cmd, err
			}
		}
	}
	return m, cmd, nil
}

func writeField(state *form.State, f editorField, value string) error {
	switch f.kind {
	case kindTitle:
		return state.SetField(form.FieldTitle, value)
	case kindOwner:
		return state.SetField(form.FieldOwner, value)
	case kindLinkText:
		return state.SetLinkField(f.link, form.LinkText, value)
	case kindLinkHref:
		return state.SetLinkField(f.link, form.LinkHref, value)
	}
	return nil
}

func (m EditorModel) View(submitting bool) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("6"))

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Enter NFT Data") + "\n\n")

	for _, f := range m.fields {
		if f.kind == kindLinkText {
			content.WriteString("\n")
		}
		content.WriteString(f.input.View() + "\n")
	}

	content.WriteString("\n" + labelStyle.Render("Description:") + "\n")
	content.WriteString(m.description.View() + "\n\n")

	btn := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	label := " Generate File & Upload to Arweave "
	switch {
	case submitting:
		btn = btn.Foreground(lipgloss.Color("243"))
		label = " Uploading... "
	case m.OnButton():
		btn = btn.Bold(true).Foreground(lipgloss.Color("10")).BorderForeground(lipgloss.Color("10"))
	}
	content.WriteString(btn.Render(label))

	return content.String()
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"go.dalton.dog/bubbleup"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/logging"
	"mccwk.com/arcard/internal/services"
	"mccwk.com/arcard/internal/upload"
)

// logPanelHeight is the total screen rows reserved for the log panel
// (including its border and title) when it is visible.
const logPanelHeight = 12

// notifyMsg surfaces a user-visible notification.
type notifyMsg struct {
	level   string // "info" | "success" | "warning" | "error"
	message string
}

func notifyCmd(level, message string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{level: level, message: message} }
}

func notifyKey(level string) string {
	switch level {
	case "warning":
		return bubbleup.WarnKey
	case "error":
		return bubbleup.ErrorKey
	default: // "info", "success"
		return bubbleup.InfoKey
	}
}

// Messages
type balanceMsg struct {
	balance string
}

type submitDoneMsg struct {
	attempt form.Attempt
	meta    card.Metadata
	result  upload.Result
}

type retrievedMsg struct {
	id      string
	content string
	err     error
}

type errMsg struct {
	err error
}

// Deps are the long-lived services the UI drives. They are built once at
// startup and shared.
type Deps struct {
	Workflow  *upload.Workflow
	Fetcher   *upload.ContentFetcher
	Renderer  *services.Renderer
	Extractor *services.Extractor
	LogSink   *logging.MemorySink
	// Gateway is the base URL uploaded content is viewable at.
	Gateway string
}

type Model struct {
	ctx   context.Context
	state *form.State
	deps  Deps

	editor EditorModel

	// submitted maps each successful upload's transaction id to the metadata
	// it carried, so retrieved content is verified against its own upload.
	submitted map[string]card.Metadata

	retrievedView     viewport.Model
	retrievedReady    bool
	retrievedRendered string
	verified          bool

	alert bubbleup.AlertModel

	logViewport  viewport.Model
	logReady     bool
	showLogPanel bool

	width  int
	height int
}

func NewModel(ctx context.Context, state *form.State, deps Deps) Model {
	alert := bubbleup.NewAlertModel(70, false, 4*time.Second).
		WithMinWidth(20).
		WithPosition(bubbleup.TopRightPosition)

	return Model{
		ctx:       ctx,
		state:     state,
		deps:      deps,
		editor:    NewEditorModel(state.Metadata()),
		submitted: make(map[string]card.Metadata),
		alert:     alert,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshBalance(),
		m.alert.Init(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always tick the alert model so its dismiss timer works.
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case notifyMsg:
		cmds = append(cmds, m.alert.NewAlertCmd(notifyKey(msg.level), msg.message))
		return m, tea.Batch(cmds...)

	case errMsg:
		cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, msg.err.Error()))
		return m, tea.Batch(cmds...)

	case balanceMsg:
		m.state.SetBalance(msg.balance)
		return m, tea.Batch(cmds...)

	case submitDoneMsg:
		id, fetch := m.state.FinishSubmit(msg.attempt, msg.result)
		switch msg.result.Status {
		case upload.StatusSuccess:
			m.submitted[msg.result.TransactionID] = msg.meta
			cmds = append(cmds, notifyCmd("success", "Uploaded "+truncate(msg.result.TransactionID, 16)))
		case upload.StatusFailed:
			cmds = append(cmds, notifyCmd("error", "Upload failed"))
		}
		if fetch {
			cmds = append(cmds, m.retrieve(id))
		}
		m.refreshLogViewport()
		return m, tea.Batch(cmds...)

	case retrievedMsg:
		if msg.err == nil && m.state.SetRetrieved(msg.id, msg.content) {
			m.renderRetrieved()
		}
		m.refreshLogViewport()
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(m.leftWidth() - 4)

		logInnerH := logPanelHeight - 4 // subtract border rows + title
		if !m.logReady {
			m.logViewport = viewport.New(m.width-4, logInnerH)
			m.logReady = true
		} else {
			m.logViewport.Width = m.width - 4
			m.logViewport.Height = logInnerH
		}
		if !m.retrievedReady {
			m.retrievedView = viewport.New(m.rightWidth()-4, 12)
			m.retrievedReady = true
		} else {
			m.retrievedView.Width = m.rightWidth() - 4
		}
		m.renderRetrieved()
		if m.showLogPanel {
			m.refreshLogViewport()
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.state.Close()
			return m, tea.Quit

		case "ctrl+l":
			m.showLogPanel = !m.showLogPanel
			if m.showLogPanel {
				m.refreshLogViewport()
			}
			return m, tea.Batch(cmds...)

		case "ctrl+a":
			n := m.state.AddLink()
			m.editor.AddLink(n - 1)
			return m, tea.Batch(cmds...)

		case "ctrl+s":
			var cmd tea.Cmd
			m, cmd = m.submit()
			return m, tea.Batch(append(cmds, cmd)...)

		case "ctrl+o":
			cmds = append(cmds, m.openArtifact())
			return m, tea.Batch(cmds...)

		case "ctrl+g":
			if id := m.state.Snapshot().TransactionID; id != "" && m.deps.Gateway != "" {
				cmds = append(cmds, openURL(strings.TrimRight(m.deps.Gateway, "/")+"/"+id))
			}
			return m, tea.Batch(cmds...)

		case "pgup", "pgdown":
			if m.showLogPanel && m.logReady {
				var vpCmd tea.Cmd
				m.logViewport, vpCmd = m.logViewport.Update(msg)
				return m, tea.Batch(append(cmds, vpCmd)...)
			}
			if m.retrievedReady {
				var vpCmd tea.Cmd
				m.retrievedView, vpCmd = m.retrievedView.Update(msg)
				return m, tea.Batch(append(cmds, vpCmd)...)
			}

		case "enter":
			if m.editor.OnButton() {
				var cmd tea.Cmd
				m, cmd = m.submit()
				return m, tea.Batch(append(cmds, cmd)...)
			}
		}
	}

	var cmd tea.Cmd
	var err error
	m.editor, cmd, err = m.editor.Update(msg, m.state)
	if err != nil {
		cmds = append(cmds, func() tea.Msg { return errMsg{err: err} })
	}
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit starts an upload unless one is already outstanding; the button is
// disabled until it finishes.
func (m Model) submit() (Model, tea.Cmd) {
	attempt, meta, err := m.state.BeginSubmit()
	if err != nil {
		return m, notifyCmd("warning", err.Error())
	}

	ctx, workflow := m.ctx, m.deps.Workflow
	return m, func() tea.Msg {
		return submitDoneMsg{
			attempt: attempt,
			meta:    meta,
			result:  workflow.Submit(ctx, meta),
		}
	}
}

func (m Model) refreshBalance() tea.Cmd {
	ctx, workflow := m.ctx, m.deps.Workflow
	return func() tea.Msg {
		return balanceMsg{balance: workflow.RefreshBalance(ctx)}
	}
}

func (m Model) retrieve(id string) tea.Cmd {
	ctx, fetcher := m.ctx, m.deps.Fetcher
	return func() tea.Msg {
		content, err := fetcher.Fetch(ctx, id)
		return retrievedMsg{id: id, content: content, err: err}
	}
}

func (m Model) openArtifact() tea.Cmd {
	meta := m.state.Metadata()
	return func() tea.Msg {
		artifact, err := card.BuildArtifact(meta)
		if err != nil {
			return errMsg{err: err}
		}
		if err := browser.OpenReader(strings.NewReader(artifact)); err != nil {
			return errMsg{err: fmt.Errorf("failed to open browser: %w", err)}
		}
		return nil
	}
}

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.OpenURL(url); err != nil {
			return errMsg{err: fmt.Errorf("failed to open browser: %w", err)}
		}
		return nil
	}
}

// renderRetrieved refreshes the retrieved-content viewport from the state.
func (m *Model) renderRetrieved() {
	snap := m.state.Snapshot()
	if !snap.HasContent {
		return
	}

	width := m.rightWidth() - 4
	if width < 20 {
		width = 20
	}
	rendered, err := m.deps.Renderer.Terminal(snap.Retrieved, width)
	if err != nil {
		rendered = wrapText(m.deps.Renderer.Sanitize(snap.Retrieved), width)
	}
	m.retrievedRendered = rendered

	m.verified = false
	if want, found := m.submitted[snap.RetrievedID]; found {
		ok, err := m.deps.Extractor.Verify(snap.Retrieved, want)
		m.verified = err == nil && ok
	}

	if m.retrievedReady {
		m.retrievedView.SetContent(rendered)
		m.retrievedView.GotoTop()
	}
}

// refreshLogViewport updates the log viewport content from the in-memory
// sink and scrolls to the most recent entry.
func (m *Model) refreshLogViewport() {
	if !m.logReady || m.deps.LogSink == nil {
		return
	}
	m.logViewport.SetContent(m.deps.LogSink.Render(m.logViewport.Width))
	m.logViewport.GotoBottom()
}

func (m Model) leftWidth() int {
	w := m.width / 2
	if w < 40 {
		w = 40
	}
	return w
}

func (m Model) rightWidth() int {
	w := m.width - m.leftWidth() - 2
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	snap := m.state.Snapshot()

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var left strings.Builder
	left.WriteString(dimStyle.Render("AR Token Balance: ") + snap.Balance + "\n\n")
	left.WriteString(m.editor.View(snap.Submitting) + "\n\n")
	left.WriteString(dimStyle.Render("File Uploading Fee: ") + snap.Fee + "\n")
	switch snap.Result.Status {
	case upload.StatusSuccess:
		left.WriteString(successStyle.Render(wrapText(snap.StatusMessage, m.leftWidth()-4)) + "\n")
	case upload.StatusFailed:
		left.WriteString(errorStyle.Render(wrapText(snap.StatusMessage, m.leftWidth()-4)) + "\n")
	}

	leftPanel := lipgloss.NewStyle().
		Width(m.leftWidth()).
		Padding(0, 1).
		Render(left.String())

	right := RenderCard(snap.Metadata, m.rightWidth())
	if snap.HasContent {
		right += "\n\n" + m.renderRetrievedPanel(snap)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, "  ", right)

	footer := dimStyle.Render("Tab: next field • Ctrl+A: add link • Ctrl+S: upload • Ctrl+O: preview in browser • Ctrl+G: open on gateway • Ctrl+L: logs • Ctrl+C: quit")
	content += "\n" + footer

	if m.showLogPanel {
		content += "\n" + m.renderLogPanel()
	}

	return m.alert.Render(content)
}

func (m Model) renderRetrievedPanel(snap form.Snapshot) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("6"))

	badge := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Render("unverified")
	if m.verified {
		badge = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓ matches upload")
	}

	header := titleStyle.Render("Fetch Data") + "  " + badge + "\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Render(truncate(snap.RetrievedID, m.rightWidth()-4))

	body := m.retrievedRendered
	if m.retrievedReady {
		body = m.retrievedView.View()
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1).
		Width(m.rightWidth()).
		Render(header + "\n\n" + body)
}

func (m Model) renderLogPanel() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("6"))

	hintStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243"))

	title := titleStyle.Render("Logs") +
		hintStyle.Render("  PgUp/PgDn: scroll • Ctrl+L: close")

	var body string
	if m.logReady && m.deps.LogSink != nil {
		body = title + "\n" + m.logViewport.View()
	} else {
		body = title + "\n" + hintStyle.Render("(no log sink configured)")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("237")).
		Padding(0, 1).
		Width(m.width - 4).
		Render(body)
}

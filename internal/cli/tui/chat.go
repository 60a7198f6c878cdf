// Package tui is the interactive chat interface. It renders the transcript
// through a viewport, sends prompts synchronously, and tags every in-flight
// request with the session owner so results landing after a logout are
// dropped instead of shown to the wrong user.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/conversation"
	"github.com/MADANW/MuhsinAI/internal/cli/session"
	"github.com/MADANW/MuhsinAI/internal/cli/types"
)

// UI configuration constants
const (
	defaultInputWidth     = 100
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	defaultWindowWidth    = 100
	defaultWindowHeight   = 40
	inputCharLimit        = 2000
	inputHeightReserved   = 2
	statusHeightReserved  = 3
	minContentHeight      = 10
	historyPageSize       = 20
)

// Style definitions
var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// sendState tracks whether a prompt is in flight. Input is disabled while
// the server is thinking.
type sendState int

const (
	sendIdle sendState = iota
	sendBusy
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(apiClient *client.APIClient, sess *session.Manager) *ChatProgram {
	return &ChatProgram{model: initialModel(apiClient, sess)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	apiClient *client.APIClient
	session   *session.Manager
	conv      *conversation.Conversation

	// UI components
	input       textinput.Model
	contentView viewport.Model

	state          sendState
	loadingHistory bool
	err            error

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(apiClient *client.APIClient, sess *session.Manager) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask for a schedule..."
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	return chatModel{
		apiClient:   apiClient,
		session:     sess,
		conv:        conversation.New(sess.OwnerID(), historyPageSize),
		input:       input,
		contentView: contentViewport,
		state:       sendIdle,
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory())
}

// Message type definitions
type (
	historyMsg struct {
		ownerID string
		page    *types.HistoryData
	}
	historyErrMsg struct{ err error }
	sendResultMsg struct {
		ownerID  string
		exchange *types.Exchange
	}
	sendErrMsg  struct{ err error }
	deleteOKMsg struct{ id string }
	deleteErrMsg struct {
		err      error
		exchange types.Exchange
	}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case historyMsg:
		m.loadingHistory = false
		// A page fetched for a previous session is worthless now.
		if msg.ownerID == m.conv.OwnerID() {
			m.conv.AddPage(msg.page)
			m.refreshContent(false)
		}

	case historyErrMsg:
		m.loadingHistory = false
		cmds = append(cmds, m.handleRequestErr(msg.err)...)
		m.refreshContent(true)

	case sendResultMsg:
		m.state = sendIdle
		m.err = nil
		if m.conv.Append(msg.ownerID, msg.exchange) {
			m.refreshContent(true)
		}

	case sendErrMsg:
		m.state = sendIdle
		cmds = append(cmds, m.handleRequestErr(msg.err)...)
		m.refreshContent(true)

	case deleteOKMsg:
		// Already removed optimistically, nothing to do.

	case deleteErrMsg:
		// Server said no, put the exchange back.
		m.conv.Restore(msg.exchange)
		cmds = append(cmds, m.handleRequestErr(msg.err)...)
		m.refreshContent(true)
	}

	if m.state != sendBusy {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != sendBusy {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.startSend()
				cmds = append(cmds, m.sendPrompt(text))
			}
		}

	case tea.KeyCtrlX:
		if m.state != sendBusy {
			if cmd := m.deleteLast(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		// Scrolling past the top pulls the next older page.
		if m.contentView.AtTop() && m.conv.HasMore() && !m.loadingHistory {
			m.loadingHistory = true
			cmds = append(cmds, m.loadHistory())
		} else {
			m.contentView.ViewUp()
		}

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

// handleWindowResize handles window size changes
func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	// Reapply wrapping when window size changes
	m.refreshContent(false)
}

// handleRequestErr records an error for display. An unauthorized reply
// means the token died mid-session: the session manager drops the stored
// credentials and the TUI exits rather than keep acting signed in.
func (m *chatModel) handleRequestErr(err error) []tea.Cmd {
	if m.session.HandleUnauthorized(err) {
		m.err = fmt.Errorf("session expired, run 'muhsinctl login' to sign in again")
		return []tea.Cmd{tea.Quit}
	}
	m.err = err
	return nil
}

// startSend clears the input and marks the model busy.
func (m *chatModel) startSend() {
	m.input.Reset()
	m.err = nil
	m.state = sendBusy
	m.refreshContent(true)
}

// loadHistory fetches the next older page for the current owner.
func (m chatModel) loadHistory() tea.Cmd {
	owner := m.conv.OwnerID()
	page := m.conv.NextPage()
	pageSize := m.conv.PageSize()
	c := m.apiClient
	return func() tea.Msg {
		data, err := c.History(context.Background(), page, pageSize)
		if err != nil {
			return historyErrMsg{err: err}
		}
		return historyMsg{ownerID: owner, page: data}
	}
}

// deleteLast removes the newest exchange optimistically and asks the server
// to delete it; a rejection restores it.
func (m *chatModel) deleteLast() tea.Cmd {
	exchanges := m.conv.Exchanges()
	if len(exchanges) == 0 {
		return nil
	}
	last := exchanges[len(exchanges)-1]
	removed, ok := m.conv.Remove(last.ID)
	if !ok {
		return nil
	}
	m.err = nil
	m.refreshContent(true)

	c := m.apiClient
	return func() tea.Msg {
		if err := c.DeleteExchange(context.Background(), removed.ID); err != nil {
			return deleteErrMsg{err: err, exchange: removed}
		}
		return deleteOKMsg{id: removed.ID}
	}
}

// sendPrompt submits one prompt. The result carries the owner it was sent
// for; Update discards it when the session changed underneath.
func (m chatModel) sendPrompt(prompt string) tea.Cmd {
	owner := m.session.OwnerID()
	c := m.apiClient
	return func() tea.Msg {
		ex, err := c.Send(context.Background(), prompt)
		if err != nil {
			return sendErrMsg{err: err}
		}
		return sendResultMsg{ownerID: owner, exchange: ex}
	}
}

// refreshContent rebuilds the viewport from the conversation.
func (m *chatModel) refreshContent(gotoBottom bool) {
	var b strings.Builder

	if m.conv.HasMore() {
		b.WriteString(dimStyle.Render("PgUp at top loads earlier exchanges"))
		b.WriteString("\n")
	}

	for _, msg := range m.conv.Messages() {
		b.WriteString("\n")
		if msg.Role == "user" {
			b.WriteString(boldStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
			b.WriteString("\n")
			continue
		}

		b.WriteString(accentStyle.Render("Assistant"))
		if msg.NotSaved {
			b.WriteString(" ")
			b.WriteString(warnStyle.Render("(not saved)"))
		}
		b.WriteString("\n")
		b.WriteString(m.renderAssistant(msg))
	}

	if m.state == sendBusy {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Thinking..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	display := b.String()
	if m.width > 0 {
		display = m.wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	if gotoBottom {
		m.contentView.GotoBottom()
	}
}

// renderAssistant renders one assistant turn, schedule included.
func (m *chatModel) renderAssistant(msg conversation.Message) string {
	var b strings.Builder
	b.WriteString(msg.Content)
	b.WriteString("\n")

	sched := msg.Schedule
	if sched == nil {
		return b.String()
	}

	header := sched.Type + " schedule"
	if sched.DateRange != nil {
		header += fmt.Sprintf("  %s to %s", sched.DateRange.StartDate, sched.DateRange.EndDate)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")

	for _, ev := range sched.Events {
		line := fmt.Sprintf("  %s  %s-%s  %s", ev.Date, ev.StartTime, ev.EndTime, ev.Title)
		b.WriteString(line)
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s/%s]", ev.Category, ev.Priority)))
		if ev.Invalid {
			b.WriteString(" ")
			b.WriteString(warnStyle.Render("⚠ check times"))
		}
		b.WriteString("\n")
		if ev.Description != "" {
			b.WriteString(dimStyle.Render("      " + ev.Description))
			b.WriteString("\n")
		}
	}

	for _, s := range sched.Suggestions {
		b.WriteString(dimStyle.Render("  tip: " + s))
		b.WriteString("\n")
	}

	return b.String()
}

// wrapText applies auto-wrapping to text, handling wide character widths
func (m *chatModel) wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		// Keep empty lines as-is
		if strings.TrimSpace(line) == "" {
			continue
		}

		result.WriteString(m.wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text, handling wide character widths
func (m *chatModel) wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	// Top status bar
	who := m.session.Server()
	if u := m.session.User(); u != nil {
		who = u.Email
	}
	status := dimStyle.Render("MuhsinAI • " + who)
	if m.state == sendBusy {
		status += dimStyle.Render(" • thinking...")
	} else if m.loadingHistory {
		status += dimStyle.Render(" • loading history...")
	}

	// Content area
	content := m.contentView.View()

	// Input area
	var inputView string
	if m.state == sendBusy {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for reply...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	// Bottom help text
	help := ""
	if m.state != sendBusy {
		help = dimStyle.Render("Enter send • ↑↓ scroll • PgUp older • Ctrl+X delete last • Esc quit")
	}

	parts := []string{status, "", content, "", inputView}
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Package tui provides the interactive chat interface.
//
// Answers stream in token by token: the service's fragment callback
// pushes onto a channel and a Bubble Tea command pulls from it, so the
// Update loop stays single-threaded while generation runs concurrently.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
)

// streamEvent carries one step of an in-flight answer.
type streamEvent struct {
	fragment string
	answer   string
	err      error
	done     bool
}

// fragmentMsg wraps a streamEvent as a Bubble Tea message.
type fragmentMsg streamEvent

// chatMessage is one rendered exchange line.
type chatMessage struct {
	role string
	text string
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	chat      driving.ChatService
	sessionID string

	input    textinput.Model
	viewport viewport.Model
	messages []chatMessage
	partial  string
	events   chan streamEvent

	streaming bool
	ready     bool
	status    string
}

// New creates a new chat model bound to a session.
func New(chat driving.ChatService, sessionID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about travelling the Philippines"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		chat:      chat,
		sessionID: sessionID,
		input:     ti,
		viewport:  vp,
		status:    "Ready. Type a question and press Enter.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.streaming {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.messages = append(m.messages, chatMessage{role: "You", text: question})
			m.partial = ""
			m.streaming = true
			m.status = "Thinking..."
			m.events = make(chan streamEvent, 16)
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.ask(question), m.waitForEvent())
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}

	case fragmentMsg:
		if msg.done {
			m.streaming = false
			if msg.err != nil {
				m.status = "Error: " + msg.err.Error()
			} else {
				m.messages = append(m.messages, chatMessage{role: "Lakbay", text: msg.answer})
				m.status = "Ready."
			}
			m.partial = ""
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		}
		m.partial += msg.fragment
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the answer pipeline in the background, forwarding fragments
// onto the event channel.
func (m Model) ask(question string) tea.Cmd {
	events := m.events
	return func() tea.Msg {
		go func() {
			answer, err := m.chat.Answer(context.Background(), question, m.sessionID, func(fragment string) {
				events <- streamEvent{fragment: fragment}
			})
			events <- streamEvent{answer: answer, err: err, done: true}
			close(events)
		}()
		return nil
	}
}

// waitForEvent pulls the next stream event off the channel.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return fragmentMsg(event)
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Lakbay — Philippines Travel Chat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// renderTranscript renders the full conversation plus any in-flight
// partial answer.
func (m Model) renderTranscript() string {
	if len(m.messages) == 0 && m.partial == "" {
		return "Ask anything about travelling the Philippines."
	}

	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.role == "You" {
			sb.WriteString(userStyle.Render(msg.role + ":"))
		} else {
			sb.WriteString(assistantStyle.Render(msg.role + ":"))
		}
		sb.WriteString(" ")
		sb.WriteString(msg.text)
	}
	if m.partial != "" || m.streaming {
		if len(m.messages) > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(assistantStyle.Render("Lakbay:"))
		sb.WriteString(" ")
		sb.WriteString(m.partial)
	}
	return sb.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

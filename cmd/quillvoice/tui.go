package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/quillchat/voice-core/core"
)

type (
	stateChangedMsg struct {
		previous orchestration.State
		current  orchestration.State
		message  string
	}
	audioLevelMsg       struct{ level float64 }
	utteranceMsg        struct{ text string }
	responseFragmentMsg struct{ text string }
	responseCompletedMsg struct {
		text  string
		title string
	}
	bargeInMsg   struct{}
	loopStartErr struct{ err error }
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	noticeStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	meterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type transcriptEntry struct {
	speaker string
	style   lipgloss.Style
	text    string
}

type runModel struct {
	orchestrator *orchestration.Orchestrator
	assistant    string

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int

	state     orchestration.State
	fault     string
	level     float64
	title     string
	entries   []transcriptEntry
	streaming strings.Builder
	quitting  bool
}

func newRunModel(orchestrator *orchestration.Orchestrator, assistant string) *runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	return &runModel{
		orchestrator: orchestrator,
		assistant:    assistant,
		spinner:      s,
		state:        orchestration.StateIdle,
	}
}

func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoop)
}

// startLoop starts the voice loop once the program is running, so that every
// callback has a live program to deliver to.
func (m *runModel) startLoop() tea.Msg {
	if err := m.orchestrator.Start(context.Background(), m.assistant); err != nil {
		return loopStartErr{err: err}
	}
	return nil
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		headerHeight := 3
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshTranscript()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loopStartErr:
		m.fault = msg.err.Error()
		m.state = orchestration.StateError

	case stateChangedMsg:
		m.state = msg.current
		if msg.current == orchestration.StateError {
			m.fault = msg.message
		}

	case audioLevelMsg:
		m.level = msg.level

	case utteranceMsg:
		m.entries = append(m.entries, transcriptEntry{speaker: "You", style: userStyle, text: msg.text})
		m.streaming.Reset()
		m.refreshTranscript()

	case responseFragmentMsg:
		m.streaming.WriteString(msg.text)
		m.refreshTranscript()

	case responseCompletedMsg:
		m.entries = append(m.entries, transcriptEntry{speaker: "Assistant", style: assistantStyle, text: msg.text})
		m.streaming.Reset()
		if msg.title != "" {
			m.title = msg.title
		}
		m.refreshTranscript()

	case bargeInMsg:
		m.entries = append(m.entries, transcriptEntry{speaker: "", style: noticeStyle, text: "(interrupted)"})
		m.refreshTranscript()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *runModel) refreshTranscript() {
	if !m.ready {
		return
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, entry := range m.entries {
		if entry.speaker != "" {
			b.WriteString(entry.style.Render(entry.speaker + ":"))
			b.WriteString("\n")
		}
		b.WriteString(wordwrap.String(entry.text, width))
		b.WriteString("\n\n")
	}

	if partial := m.streaming.String(); partial != "" {
		b.WriteString(assistantStyle.Render("Assistant:"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(partial, width))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *runModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  " + m.spinner.View() + " starting…"
	}

	title := m.title
	if title == "" {
		title = "New conversation"
	}

	var status string
	switch m.state {
	case orchestration.StateListening:
		status = fmt.Sprintf("Listening %s", m.levelMeter())
	case orchestration.StateProcessing:
		status = m.spinner.View() + " Thinking"
	case orchestration.StateSpeaking:
		status = "Speaking (talk to interrupt)"
	case orchestration.StateError:
		status = errorStyle.Render("Error: " + m.fault)
	default:
		status = string(m.state)
	}

	header := titleStyle.Render(title) + "\n" + statusStyle.Render(status) + "\n"
	footer := "\n" + helpStyle.Render("q: end conversation · ↑/↓: scroll")

	return header + m.viewport.View() + footer
}

func (m *runModel) levelMeter() string {
	const width = 12
	filled := int(m.level * 8 * width)
	if filled > width {
		filled = width
	}
	return meterStyle.Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}

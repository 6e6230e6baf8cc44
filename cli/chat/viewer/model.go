package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/projectforge/forge/cli/chat/types"
	"github.com/projectforge/forge/internal/markdown"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

// Viewer-specific styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#22C55E"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// ExitMsg is sent when exiting the viewer.
type ExitMsg struct{}

// Model is the full-screen message viewer.
type Model struct {
	messages     []session.Message
	currentIndex int
	viewport     viewport.Model
	renderer     *markdown.Renderer
	width        int
	height       int
}

// New creates a new viewer model starting at the last message.
func New(messages []session.Message, renderer *markdown.Renderer, width, height int) *Model {
	m := &Model{
		messages:     messages,
		currentIndex: max(len(messages)-1, 0),
		renderer:     renderer,
		width:        width,
		height:       height,
	}

	// Reserve 2 lines for the footer.
	m.viewport = viewport.New(width, max(height-2, 1))
	m.viewport.MouseWheelEnabled = false // Disable mouse for copy/paste
	m.renderer.SetWidth(width)
	m.updateContent()
	return m
}

// Init initializes the viewer model.
func (m *Model) Init() tea.Cmd {
	return tea.DisableMouse
}

// Current returns the message on screen.
func (m *Model) Current() (session.Message, bool) {
	if len(m.messages) == 0 {
		return session.Message{}, false
	}
	return m.messages[m.currentIndex], true
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "alt+v":
			return m, func() tea.Msg { return ExitMsg{} }

		case "alt+w":
			current, ok := m.Current()
			if !ok {
				return m, nil
			}
			content := transcript.Markdown(current)
			return m, func() tea.Msg { return types.CopyMsg{Content: content} }

		case "j", "down":
			if m.currentIndex > 0 {
				m.currentIndex--
				m.updateContent()
				m.viewport.GotoTop()
			}
			return m, nil

		case "k", "up":
			if m.currentIndex < len(m.messages)-1 {
				m.currentIndex++
				m.updateContent()
				m.viewport.GotoTop()
			}
			return m, nil

		case "g":
			m.viewport.GotoTop()
			return m, nil

		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		m.renderer.SetWidth(msg.Width)
		m.updateContent()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewer.
func (m *Model) View() string {
	if len(m.messages) == 0 {
		return "No messages to display. Press q to exit."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	footer := fmt.Sprintf(" %d/%d │ j/k next │ Alt+W copy │ q exit",
		m.currentIndex+1, len(m.messages))
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

func (m *Model) updateContent() {
	current, ok := m.Current()
	if !ok {
		m.viewport.SetContent("No messages")
		return
	}

	var b strings.Builder
	if current.Role == session.RoleCoach {
		b.WriteString(headerStyle.Render("🌱 Coach"))
	} else {
		b.WriteString(headerStyle.Render("✍️  You"))
	}
	if !current.Timestamp.IsZero() {
		b.WriteString(" ")
		b.WriteString(timestampStyle.Render(current.Timestamp.Local().Format("Jan 2 15:04")))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderer.Render(current.ID, transcript.Markdown(current)))
	m.viewport.SetContent(b.String())
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/projectforge/forge/cli/chat/types"
	"github.com/projectforge/forge/cli/chat/viewer"
	"github.com/projectforge/forge/internal/session"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	// Log for non-tick messages only
	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		default:
			log.Debug("update completed", "msg_type", fmt.Sprintf("%T", msg), "focus", m.focus)
		}
	}()

	switch msg := msg.(type) {
	case viewer.ExitMsg:
		m.viewerMode = false
		m.viewerModel = nil
		m.recalculateLayout()
		m.viewport.GotoBottom()
		return m, tea.Batch(textarea.Blink, tea.EnableMouseCellMotion)

	case types.CopyMsg:
		cmds = append(cmds, m.copyToClipboard(msg.Content))
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.viewerMode {
			var cmd tea.Cmd
			m.viewerModel, cmd = m.viewerModel.Update(msg)
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)
		}
		if cmd, handled := m.handleKey(msg); handled {
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.viewerMode && m.viewerModel != nil {
			m.viewerModel, _ = m.viewerModel.Update(msg)
		}
		m.recalculateLayout()

	case types.SubmitDoneMsg:
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case types.SelectDoneMsg:
		if msg.Err != nil {
			log.Warn("conversation failed to load", "conversation_id", msg.ID, "error", msg.Err)
		}
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case types.ConversationAdoptedMsg:
		m.refreshViewport()
		cmds = append(cmds, m.refreshConversations())
		return m, tea.Batch(cmds...)

	case types.ConversationsLoadedMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.WarnKey, session.ErrorMessage(msg.Err)))
		}
		m.clampSidebarCursor()
		return m, tea.Batch(cmds...)

	case types.ConversationCreatedMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, session.ErrorMessage(msg.Err)))
			return m, tea.Batch(cmds...)
		}
		m.textarea.Reset()
		m.history.Reset()
		m.historyNavigating = false
		m.focus = focusInput
		m.syncSidebarCursor()
		m.adjustTextareaHeight()
		m.recalculateLayout()
		cmds = append(cmds, m.textarea.Focus(), m.alert.NewAlertCmd(bubbleup.InfoKey, "Conversation created"))
		return m, tea.Batch(cmds...)

	case types.DeleteDoneMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, session.ErrorMessage(msg.Err)))
			return m, tea.Batch(cmds...)
		}
		m.clampSidebarCursor()
		m.recalculateLayout()
		cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Conversation deleted"))
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	if m.focus == focusInput && !m.viewerMode {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.focus == focusInput {
			switch msg.String() {
			case "pgup", "pgdown", "ctrl+up", "ctrl+down":
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey runs key bindings. It reports false for keys that fall through to
// the focused component.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	loading := m.controller.State().Loading

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit, true

	case "ctrl+n":
		return m.newConversation(), true

	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.textarea.Blur()
			m.syncSidebarCursor()
			return nil, true
		}
		m.focus = focusInput
		return m.textarea.Focus(), true

	case "alt+v":
		messages := m.controller.State().Messages
		if len(messages) == 0 {
			return nil, true
		}
		m.viewerMode = true
		m.viewerModel = viewer.New(messages, m.renderer, m.width, m.height)
		return m.viewerModel.Init(), true
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg), true
	}

	switch msg.String() {
	case "ctrl+j":
		if loading {
			return nil, true
		}
		return m.sendMessage(), true

	case "alt+p":
		if entry, ok := m.history.Previous(m.textarea.Value()); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return nil, true

	case "alt+n":
		if entry, ok := m.history.Next(); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return nil, true
	}

	if m.historyNavigating {
		switch msg.Type {
		case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete, tea.KeyEnter:
			m.history.Reset()
			m.historyNavigating = false
		}
	}
	return nil, false
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	conversations := m.controller.State().Conversations
	switch msg.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(conversations)-1 {
			m.sidebarCursor++
		}
	case "enter":
		if m.sidebarCursor < len(conversations) {
			id := conversations[m.sidebarCursor].ID
			m.focus = focusInput
			return tea.Batch(m.textarea.Focus(), m.selectConversation(id))
		}
	case "n":
		return m.createConversation()
	case "d", "delete":
		if m.sidebarCursor < len(conversations) {
			return m.deleteConversation(conversations[m.sidebarCursor].ID)
		}
	case "esc":
		m.focus = focusInput
		return m.textarea.Focus()
	}
	return nil
}

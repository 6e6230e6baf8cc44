package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/projectforge/forge/cli/chat/types"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/session"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func (m *Model) refreshConversations() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		return types.ConversationsLoadedMsg{Err: controller.RefreshConversations(ctx)}
	}
}

// selectConversation switches the transcript right away and loads the
// history in the background. The sidebar is reloaded on every switch.
func (m *Model) selectConversation(id int64) tea.Cmd {
	op, fetch := m.controller.BeginSelect(id)
	m.refreshViewport()
	if !fetch {
		return nil
	}
	ctx, controller := m.ctx, m.controller
	load := func() tea.Msg {
		return types.SelectDoneMsg{ID: op.ID, Err: controller.CompleteSelect(ctx, op)}
	}
	return tea.Batch(load, m.refreshConversations())
}

// newConversation starts a fresh, unsaved conversation.
func (m *Model) newConversation() tea.Cmd {
	m.controller.Reset()
	m.textarea.Reset()
	m.history.Reset()
	m.historyNavigating = false
	m.focus = focusInput
	m.textarea.Focus()
	m.adjustTextareaHeight()
	m.refreshViewport()
	return textarea.Blink
}

func (m *Model) sendMessage() tea.Cmd {
	input := m.textarea.Value()
	op, err := m.controller.BeginSubmit(input)
	if errors.Is(err, session.ErrEmptyInput) {
		return nil
	}
	if err != nil {
		// Validation errors are already on the session; keep the draft.
		m.recalculateLayout()
		return nil
	}

	if err := m.history.Add(input); err != nil {
		log.Warn("saving input history", "error", err)
	}
	m.historyNavigating = false
	m.textarea.Reset()
	m.adjustTextareaHeight()
	m.recalculateLayout()

	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		return types.SubmitDoneMsg{Err: controller.CompleteSubmit(ctx, op)}
	}
}

// createConversation creates a conversation server-side and opens it.
func (m *Model) createConversation() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		conversation, err := controller.CreateConversation(ctx, coach.DefaultConversationTitle)
		return types.ConversationCreatedMsg{Conversation: conversation, Err: err}
	}
}

func (m *Model) deleteConversation(id int64) tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		return types.DeleteDoneMsg{ID: id, Err: controller.DeleteConversation(ctx, id)}
	}
}

func (m *Model) copyToClipboard(content string) tea.Cmd {
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		log.Warn("initializing clipboard", "error", clipboardErr)
		return m.alert.NewAlertCmd(bubbleup.WarnKey, "Clipboard unavailable")
	}
	clipboard.Write(clipboard.FmtText, []byte(strings.TrimSpace(content)))
	return m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!")
}

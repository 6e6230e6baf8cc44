package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/projectforge/forge/cli/chat/styles"
)

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1
	newHeight := min(max(lineCount, styles.MinTextareaHeight), styles.MaxTextareaHeight)
	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.recalculateLayout()
	}
}

func (m *Model) sidebarWidth() int {
	// Leave the transcript at least half the screen.
	return min(m.config.SidebarWidth, m.width/2)
}

func (m *Model) mainWidth() int {
	return m.width - m.sidebarWidth() - styles.SidebarStyle.GetHorizontalFrameSize()
}

// recalculateLayout adjusts viewport and textarea dimensions based on current state.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	mainWidth := m.mainWidth()
	viewportHeight := m.height - styles.HeaderHeight - styles.StatusHeight -
		m.textarea.Height() - styles.InputBorderHeight
	viewportHeight = max(viewportHeight, styles.MinViewportHeight)
	if err := m.renderer.SetWidth(mainWidth - styles.MessageHorizontalFrameSize()); err != nil {
		log.Warn("resizing renderer", "error", err)
	}

	if !m.ready {
		m.viewport = viewport.New(mainWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = viewportHeight
	}
	m.textarea.SetWidth(mainWidth - styles.TextAreaStyle.GetHorizontalFrameSize())
	m.refreshViewport()
}

// refreshViewport re-renders the transcript. It follows the conversation to
// the bottom whenever messages were added or the conversation changed.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	state := m.controller.State()
	m.viewport.SetContent(m.renderMessages(state.Messages))
	if len(state.Messages) != m.renderedCount || state.ActiveID != m.renderedActive {
		m.viewport.GotoBottom()
	}
	m.renderedCount = len(state.Messages)
	m.renderedActive = state.ActiveID
}

// syncSidebarCursor moves the sidebar cursor onto the active conversation.
func (m *Model) syncSidebarCursor() {
	state := m.controller.State()
	for i, conversation := range state.Conversations {
		if conversation.ID == state.ActiveID {
			m.sidebarCursor = i
			return
		}
	}
	m.clampSidebarCursor()
}

func (m *Model) clampSidebarCursor() {
	n := len(m.controller.State().Conversations)
	m.sidebarCursor = max(min(m.sidebarCursor, n-1), 0)
}

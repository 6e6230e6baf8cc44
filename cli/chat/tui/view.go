package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/projectforge/forge/cli/chat/styles"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.viewerMode && m.viewerModel != nil {
		return m.alert.Render(m.viewerModel.View())
	}

	state := m.controller.State()

	var main strings.Builder
	main.WriteString(m.viewport.View())
	main.WriteString("\n")
	main.WriteString(m.renderStatus(state))
	main.WriteString("\n")
	if m.focus == focusInput {
		main.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
	} else {
		main.WriteString(styles.TextAreaBlurredStyle.Render(m.textarea.View()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(state), main.String())
	return m.alert.Render(m.renderTitle(state) + "\n" + body)
}

func (m *Model) renderTitle(state session.State) string {
	name := "New conversation"
	if state.ActiveID != 0 {
		name = fmt.Sprintf("Conversation %d", state.ActiveID)
		if conversation, ok := state.Conversation(state.ActiveID); ok && conversation.Title != "" {
			name = conversation.Title
		}
	}
	title := fmt.Sprintf(" 🌱 Forge │ %s │ %d messages ", name, len(state.Messages))
	return styles.TitleStyle.Width(m.width).Render(styles.Truncate(title, m.width))
}

func (m *Model) renderStatus(state session.State) string {
	switch {
	case state.Loading:
		return fmt.Sprintf("%s Coach is thinking...", m.spinner.View())
	case state.Err != "":
		return styles.ErrorStyle.Render(styles.Truncate("Error: "+state.Err, m.mainWidth()))
	case m.focus == focusSidebar:
		return styles.HelpStyle.Render("↑/↓ move │ Enter open │ n new │ d delete │ Tab back")
	default:
		return ""
	}
}

func (m *Model) renderSidebar(state session.State) string {
	width := m.sidebarWidth()
	height := m.height - styles.HeaderHeight

	var b strings.Builder
	b.WriteString(styles.SidebarHeaderStyle.Render("Conversations"))
	b.WriteString("\n")
	if len(state.Conversations) == 0 {
		b.WriteString(styles.SidebarItemStyle.Render("none yet"))
	}

	// Keep the cursor in view.
	visible := max(height-1, 1)
	offset := max(m.sidebarCursor-visible+1, 0)
	for i := offset; i < len(state.Conversations) && i < offset+visible; i++ {
		conversation := state.Conversations[i]
		title := conversation.Title
		if title == "" {
			title = fmt.Sprintf("#%d", conversation.ID)
		}
		title = styles.Truncate(title, width-2)

		style := styles.SidebarItemStyle
		if conversation.ID == state.ActiveID {
			style = styles.SidebarActiveStyle
		}
		line := style.Width(width).Render(title)
		if m.focus == focusSidebar && i == m.sidebarCursor {
			line = styles.SidebarCursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := styles.SidebarStyle
	if m.focus == focusSidebar {
		style = styles.SidebarFocusedStyle
	}
	return style.Width(width).Height(height).MaxHeight(height).Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m *Model) renderMessages(messages []session.Message) string {
	if len(messages) == 0 {
		return styles.WelcomeStyle.Render(m.renderer.Render("welcome", transcript.WelcomeText))
	}

	var b strings.Builder
	for i, message := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		rendered := m.renderer.Render(message.ID, transcript.Markdown(message))
		if message.Role == session.RoleCoach {
			b.WriteString(styles.CoachMessageStyle.Render(rendered))
		} else {
			b.WriteString(styles.UserMessageStyle.Render(rendered))
		}
	}
	return b.String()
}

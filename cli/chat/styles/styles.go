package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Textarea
	MinTextareaHeight    = 3
	MaxTextareaHeight    = 12
	DefaultTextareaWidth = 80
	TextAreaPaddingLeft  = 1

	// Viewport
	MinViewportHeight = 1

	// Layout
	InputBorderHeight   = 2
	HeaderHeight        = 1
	StatusHeight        = 1
	MessagePaddingLeft  = 2
	DefaultSidebarWidth = 28

	// Truncation
	TruncateSuffix = "…"
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#22C55E") // Green
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#10B981") // Emerald
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	BorderColor    = lipgloss.Color("#4B5563")
	DividerColor   = lipgloss.Color("#374151")
	SelectedColor  = lipgloss.Color("#14532D") // Dark green
)

// Title bar
var (
	TitleStyle = lipgloss.NewStyle().
		Background(PrimaryColor).
		Foreground(lipgloss.Color("#000000")).
		Bold(true)
)

// Messages.
var (
	messageStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(PrimaryColor).
				MarginLeft(10)

	CoachMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(SecondaryColor).
				MarginRight(4)

	WelcomeStyle = lipgloss.NewStyle().
			Foreground(DimTextColor).
			Padding(1, 2)
)

// Sidebar
var (
	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(BorderColor)

	SidebarFocusedStyle = lipgloss.NewStyle().
				Inherit(SidebarStyle).
				BorderForeground(PrimaryColor)

	SidebarHeaderStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				PaddingLeft(1)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(DimTextColor).
				PaddingLeft(1)

	SidebarActiveStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				PaddingLeft(1)

	SidebarCursorStyle = lipgloss.NewStyle().
				Background(SelectedColor)
)

// Error
var (
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
)

// Input area
var (
	TextAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			PaddingLeft(TextAreaPaddingLeft)

	TextAreaBlurredStyle = lipgloss.NewStyle().
				Inherit(TextAreaStyle).
				BorderForeground(BorderColor)
)

// Spinner
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)
)

// Help text
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)
)

// Divider
var (
	DividerStyle = lipgloss.NewStyle().
		Foreground(DividerColor)
)

// MessageHorizontalFrameSize returns the horizontal frame size of coach messages.
func MessageHorizontalFrameSize() int {
	return CoachMessageStyle.GetHorizontalFrameSize()
}

// Truncate shortens s to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return TruncateSuffix
	}
	return string(runes[:maxLen-1]) + TruncateSuffix
}

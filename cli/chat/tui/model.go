// Package tui is the full-screen chat: a conversation sidebar, the
// transcript and an input box, driven by a session.Controller.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/projectforge/forge/cli/chat/styles"
	"github.com/projectforge/forge/cli/chat/types"
	"github.com/projectforge/forge/cli/chat/viewer"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/history"
	"github.com/projectforge/forge/internal/markdown"
	"github.com/projectforge/forge/internal/session"
)

var log = debug.GetLogger()

type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// Options configure the chat at startup.
type Options struct {
	// ConversationID opens a conversation; 0 starts a new one.
	ConversationID int64
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	// Core dependencies
	ctx        context.Context
	config     configuration.ChatConfig
	controller *session.Controller
	history    *history.History
	opts       Options

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width          int
	height         int
	ready          bool
	quitting       bool
	focus          focus
	sidebarCursor  int
	renderedCount  int
	renderedActive int64

	// Alert notifications.
	alert bubbleup.AlertModel

	// Program reference for sending messages from goroutines
	program   *tea.Program
	programMu sync.Mutex

	historyNavigating bool

	// Sub-views
	viewerMode  bool
	viewerModel *viewer.Model
}

// New creates the chat model. api is normally a *coach.Client.
func New(ctx context.Context, config configuration.ChatConfig, api session.API, h *history.History, opts Options) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Paste a draft or ask the coach... (Ctrl+J to send, Ctrl+N new, Tab sidebar, Alt+V view, Ctrl+C quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	if h == nil {
		if h, err = history.New(""); err != nil {
			return nil, err
		}
	}
	if config.SidebarWidth <= 0 {
		config.SidebarWidth = styles.DefaultSidebarWidth
	}

	m := &Model{
		ctx:            ctx,
		config:         config,
		history:        h,
		opts:           opts,
		textarea:       ta,
		spinner:        sp,
		renderer:       renderer,
		alert:          *bubbleup.NewAlertModel(40, true, 2),
		renderedCount:  -1,
		renderedActive: -1,
	}
	m.controller = session.NewController(api,
		session.WithLogger(log),
		session.WithMinInputLength(config.MinInputLength),
		session.WithAdoptHook(m.onAdopt),
	)
	return m, nil
}

// SetProgram sets the tea.Program reference for async message sending.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	m.program = p
}

// getProgram safely gets the program reference.
func (m *Model) getProgram() *tea.Program {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	return m.program
}

// onAdopt runs on the goroutine completing a submit.
func (m *Model) onAdopt(id int64) {
	if p := m.getProgram(); p != nil {
		p.Send(types.ConversationAdoptedMsg{ID: id})
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
		m.refreshConversations(),
	}
	if m.opts.ConversationID != 0 {
		cmds = append(cmds, m.selectConversation(m.opts.ConversationID))
	}
	return tea.Batch(cmds...)
}

package chat

import (
	"context"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/projectforge/forge/internal/cli"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/history"
	"github.com/projectforge/forge/internal/markdown"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

// runPlain is the line-mode chat. "/new" starts a new conversation and
// "/quit" exits, as do Ctrl+C and Ctrl+D.
func runPlain(ctx context.Context, config *configuration.Config, client *coach.Client, h *history.History, id int64) error {
	renderer, err := markdown.NewRenderer(cli.Width())
	if err != nil {
		return err
	}
	controller := session.NewController(client,
		session.WithLogger(debug.GetLogger()),
		session.WithMinInputLength(config.Chat.MinInputLength),
		session.WithAdoptHook(func(id int64) { cli.Info("Saved as conversation %d", id) }),
	)

	if id != 0 {
		if err := controller.SelectConversation(ctx, id); err != nil {
			return err
		}
		cli.Title("Conversation %d", id)
		for _, message := range controller.State().Messages {
			printMessage(renderer, message)
		}
	} else {
		cli.CoachOutput(renderer.Render("", transcript.WelcomeText))
	}

	promptHistory := readlineHistoryFile(config.Chat.HistoryFile)
	for {
		cli.Separator()
		input, err := cli.PromptUser(promptHistory)
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(input) {
		case "/quit":
			return nil
		case "/new":
			controller.Reset()
			cli.Title("New conversation")
			continue
		}

		before := len(controller.State().Messages)
		if err := controller.Submit(ctx, input); err != nil {
			if !errors.Is(err, session.ErrEmptyInput) {
				cli.ErrorOutput("%s", session.ErrorMessage(err))
			}
			continue
		}
		if err := h.Add(input); err != nil {
			debug.GetLogger().Warn("saving input history", "error", err)
		}
		// The optimistic user message was echoed by readline already.
		for _, message := range controller.State().Messages[before+1:] {
			printMessage(renderer, message)
		}
	}
}

// readlineHistoryFile is where readline keeps its raw line history. The draft
// history file belongs to history.History, which stores one escaped entry per
// line; readline writing there would split multi-line drafts.
func readlineHistoryFile(historyFile string) string {
	if historyFile == "" {
		return ""
	}
	return historyFile + ".readline"
}

func printMessage(renderer *markdown.Renderer, message session.Message) {
	rendered := renderer.Render(message.ID, transcript.Markdown(message))
	if message.Role == session.RoleCoach {
		cli.CoachOutput(rendered)
		return
	}
	cli.UserInput(rendered)
}

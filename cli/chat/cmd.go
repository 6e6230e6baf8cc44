package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/projectforge/forge/cli/chat/tui"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/history"
	"github.com/projectforge/forge/internal/session"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, client *coach.Client) *cobra.Command {
	var opts struct {
		ConversationID int64
		Continue       bool
		Plain          bool
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the writing coach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if opts.Continue && opts.ConversationID == 0 {
				id, err := latestConversation(ctx, client)
				cobra.CheckErr(err)
				opts.ConversationID = id
			}

			h, err := history.New(config.Chat.HistoryFile)
			cobra.CheckErr(err)

			if opts.Plain {
				return runPlain(ctx, config, client, h, opts.ConversationID)
			}

			m, err := tui.New(ctx, config.Chat, client, h, tui.Options{ConversationID: opts.ConversationID})
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithMouseCellMotion(),
			)

			// Set the program reference for async message sending
			m.SetProgram(p)

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.ConversationID, "id", 0, "open the conversation with this id")
	cmd.Flags().BoolVarP(&opts.Continue, "continue", "c", false, "continue the most recently updated conversation")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "line mode instead of the full-screen interface")
	return cmd
}

// latestConversation returns the most recently updated conversation's id.
func latestConversation(ctx context.Context, api session.API) (int64, error) {
	conversations, err := api.ListConversations(ctx)
	if err != nil {
		return 0, err
	}
	if len(conversations) == 0 {
		return 0, fmt.Errorf("no conversation to continue")
	}
	latest := conversations[0]
	for _, conversation := range conversations[1:] {
		if conversation.UpdatedAt.After(latest.UpdatedAt.Time) {
			latest = conversation
		}
	}
	return latest.ID, nil
}

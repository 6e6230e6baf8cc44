package conversation

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/cli"
	"github.com/projectforge/forge/internal/coach"
)

func newListCmd(client *coach.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			conversations, err := client.ListConversations(cmd.Context())
			cobra.CheckErr(err)

			cli.Title("FORGE CONVERSATIONS")
			if len(conversations) == 0 {
				cli.Info("No conversations yet. Start one with forge chat.")
				return
			}
			for _, conversation := range conversations {
				updated := "-"
				if !conversation.UpdatedAt.IsZero() {
					updated = conversation.UpdatedAt.Local().Format("2006-01-02 15:04")
				}
				cli.CoachOutput(fmt.Sprintf("%6d  %s  %s", conversation.ID, updated, conversation.Title))
			}
		},
	}
}

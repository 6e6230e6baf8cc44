package conversation

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/session"
)

func newNewCmd(client *coach.Client) *cobra.Command {
	var opts struct {
		Title string
	}
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := session.NewController(client, session.WithLogger(debug.GetLogger()))
			conversation, err := controller.CreateConversation(cmd.Context(), opts.Title)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), conversation.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Title, "title", "t", coach.DefaultConversationTitle, "conversation title")
	return cmd
}

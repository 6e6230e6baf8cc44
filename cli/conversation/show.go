package conversation

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/cli"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/markdown"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

func newShowCmd(client *coach.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			cobra.CheckErr(err)
			conversation, err := client.GetConversation(cmd.Context(), id)
			cobra.CheckErr(err)
			renderer, err := markdown.NewRenderer(cli.Width())
			cobra.CheckErr(err)

			title := conversation.Title
			if title == "" {
				title = "Conversation " + args[0]
			}
			cli.Title("%s", title)
			for _, message := range session.HistoryMessages(conversation) {
				cli.Separator()
				rendered := renderer.Render("", transcript.Markdown(message))
				if message.Role == session.RoleCoach {
					cli.CoachOutput(rendered)
				} else {
					cli.UserInput(rendered)
				}
			}
		},
	}
}

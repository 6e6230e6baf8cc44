package conversation

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/cli"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/file"
	"github.com/projectforge/forge/internal/markdown"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

func newSubmitCmd(config *configuration.Config, client *coach.Client) *cobra.Command {
	var opts struct {
		Input          *file.InputOpts
		ConversationID int64
		Raw            bool
	}
	cmd := &cobra.Command{
		Use:   "submit [TEXT...]",
		Short: "Send one draft to the coach and print the reply",
		Long:  "Send one draft to the coach and print the reply. The draft is read from --file, from the arguments, or from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := file.ReadDraft(opts.Input, args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			controller := session.NewController(client,
				session.WithLogger(debug.GetLogger()),
				session.WithMinInputLength(config.Chat.MinInputLength),
			)
			if err := controller.SelectConversation(ctx, opts.ConversationID); err != nil {
				return err
			}
			if err := controller.Submit(ctx, draft); err != nil {
				return err
			}

			state := controller.State()
			reply := state.Messages[len(state.Messages)-1]
			out := cmd.OutOrStdout()
			if opts.Raw {
				fmt.Fprintln(out, transcript.Markdown(reply))
			} else {
				renderer, err := markdown.NewRenderer(cli.Width())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderer.Render("", transcript.Markdown(reply)))
			}
			if state.ActiveID != 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "conversation %d\n", state.ActiveID)
			}
			return nil
		},
	}
	opts.Input = file.GetOpts(cmd)
	cmd.Flags().Int64Var(&opts.ConversationID, "id", 0, "continue this conversation")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print Markdown instead of rendering it")
	return cmd
}

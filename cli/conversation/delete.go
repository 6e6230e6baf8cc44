package conversation

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/cli"
	"github.com/projectforge/forge/internal/coach"
)

func newDeleteCmd(client *coach.Client) *cobra.Command {
	var opts struct {
		Yes bool
	}
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete conversations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if !opts.Yes {
				confirmed, err := cli.QueryUser(fmt.Sprintf("Delete %d conversation(s)?", len(ids)))
				if err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			var failed int
			for _, id := range ids {
				if err := client.DeleteConversation(cmd.Context(), id); err != nil {
					cli.ErrorOutput("conversation %d: %v", id, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d deletions failed", failed, len(ids))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

package conversation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/file"
	"github.com/projectforge/forge/internal/session"
	"github.com/projectforge/forge/internal/transcript"
)

type exported struct {
	conversation coach.Conversation
	document     string
}

func newExportCmd(config *configuration.Config, client *coach.Client) *cobra.Command {
	var opts struct {
		Directory   string
		Concurrency int
	}
	cmd := &cobra.Command{
		Use:   "export [ID...]",
		Short: "Export conversations as Markdown",
		Long:  "Export conversations as Markdown, one file per conversation. Without ids every conversation is exported; without a directory the documents go to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				conversations, err := client.ListConversations(ctx)
				if err != nil {
					return err
				}
				for _, conversation := range conversations {
					ids = append(ids, conversation.ID)
				}
			}

			documents, err := exportConversations(ctx, client, ids, opts.Concurrency)
			if err != nil {
				return err
			}

			if opts.Directory == "" {
				for i, document := range documents {
					if i > 0 {
						fmt.Fprintln(cmd.OutOrStdout())
					}
					fmt.Fprint(cmd.OutOrStdout(), document.document)
				}
				return nil
			}
			directory, err := file.ExpandPath(opts.Directory)
			if err != nil {
				return err
			}
			for _, document := range documents {
				path := filepath.Join(directory, transcript.Filename(document.conversation))
				if err := file.Write(path, []byte(document.document)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Directory, "dir", "d", config.Chat.ExportDirectory, "write one file per conversation into this directory")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "conversations fetched at once")
	return cmd
}

// exportConversations fetches and renders conversations concurrently. The
// result keeps the order of ids; the first failure cancels the rest.
func exportConversations(ctx context.Context, api session.API, ids []int64, concurrency int) ([]exported, error) {
	documents := make([]exported, len(ids))
	p := pool.New().WithMaxGoroutines(max(concurrency, 1)).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, id := range ids {
		p.Go(func(ctx context.Context) error {
			conversation, err := api.GetConversation(ctx, id)
			if err != nil {
				return errors.Wrapf(err, "fetching conversation %d", id)
			}
			document, err := transcript.Document(conversation.Conversation, session.HistoryMessages(conversation))
			if err != nil {
				return err
			}
			documents[i] = exported{conversation: conversation.Conversation, document: strings.TrimRight(document, "\n") + "\n"}
			debug.GetLogger().Debug("exported conversation", "conversation_id", id)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return documents, nil
}

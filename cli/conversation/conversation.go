// Package conversation holds the non-interactive commands that manage
// conversations on the coach backend.
package conversation

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/i64set"
	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
)

// NewCmds returns every conversation command.
func NewCmds(config *configuration.Config, client *coach.Client) []*cobra.Command {
	return []*cobra.Command{
		newListCmd(client),
		newShowCmd(client),
		newNewCmd(client),
		newDeleteCmd(client),
		newExportCmd(config, client),
		newSubmitCmd(config, client),
		newStatusCmd(client),
	}
}

// parseIDs parses conversation ids, dropping repeats and keeping the order
// they were first given in.
func parseIDs(args []string) ([]int64, error) {
	seen := i64set.New()
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.Errorf("invalid conversation id %q", arg)
		}
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		ids = append(ids, id)
	}
	return ids, nil
}

package conversation

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/projectforge/forge/internal/coach"
)

func newStatusCmd(client *coach.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the coach backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", client.BaseURL(), health.Status)

			agents := make([]string, 0, len(health.Agents))
			for agent := range health.Agents {
				agents = append(agents, agent)
			}
			sort.Strings(agents)
			for _, agent := range agents {
				state := "not ready"
				if health.Agents[agent] {
					state = "ready"
				}
				fmt.Fprintf(out, "  %-10s %s\n", agent, state)
			}
			if !health.Ready() {
				return errors.New("coach is not ready")
			}
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		Short:   "Display a project",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			p, ok, err := a.store.Get(id)
			if err != nil {
				return fmt.Errorf("get project: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: %q", types.ErrProjectNotFound, id)
			}
			p.ID = id

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), viewOf(p))
			}
			printProjectDetails(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

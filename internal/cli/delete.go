package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a project",
		Long: `Delete removes a project by its ID. The project directory itself is not
touched. Deleting an unknown ID succeeds without changing anything.

Example:
  relmap delete 0190f3a2-6c1e-7b9a-9d41-3f0e2b8c5a17`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if err := a.store.Delete(id); err != nil {
				return fmt.Errorf("delete project: %w", err)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"deleted": id,
					"status":  "success",
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project: %s\n", id)
			return nil
		},
	}
}

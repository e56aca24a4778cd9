package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

func newUpdateCmd(a *app) *cobra.Command {
	var name, dir string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or move a project",
		Long: `Update changes the name and/or directory of a project. The ID and the
date the project was added never change.

Example:
  relmap update 0190f3a2-6c1e-7b9a-9d41-3f0e2b8c5a17 --name "Timeline v2"
  relmap update 0190f3a2-6c1e-7b9a-9d41-3f0e2b8c5a17 --dir /srv/timeline`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var u types.ProjectUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("dir") {
				u.Directory = &dir
			}
			if u.Empty() {
				return &userError{fmt.Errorf("update: at least one of --name or --dir must be provided")}
			}

			p, err := a.store.Update(id, u)
			if err != nil {
				return fmt.Errorf("update project: %w", err)
			}
			p.ID = id

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), viewOf(p))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new project name")
	cmd.Flags().StringVar(&dir, "dir", "", "new project directory")
	return cmd
}

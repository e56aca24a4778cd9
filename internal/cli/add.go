package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var name, dir string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a project",
		Long: `Add records a new project with a name and a directory.

Relative directories are resolved against the current working directory.

Example:
  relmap add --name "Timeline" --dir ~/work/timeline
  relmap add --name "Relation map" --dir . --json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.store.Add(name, dir)
			if err != nil {
				return fmt.Errorf("add project: %w", err)
			}

			out := cmd.OutOrStdout()
			p, ok, err := a.store.Get(id)
			if err != nil || !ok {
				// Created but couldn't fetch; print ID only
				if a.flags.jsonMode {
					return writeJSON(out, map[string]string{"id": id})
				}
				fmt.Fprintf(out, "Added project: %s\n", id)
				return nil
			}
			p.ID = id

			if a.flags.jsonMode {
				return writeJSON(out, viewOf(p))
			}
			fmt.Fprintf(out, "Added project %q: %s\n", p.Name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (required)")
	cmd.Flags().StringVar(&dir, "dir", "", "project directory (required)")
	return cmd
}

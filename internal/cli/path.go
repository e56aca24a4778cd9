package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the backing file location",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"config_dir": a.configDir,
					"store":      a.store.Path(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.Path())
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relmap/pkg/relmap"
)

const modulePath = "github.com/mesh-intelligence/relmap"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relmap version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "relmap v%s\nmodule: %s\n", relmap.Version, modulePath)
			return nil
		},
	}
}

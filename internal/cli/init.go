package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize relmap configuration and storage",
		Long: "Create config.yaml in the configuration directory if it is missing, then\n" +
			"create the backing JSON file holding an empty project list.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	// Only an explicit --store is pinned in config.yaml; otherwise the
	// platform default keeps applying.
	var pinned string
	if a.flags.storePath != "" {
		pinned = a.store.Path()
	}
	wrote, err := writeConfigIfMissing(a.configDir, pinned)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if err := a.store.Bootstrap(); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, map[string]any{
			"config_dir":     a.configDir,
			"config_written": wrote,
			"store":          a.store.Path(),
		})
	}
	if wrote {
		fmt.Fprintf(out, "Wrote configuration to %s\n", a.configDir)
	}
	fmt.Fprintf(out, "Project store ready: %s\n", a.store.Path())
	return nil
}

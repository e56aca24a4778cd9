// Package cli implements the relmap command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/relmap/internal/logging"
	"github.com/mesh-intelligence/relmap/internal/paths"
	"github.com/mesh-intelligence/relmap/pkg/relmap"
	"github.com/mesh-intelligence/relmap/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	storePath string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by one invocation of the root command.
type app struct {
	flags     rootFlags
	configDir string
	settings  settings
	log       *zap.Logger
	store     types.Store
}

// userError marks failures caused by the caller's input.
type userError struct {
	err error
}

func (e *userError) Error() string { return e.err.Error() }
func (e *userError) Unwrap() error { return e.err }

// NewRootCmd creates the top-level "relmap" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "relmap",
		Short: "Keep track of project directories",
		Long: "relmap records projects (a name, a directory and the date it was added)\n" +
			"in a single JSON file and lets you add, inspect, update and remove them.",
		Version: relmap.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &userError{err}
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.storePath, "store", "", "backing JSON file (default: <data dir>/json/project_directories.json)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newPathCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "relmap:", err)
		os.Exit(exitCode(err))
	}
}

// setup loads configuration, builds the logger and opens the store.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if skipsSetup(cmd) {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	s, err := loadSettings(configDir)
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		s.LogLevel = a.flags.logLevel
	}
	a.settings = s

	log, err := logging.New(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return &userError{err}
	}
	a.log = log

	storePath, err := paths.ResolveStorePath(a.flags.storePath, s.StorePath)
	if err != nil {
		return fmt.Errorf("resolve store path: %w", err)
	}

	store, err := relmap.Open(types.Config{
		Path:            storePath,
		CreateIfMissing: s.CreateIfMissing,
		Indent:          s.Indent,
	}, relmap.WithLogger(log))
	if err != nil {
		if errors.Is(err, types.ErrIndentInvalid) || errors.Is(err, types.ErrPathEmpty) {
			return &userError{err}
		}
		return fmt.Errorf("open store: %w", err)
	}
	a.store = store
	a.log.Debug("store opened", zap.String("config_dir", configDir), zap.String("path", store.Path()))
	return nil
}

// skipsSetup reports whether cmd runs without configuration or a store:
// version, help, and cobra's shell completion commands.
func skipsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// exactArgs is cobra.ExactArgs reporting a user error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &userError{err}
		}
		return nil
	}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue *userError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrProjectNotFound),
		errors.Is(err, types.ErrInvalidFilter):
		return exitUserError
	default:
		return exitSysError
	}
}

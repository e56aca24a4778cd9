package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relmap/internal/index"
	"github.com/mesh-intelligence/relmap/pkg/types"
)

// listFlags holds the filter flags of the list command.
type listFlags struct {
	name      string
	dirPrefix string
	since     string
	until     string
	sort      string
	desc      bool
	limit     int
	offset    int
}

func newListCmd(a *app) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Long: `List shows every registered project, oldest first.

Filters narrow the result; --since and --until accept a date (2006-01-02)
or an ISO-8601 timestamp.

Example:
  relmap list
  relmap list --name timeline --sort name
  relmap list --dir-prefix /srv --since 2024-01-01 --limit 10
  relmap list --json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := runList(cmd, a, lf)
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				views := make([]projectView, len(projects))
				for i, p := range projects {
					views[i] = viewOf(p)
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			printProjectTable(cmd.OutOrStdout(), projects)
			return nil
		},
	}

	cmd.Flags().StringVar(&lf.name, "name", "", "only projects whose name contains this text (case-insensitive)")
	cmd.Flags().StringVar(&lf.dirPrefix, "dir-prefix", "", "only projects whose directory starts with this prefix")
	cmd.Flags().StringVar(&lf.since, "since", "", "only projects added at or after this time")
	cmd.Flags().StringVar(&lf.until, "until", "", "only projects added before this time")
	cmd.Flags().StringVar(&lf.sort, "sort", "", "sort key: added, name, directory (default: added)")
	cmd.Flags().BoolVar(&lf.desc, "desc", false, "reverse the sort order")
	cmd.Flags().IntVar(&lf.limit, "limit", 0, "maximum number of results (0 = no limit)")
	cmd.Flags().IntVar(&lf.offset, "offset", 0, "number of results to skip")
	return cmd
}

// runList answers from the store directly when no filter flag is set and
// goes through the query index otherwise.
func runList(cmd *cobra.Command, a *app, lf listFlags) ([]types.Project, error) {
	if !anyChanged(cmd, listFilterFlags...) {
		projects, err := a.store.List()
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return projects, nil
	}

	filter, err := lf.filter()
	if err != nil {
		return nil, err
	}

	snapshot, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	ix, err := index.Open(cmd.Context(), snapshot)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	defer ix.Close()

	projects, err := ix.Search(cmd.Context(), filter)
	if err != nil {
		return nil, fmt.Errorf("search projects: %w", err)
	}
	return projects, nil
}

// listFilterFlags are the flags that route list through the index.
var listFilterFlags = []string{"name", "dir-prefix", "since", "until", "sort", "desc", "limit", "offset"}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (lf listFlags) filter() (types.Filter, error) {
	f := types.Filter{
		NameContains:    lf.name,
		DirectoryPrefix: lf.dirPrefix,
		OrderBy:         lf.sort,
		Descending:      lf.desc,
		Limit:           lf.limit,
		Offset:          lf.offset,
	}
	if lf.since != "" {
		t, err := types.ParseTimestamp(lf.since)
		if err != nil {
			return f, fmt.Errorf("%w: --since %q", types.ErrInvalidFilter, lf.since)
		}
		f.AddedAfter = t
	}
	if lf.until != "" {
		t, err := types.ParseTimestamp(lf.until)
		if err != nil {
			return f, fmt.Errorf("%w: --until %q", types.ErrInvalidFilter, lf.until)
		}
		f.AddedBefore = t
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("%w: --sort %q, --limit %d, --offset %d", err, lf.sort, lf.limit, lf.offset)
	}
	return f, nil
}

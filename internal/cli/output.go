// Shared output helpers for relmap CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

// projectView is the JSON shape of a project in CLI output. Unlike the
// backing file it carries the ID inline.
type projectView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Directory string `json:"directory"`
	AddedDate string `json:"added_date"`
}

func viewOf(p types.Project) projectView {
	return projectView{ID: p.ID, Name: p.Name, Directory: p.Directory, AddedDate: p.AddedDate}
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printProjectDetails prints project fields in human-readable format.
func printProjectDetails(w io.Writer, p types.Project) {
	fmt.Fprintf(w, "ID:        %s\n", p.ID)
	fmt.Fprintf(w, "Name:      %s\n", p.Name)
	fmt.Fprintf(w, "Directory: %s\n", p.Directory)
	fmt.Fprintf(w, "Added:     %s\n", formatAdded(p, "2006-01-02 15:04:05"))
}

// formatAdded renders AddedDate with layout, or verbatim if it does not parse.
func formatAdded(p types.Project, layout string) string {
	t, err := p.AddedTime()
	if err != nil {
		return p.AddedDate
	}
	return t.Format(layout)
}

// printProjectTable prints projects in a human-readable table format.
func printProjectTable(w io.Writer, projects []types.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tNAME\tDIRECTORY\tADDED")
	fmt.Fprintln(tw, "--\t----\t---------\t-----")
	for _, p := range projects {
		// Truncate name if too long
		name := p.Name
		if len([]rune(name)) > 40 {
			name = string([]rune(name)[:37]) + "..."
		}
		// Full IDs: UUID v7 prefixes are timestamps and collide.
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, name, p.Directory, formatAdded(p, "2006-01-02"))
	}
	tw.Flush()

	// Print output, trimming trailing whitespace from each line
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	fmt.Fprintf(w, "Total: %d project(s)\n", len(projects))
}

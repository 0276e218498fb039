package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projboard/projboard/internal/view"
	"github.com/projboard/projboard/pkg/types"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects on the board",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *types.ProjectStatus
		if listStatus != "" {
			s, err := types.ParseProjectStatus(listStatus)
			if err != nil {
				return err
			}
			status = &s
		}

		projects, err := newClient().Projects(cmd.Context(), status)
		if err != nil {
			return err
		}
		return printProjects(cmd.OutOrStdout(), projects)
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only list projects with this status (active|finished)")
}

func printProjects(w io.Writer, projects []types.Project) error {
	if len(projects) == 0 {
		_, err := fmt.Fprintln(w, "No projects.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tPEOPLE")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Status, p.Title, view.PersonsLabel(p.People))
	}
	return tw.Flush()
}

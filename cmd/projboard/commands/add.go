package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projboard/projboard/internal/view"
)

var (
	addTitle       string
	addDescription string
	addPeople      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project to the active list",
	Long: `Add a project to the board, exactly as if it were submitted through the form.

The title and description are required, the description needs at least 5
characters and people must be a whole number from 1 to 5.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().AddProject(cmd.Context(), view.FormValues{
			Title:       addTitle,
			Description: addDescription,
			People:      addPeople,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", p.ID, p.Title)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Project title")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Project description")
	addCmd.Flags().StringVarP(&addPeople, "people", "n", "", "Number of people assigned (1-5)")
}

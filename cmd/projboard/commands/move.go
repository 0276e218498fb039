package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projboard/projboard/pkg/types"
)

var moveCmd = &cobra.Command{
	Use:   "move <project-id> <active|finished>",
	Short: "Move a project to another list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := types.ParseProjectStatus(args[1])
		if err != nil {
			return err
		}

		moved, err := newClient().MoveProject(cmd.Context(), args[0], status)
		if err != nil {
			return err
		}

		if moved {
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[0], status)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", args[0])
		}
		return nil
	},
}

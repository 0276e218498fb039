package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projboard/projboard/internal/client"
	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/pkg/types"
)

var watchJSON bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream board changes",
	Long: `Follow the board's event stream and print every change.
The stream reconnects automatically until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return newClient().Watch(cmd.Context(), func(e client.Event) error {
			if watchJSON {
				data, err := json.Marshal(e)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			_, err := fmt.Fprintln(out, describeEvent(e))
			return err
		})
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "Print raw event JSON, one per line")
}

// describeEvent returns a one-line summary of an event.
func describeEvent(e client.Event) string {
	switch event.EventType(e.Type) {
	case event.ServerConnected:
		var data struct {
			Version uint64 `json:"version"`
		}
		_ = json.Unmarshal(e.Properties, &data)
		return fmt.Sprintf("connected at version %d", data.Version)

	case event.ProjectsUpdated:
		var data event.ProjectsUpdatedData
		if err := json.Unmarshal(e.Properties, &data); err != nil {
			return e.Type
		}
		active, finished := 0, 0
		for _, p := range data.Projects {
			if p.Status == types.StatusFinished {
				finished++
			} else {
				active++
			}
		}
		return fmt.Sprintf("v%d: %d active, %d finished", data.Version, active, finished)

	case event.ListRendered:
		var data event.ListRenderedData
		if err := json.Unmarshal(e.Properties, &data); err != nil {
			return e.Type
		}
		return fmt.Sprintf("v%d: %s rendered with %d projects", data.Version, data.ListID, data.Count)

	default:
		return e.Type
	}
}

package commands

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/spf13/cobra"

	"github.com/projboard/projboard/pkg/types"
)

var boardCmd = &cobra.Command{
	Use:   "board [active|finished]...",
	Short: "Print the board lists as markdown",
	Long: `Fetch the rendered board lists from the server and print them as markdown.
With no arguments both lists are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses := types.Statuses
		if len(args) > 0 {
			statuses = nil
			for _, arg := range args {
				s, err := types.ParseProjectStatus(arg)
				if err != nil {
					return err
				}
				statuses = append(statuses, s)
			}
		}

		c := newClient()
		var sections []string
		for _, status := range statuses {
			html, err := c.ListHTML(cmd.Context(), status)
			if err != nil {
				return err
			}
			markdown, err := convertHTMLToMarkdown(html)
			if err != nil {
				return fmt.Errorf("render %s list: %w", status, err)
			}
			sections = append(sections, markdown)
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(sections, "\n\n"))
		return nil
	},
}

// convertHTMLToMarkdown converts a rendered list to Markdown.
func convertHTMLToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})

	converter.Remove("script", "style", "template")

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

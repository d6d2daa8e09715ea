package cmd

import (
	"fmt"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/text"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	listFlags = struct {
		Filter string
	}{}

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print every note, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, _, done, err := cliWorkbench(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var found []*cards.Card
			if listFlags.Filter != "" {
				found = wb.Registry().Filter(listFlags.Filter)
			} else {
				found = wb.Registry().Cards()
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no notes")
				return nil
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("ID", "TITLE", "UPDATED", "PREVIEW")
			for _, c := range found {
				updated := "-"
				if touched := c.Touched(); !touched.IsZero() {
					updated = text.RelativeTime(touched)
				}
				t.Row(c.ID().String(), c.Title(), updated, text.TruncateWithTail(c.Description(), 40, text.Ellipsis))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
)

func init() {
	listCmd.Flags().StringVarP(&listFlags.Filter, "filter", "f", "", "only show notes matching this text")
	root.AddCommand(listCmd)
}

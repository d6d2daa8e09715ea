package cmd

import (
	"fmt"

	"github.com/byxorna/stickies/pkg/app"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm ID...",
	Aliases: []string{"delete"},
	Short:   "Delete notes by id",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, done, err := cliWorkbench(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		for _, arg := range args {
			id := v1.ID(arg)
			if _, ok := wb.Registry().Get(id); !ok {
				return fmt.Errorf("%w: %s", app.ErrNoSuchCard, id)
			}
			if err := wb.Client().Delete(cmd.Context(), id); err != nil {
				return err
			}
			wb.Registry().Remove(id)
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
		}
		return nil
	},
}

func init() {
	root.AddCommand(rmCmd)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [content]",
	Short: "Create a note, optionally with content (\"-\" reads stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, done, err := cliWorkbench(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		var content string
		if len(args) == 1 {
			content = args[0]
			if content == "-" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("unable to read stdin: %w", err)
				}
				content = strings.TrimRight(string(b), "\n")
			}
		}

		card, err := wb.NewNote(cmd.Context())
		if err != nil {
			return err
		}
		if content != "" {
			wb.Session().Edit(content)
		}
		// closing writes the content, if any
		if err := wb.Session().RequestClose(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), card.ID())
		return nil
	},
}

func init() {
	root.AddCommand(newCmd)
}

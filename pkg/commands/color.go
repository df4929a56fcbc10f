package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/runner/color"
)

func addColor(topLevel *cobra.Command) {
	oo := &options.OwnerOptions{}

	cmd := &cobra.Command{
		Use:   "color [id] [yellow|pink|green|blue|#hex]",
		Short: "Choose the color of a note on this device",
		Long: wrap80("Colors are stored locally under the fridge path and never " +
			"written to the ledger. Run `fridge key` to see the palette."),
		Example: `
fridge color 0x5f... pink
fridge color 0x5f... "#2196f3"
`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return noteCompletions(oo.Owner), cobra.ShellCompDirectiveNoFileComp
			case 1:
				names := make([]string, 0, len(note.Palette))
				for _, c := range note.Palette {
					names = append(names, c.Name())
				}
				return names, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return output.HandleError(err)
			}
			c := color.Color{
				Service: svc,
				ID:      args[0],
				Color:   args[1],
				Out:     cmd.OutOrStdout(),
			}
			err = c.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOwnerArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}

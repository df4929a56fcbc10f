package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	oo := &options.OwnerOptions{}

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Pin a new note",
		Example: `
fridge add buy milk
fridge add "call mom on sunday"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return output.HandleError(err)
			}
			a := add.Add{
				Service: svc,
				Owner:   oo.Owner,
				Message: args,
				Out:     cmd.OutOrStdout(),
			}
			err = a.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOwnerArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}

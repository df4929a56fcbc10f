package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	oo := &options.OwnerOptions{}

	cmd := &cobra.Command{
		Use:   "edit [id] [text]",
		Short: "Replace the text of a note",
		Example: `
fridge edit 0x5f... buy oat milk
`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return noteCompletions(oo.Owner), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return output.HandleError(err)
			}
			e := edit.Edit{
				Service: svc,
				Owner:   oo.Owner,
				ID:      args[0],
				Message: args[1:],
				Out:     cmd.OutOrStdout(),
			}
			err = e.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOwnerArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}

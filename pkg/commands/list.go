package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OwnerOptions{}
	do := &options.DisplayOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the notes pinned by an address",
		Example: `
fridge list
fridge ls --owner 0x2a... --show-id
fridge list --json
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return output.HandleError(err)
			}
			l := list.List{
				Service: svc,
				Owner:   oo.Owner,
				ShowID:  io.ShowID,
				JSON:    output.JSON,
				Width:   do.Width,
				Out:     cmd.OutOrStdout(),
			}
			err = l.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOwnerArgs(cmd, oo)
	options.AddDisplayArgs(cmd, do)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	oo := &options.OwnerOptions{}
	mo := &options.MetricsOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the note board",
		Example: `
fridge ui
FRIDGE_LOG_FILE=/tmp/fridge.log fridge ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			i := ui.UI{Service: svc, Owner: oo.Owner, MetricsAddr: mo.Addr}
			return i.Do(context.Background())
		},
	}

	options.AddOwnerArgs(cmd, oo)
	options.AddMetricsArgs(cmd, mo)

	topLevel.AddCommand(cmd)
}

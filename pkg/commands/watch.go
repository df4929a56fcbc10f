package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OwnerOptions{}
	do := &options.DisplayOptions{}
	mo := &options.MetricsOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the note list on screen, refreshed from the ledger",
		Example: `
fridge watch
fridge watch --metrics-addr :9090
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			w := watch.Watch{
				Service:     svc,
				Owner:       oo.Owner,
				ShowID:      io.ShowID,
				Width:       do.Width,
				MetricsAddr: mo.Addr,
				Out:         cmd.OutOrStdout(),
			}
			return w.Do(ctx)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOwnerArgs(cmd, oo)
	options.AddDisplayArgs(cmd, do)
	options.AddMetricsArgs(cmd, mo)

	topLevel.AddCommand(cmd)
}

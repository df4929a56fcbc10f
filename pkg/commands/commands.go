package commands

import (
	"io"
	"log"
	"os"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/config"
	"tableflip.dev/fridge/pkg/metrics"
)

var (
	output  = &options.OutputOptions{}
	verbose bool

	// newService is swapped in tests.
	newService = defaultService
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "fridge",
		Short: wrap80("Sticky notes pinned to the Sui ledger, with local colors."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log background activity to stderr.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addKey(topLevel)
	addList(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addColor(topLevel)
	addWatch(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

func wrap80(s string) string {
	return wordwrap.String(s, 80)
}

func logger() *log.Logger {
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	return log.New(w, "fridge: ", log.LstdFlags)
}

func defaultService() (*app.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{
		Logger:  logger(),
		Metrics: metrics.New(),
	})
}

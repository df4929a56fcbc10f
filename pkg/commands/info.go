package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/commands/options"
	"tableflip.dev/fridge/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	fo := &options.FormatOptions{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where colors are stored.",
		Example: `
fridge info
fridge info -o yaml
`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return fo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return err
			}
			s := info.Info{
				Service: svc,
				Output:  fo.Format,
				Out:     cmd.OutOrStdout(),
			}
			return s.Do(context.Background())
		},
	}

	options.AddFormatArg(cmd, fo)

	topLevel.AddCommand(cmd)
}

package options

import (
	"github.com/spf13/cobra"
)

// DisplayOptions
type DisplayOptions struct {
	Width int
}

func AddDisplayArgs(cmd *cobra.Command, o *DisplayOptions) {
	cmd.Flags().IntVarP(&o.Width, "width", "w", 60,
		"Wrap note text at this many columns.")
}

// MetricsOptions
type MetricsOptions struct {
	Addr string
}

func AddMetricsArgs(cmd *cobra.Command, o *MetricsOptions) {
	cmd.Flags().StringVar(&o.Addr, "metrics-addr", "",
		`Serve Prometheus metrics on this address, example: --metrics-addr=":9090".`)
}

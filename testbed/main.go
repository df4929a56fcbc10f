package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/config"
	"tableflip.dev/fridge/pkg/metrics"
	"tableflip.dev/fridge/pkg/runner/ui"
	"tableflip.dev/fridge/pkg/store"
)

type options struct {
	hold      int
	every     time.Duration
	latency   time.Duration
	failEvery int
	interval  time.Duration
	metrics   string
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "testbed",
		Short: "Run the note board against an in-memory ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().IntVar(&opts.hold, "hold", 0, "number of sample notes to hold back and pin one at a time")
	rootCmd.PersistentFlags().DurationVar(&opts.every, "every", 2*time.Second, "delay between held-back notes")
	rootCmd.PersistentFlags().DurationVar(&opts.latency, "latency", 300*time.Millisecond, "simulated fetch and execute latency")
	rootCmd.PersistentFlags().IntVar(&opts.failEvery, "fail-every", 0, "fail every Nth fetch to exercise the error banner")
	rootCmd.PersistentFlags().DurationVar(&opts.interval, "interval", config.DefaultInterval, "polling interval")
	rootCmd.PersistentFlags().StringVar(&opts.metrics, "metrics-addr", "", "serve Prometheus metrics on this address")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	notes, held := applyHoldback(sampleNotes(), opts.hold)
	l := newMemoryLedger(sampleOwner, notes, opts.latency, opts.failEvery)

	overlay := store.NewMemory()
	for id, c := range sampleColors() {
		_ = overlay.Set(id, c)
	}

	cfg := &config.Config{
		Package:  samplePackage,
		RPC:      config.DefaultRPC,
		Chain:    config.DefaultChain,
		Path:     os.TempDir(),
		Interval: opts.interval,
		Sui:      "sui",
	}
	svc, err := app.New(cfg, app.Options{
		Wallet:  l,
		Fetcher: l,
		Overlay: overlay,
		Metrics: metrics.New(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go feed(ctx, l, held, opts.every)

	board := ui.UI{Service: svc, MetricsAddr: opts.metrics}
	return board.Do(ctx)
}

package ui

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/fridge/pkg/app"
	teaui "tableflip.dev/fridge/pkg/tui/app"
)

// UI runs the interactive board alongside the background cache.
type UI struct {
	Service     *app.Service
	Owner       string
	MetricsAddr string
}

func (d *UI) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not start ui, no service")
	}

	// A missing identity is not fatal: the board starts idle and lets the
	// user enter an owner.
	if owner, err := d.Service.ResolveIdentity(ctx, d.Owner); err == nil {
		d.Service.SetIdentity(owner)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Service.Run(ctx)
	})
	if d.MetricsAddr != "" {
		g.Go(func() error {
			return d.Service.Metrics.Serve(ctx, d.MetricsAddr)
		})
	}
	g.Go(func() error {
		defer cancel()
		return teaui.Run(ctx, d.Service)
	})
	return g.Wait()
}

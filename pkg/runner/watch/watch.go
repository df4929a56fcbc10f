package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/printers"
	"tableflip.dev/fridge/pkg/reconcile"
)

// Watch re-renders the note list every time the cache publishes.
type Watch struct {
	Service     *app.Service
	Owner       string
	ShowID      bool
	Width       int
	MetricsAddr string
	Out         io.Writer

	// Clear forces screen clearing between frames; by default it is enabled
	// only when stdout is a terminal.
	Clear *bool
}

func (w *Watch) Do(ctx context.Context) error {
	if w.Service == nil {
		return errors.New("can not watch, no service")
	}
	out := w.Out
	if out == nil {
		out = color.Output
	}
	wipe := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if w.Clear != nil {
		wipe = *w.Clear
	}

	owner, err := w.Service.ResolveIdentity(ctx, w.Owner)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Service.Run(ctx)
	})
	if w.MetricsAddr != "" {
		g.Go(func() error {
			return w.Service.Metrics.Serve(ctx, w.MetricsAddr)
		})
	}
	g.Go(func() error {
		w.Service.SetIdentity(owner)
		updates := w.Service.Cache.Updates()
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-updates:
				w.render(out, snap, wipe)
			}
		}
	})
	return g.Wait()
}

func (w *Watch) render(out io.Writer, snap reconcile.Snapshot, wipe bool) {
	if wipe {
		_, _ = fmt.Fprint(out, "\033[H\033[2J")
	}
	pp := printers.PrettyPrint{ShowID: w.ShowID, Width: w.Width, Out: out}
	for _, warn := range w.Service.Warnings() {
		pp.Warning(warn)
	}

	switch snap.Status {
	case reconcile.StatusIdle:
		pp.Warning(app.ErrNoIdentity)
		return
	case reconcile.StatusLoading:
		_, _ = color.New(color.Faint).Fprintf(out, "loading notes for %s...\n", snap.Identity)
		return
	case reconcile.StatusError:
		pp.Error(snap.Err)
	}

	pp.TitleWithCount(snap.Identity, len(snap.Notes))
	pp.Notes(snap.Notes...)
	if !snap.UpdatedAt.IsZero() {
		_, _ = color.New(color.Faint).Fprintf(out, "updated %s\n", snap.UpdatedAt.Format(time.Kitchen))
	}
}

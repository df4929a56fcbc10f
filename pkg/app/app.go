// Package app wires the ledger, overlay store, reconciliation cache, and
// mutation coordinator together so the CLI and the TUI share one service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/fridge/pkg/config"
	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/metrics"
	"tableflip.dev/fridge/pkg/mutate"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/note/viewmodel"
	"tableflip.dev/fridge/pkg/reconcile"
	"tableflip.dev/fridge/pkg/store"
)

// ErrNoIdentity is returned when no owner is configured and the wallet has no
// active address.
var ErrNoIdentity = errors.New("app: no identity (connect a wallet or set owner)")

// Wallet signs transactions and knows the active account.
type Wallet interface {
	ledger.Signer
	ActiveAddress(ctx context.Context) (string, error)
}

// Fetcher lists the records owned by an identity.
type Fetcher interface {
	Fetch(ctx context.Context, owner string) ([]note.Record, error)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Options override collaborators, mostly for tests. Zero values select the
// production implementations derived from the config.
type Options struct {
	Logger     Logger
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
	Wallet     Wallet
	Fetcher    Fetcher
	Overlay    store.Overlay
}

// Service provides the note operations shared by the CLI and the TUI.
type Service struct {
	Config    *config.Config
	Overlay   store.Overlay
	Fetcher   Fetcher
	Wallet    Wallet
	Cache     *reconcile.Cache
	Mutations *mutate.Coordinator
	Metrics   *metrics.Metrics

	logger Logger
}

// New builds a Service from cfg. The overlay degrades to an in-memory store
// when the on-disk one cannot be opened, so colors still work for the
// session.
func New(cfg *config.Config, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	overlay := opts.Overlay
	if overlay == nil {
		disk, err := store.Load(cfg)
		if err != nil {
			logger.Printf("app: overlay unavailable, colors will not persist: %v", err)
			overlay = store.NewMemory()
		} else {
			overlay = disk
		}
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = ledger.NewFetcher(ledger.NewClient(cfg.RPC, opts.HTTPClient), cfg.TypeTag()).WithLogger(logger)
	}

	wallet := opts.Wallet
	if wallet == nil {
		wallet = &ledger.CLISigner{Binary: cfg.Sui, GasBudget: cfg.GasBudget}
	}

	cache := reconcile.New(fetcher, overlay, reconcile.Options{
		Interval: cfg.Interval,
		Logger:   logger,
		Metrics:  opts.Metrics,
	})
	mutations := mutate.New(wallet, cache, mutate.Options{
		Targets: mutate.Targets{
			Create: cfg.Function("create_note"),
			Update: cfg.Function("update_note"),
		},
		Chain:   cfg.Chain,
		Logger:  logger,
		Metrics: opts.Metrics,
	})

	return &Service{
		Config:    cfg,
		Overlay:   overlay,
		Fetcher:   fetcher,
		Wallet:    wallet,
		Cache:     cache,
		Mutations: mutations,
		Metrics:   opts.Metrics,
		logger:    logger,
	}, nil
}

// ResolveIdentity picks the owner to act for: an explicit override, then the
// configured owner, then the wallet's active address.
func (s *Service) ResolveIdentity(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if s.Config.Owner != "" {
		return s.Config.Owner, nil
	}
	if s.Wallet == nil {
		return "", ErrNoIdentity
	}
	addr, err := s.Wallet.ActiveAddress(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	return addr, nil
}

// SetIdentity switches the cache and the coordinator to identity together.
func (s *Service) SetIdentity(identity string) {
	s.Mutations.SetIdentity(identity)
	s.Cache.SetIdentity(identity)
}

// List fetches the notes for owner once, outside the cache.
func (s *Service) List(ctx context.Context, owner string) ([]note.View, error) {
	records, err := s.Fetcher.Fetch(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.Metrics.SetNotes(len(records))
	return viewmodel.Build(records, s.Overlay), nil
}

// Find returns the note with id from a fresh fetch for owner.
func (s *Service) Find(ctx context.Context, owner, id string) (note.View, error) {
	views, err := s.List(ctx, owner)
	if err != nil {
		return note.View{}, err
	}
	for _, v := range views {
		if v.ID == id {
			return v, nil
		}
	}
	return note.View{}, fmt.Errorf("app: note %s not found for %s", id, owner)
}

// SetColor records a color choice and refreshes the active identity. A store
// failure is logged, never returned.
func (s *Service) SetColor(id string, c note.Color) {
	if err := s.Overlay.Set(id, c); err != nil {
		s.logger.Printf("app: save color for %s: %v", id, err)
	}
	if identity := s.Cache.Identity(); identity != "" {
		s.Cache.Invalidate(identity)
	}
}

// Warnings reports configuration problems that disable remote operations.
func (s *Service) Warnings() []error {
	return s.Config.Warnings()
}

// Run drives the cache and, for a disk overlay, follows color changes made
// by other processes. It blocks until ctx is done or a component fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if w, ok := s.Overlay.(interface {
		Watch(context.Context) (<-chan store.Change, error)
	}); ok {
		changes, err := w.Watch(ctx)
		if err != nil {
			s.logger.Printf("app: overlay watch disabled: %v", err)
		} else {
			g.Go(func() error {
				s.followOverlay(ctx, changes)
				return nil
			})
		}
	}
	g.Go(func() error {
		return s.Cache.Run(ctx)
	})
	return g.Wait()
}

func (s *Service) followOverlay(ctx context.Context, changes <-chan store.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			snap := s.Cache.Current()
			if snap.Identity != "" && affects(c, snap.Notes) {
				s.Cache.Invalidate(snap.Identity)
			}
		}
	}
}

// affects reports whether c touches any shown note. Changes that could not be
// tied to an id always count.
func affects(c store.Change, views []note.View) bool {
	if c.All {
		return true
	}
	for _, id := range c.IDs {
		for _, v := range views {
			if v.ID == id {
				return true
			}
		}
	}
	return false
}

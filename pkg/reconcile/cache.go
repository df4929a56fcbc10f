// Package reconcile keeps the note list for the active identity in sync with
// the ledger.
//
// The Cache is an actor: Run owns every state transition, fetches execute on
// a worker goroutine and report back tagged with a generation, and public
// methods only enqueue requests or read the last published snapshot. There is
// never more than one fetch outstanding for the active identity.
package reconcile

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/metrics"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/note/viewmodel"
)

// DefaultInterval is the pause between the end of one fetch and the start of
// the next automatic one.
const DefaultInterval = 3 * time.Second

// Fetcher lists the records owned by an identity.
type Fetcher interface {
	Fetch(ctx context.Context, owner string) ([]note.Record, error)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Options tune a Cache.
type Options struct {
	Interval time.Duration
	Logger   Logger
	Metrics  *metrics.Metrics
}

type requestKind int

const (
	requestInvalidate requestKind = iota
	requestIdentity
)

type request struct {
	kind     requestKind
	identity string
}

type fetchResult struct {
	gen      uint64
	identity string
	records  []note.Record
	err      error
	took     time.Duration
}

// Cache holds the latest note views for one identity at a time.
type Cache struct {
	fetcher  Fetcher
	overlay  viewmodel.Overlay
	interval time.Duration
	logger   Logger
	metrics  *metrics.Metrics

	mu   sync.RWMutex
	snap Snapshot

	requests chan request
	results  chan fetchResult
	updates  chan Snapshot
	done     chan struct{}
	runOnce  sync.Once
}

// New returns a cache that is idle until Run is started and an identity is
// set.
func New(fetcher Fetcher, overlay viewmodel.Overlay, opts Options) *Cache {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cache{
		fetcher:  fetcher,
		overlay:  overlay,
		interval: interval,
		logger:   logger,
		metrics:  opts.Metrics,
		requests: make(chan request, 64),
		results:  make(chan fetchResult),
		updates:  make(chan Snapshot, 1),
		done:     make(chan struct{}),
	}
}

// Current returns the latest snapshot.
func (c *Cache) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// Identity returns the active identity, or "" when none is set.
func (c *Cache) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Identity
}

// Updates delivers published snapshots. Only the most recent undelivered
// snapshot is retained, so a slow reader skips intermediate states but never
// sees them out of order.
func (c *Cache) Updates() <-chan Snapshot {
	return c.updates
}

// SetIdentity switches the active identity. The previous identity's notes are
// dropped immediately and any fetch in flight for it is cancelled and its
// result discarded. An empty identity idles the cache.
func (c *Cache) SetIdentity(identity string) {
	c.enqueue(request{kind: requestIdentity, identity: identity})
}

// Invalidate asks for an immediate refetch for identity. It is ignored when
// identity is not the active one. While a fetch is outstanding the request is
// folded into a single follow-up fetch.
func (c *Cache) Invalidate(identity string) {
	c.enqueue(request{kind: requestInvalidate, identity: identity})
}

func (c *Cache) enqueue(r request) {
	select {
	case c.requests <- r:
	case <-c.done:
	}
}

// Run drives the cache until ctx is done. It must be called once.
func (c *Cache) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("reconcile: Run called twice")
	}
	defer close(c.done)

	timer := time.NewTimer(c.interval)
	stopTimer(timer)
	defer timer.Stop()

	var (
		identity string
		gen      uint64
		inFlight bool
		again    bool
		halted   bool
		cancel   context.CancelFunc = func() {}
	)
	defer func() { cancel() }()

	start := func() {
		gen++
		fetchCtx, fetchCancel := context.WithCancel(ctx)
		cancel = fetchCancel
		inFlight = true
		c.setFetching(true)
		go c.fetch(ctx, fetchCtx, gen, identity)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-c.requests:
			switch req.kind {
			case requestIdentity:
				if req.identity == identity {
					continue
				}
				cancel()
				gen++
				inFlight, again, halted = false, false, false
				identity = req.identity
				stopTimer(timer)
				c.resetFor(identity)
				if identity != "" {
					start()
				}
			case requestInvalidate:
				if identity == "" || req.identity != identity {
					continue
				}
				halted = false
				if inFlight {
					again = true
					continue
				}
				stopTimer(timer)
				start()
			}

		case <-timer.C:
			if identity == "" || inFlight || halted {
				continue
			}
			start()

		case res := <-c.results:
			if res.gen != gen || res.identity != identity {
				c.metrics.ObserveFetch(metrics.ResultDiscarded, res.took)
				continue
			}
			cancel()
			inFlight = false
			c.apply(res)
			if errors.Is(res.err, ledger.ErrNotConfigured) {
				// Reported once; only an identity change or explicit
				// invalidation tries again.
				halted, again = true, false
				continue
			}
			if again {
				again = false
				start()
				continue
			}
			timer.Reset(c.interval)
		}
	}
}

func (c *Cache) fetch(runCtx, ctx context.Context, gen uint64, identity string) {
	began := time.Now()
	records, err := c.fetcher.Fetch(ctx, identity)
	res := fetchResult{
		gen:      gen,
		identity: identity,
		records:  records,
		err:      err,
		took:     time.Since(began),
	}
	select {
	case c.results <- res:
	case <-runCtx.Done():
	}
}

func (c *Cache) setFetching(v bool) {
	c.mu.Lock()
	c.snap.Fetching = v
	c.mu.Unlock()
}

func (c *Cache) resetFor(identity string) {
	next := Snapshot{Identity: identity, Status: StatusIdle}
	if identity != "" {
		next.Status = StatusLoading
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishLocked(next)
}

func (c *Cache) apply(res fetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snap
	next.Fetching = false
	if res.err != nil {
		c.logger.Printf("reconcile: fetch for %s failed: %v", res.identity, res.err)
		c.metrics.ObserveFetch(metrics.ResultError, res.took)
		next.Status = StatusError
		next.Err = res.err
		c.publishLocked(next)
		return
	}

	c.metrics.ObserveFetch(metrics.ResultSuccess, res.took)
	c.metrics.SetNotes(len(res.records))
	next.Status = StatusReady
	next.Err = nil
	next.Notes = viewmodel.Build(res.records, c.overlay)
	next.UpdatedAt = time.Now()
	c.publishLocked(next)
}

// publishLocked stores next and, if it renders differently from the current
// snapshot, hands it to the Updates channel with a new revision.
func (c *Cache) publishLocked(next Snapshot) {
	if sameRender(c.snap, next) {
		next.Revision = c.snap.Revision
		c.snap = next
		return
	}
	next.Revision = c.snap.Revision + 1
	c.snap = next
	out := next.clone()
	for {
		select {
		case c.updates <- out:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"tableflip.dev/fridge/pkg/note"
)

const (
	methodGetOwnedObjects = "suix_getOwnedObjects"
	defaultPageLimit      = 50
	maxPages              = 50
)

// Caller performs one JSON-RPC call. *Client implements it.
type Caller interface {
	Call(ctx context.Context, method string, params []any, out any) error
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Fetcher lists the note objects owned by an address.
type Fetcher struct {
	caller    Caller
	typeTag   string
	pageLimit int
	maxPages  int
	logger    Logger

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context shared by every caller waiting on one owner's
// request. It is cancelled once the last waiter has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewFetcher returns a fetcher filtering on typeTag, e.g.
// "0x2a::notes_app::Note". An empty typeTag makes every Fetch fail with a
// ConfigurationError.
func NewFetcher(caller Caller, typeTag string) *Fetcher {
	return &Fetcher{
		caller:    caller,
		typeTag:   strings.TrimSpace(typeTag),
		pageLimit: defaultPageLimit,
		maxPages:  maxPages,
		logger:    log.New(io.Discard, "", 0),
		flights:   make(map[string]*flight),
	}
}

// WithLogger sets where the fetcher reports truncated results.
func (f *Fetcher) WithLogger(l Logger) *Fetcher {
	if l != nil {
		f.logger = l
	}
	return f
}

// TypeTag returns the struct type the fetcher filters on.
func (f *Fetcher) TypeTag() string {
	return f.typeTag
}

// Fetch returns the owner's notes in ledger order. Concurrent calls for the
// same owner share a single request. A caller whose ctx ends gets a
// QueryError right away; the shared request keeps running for the others
// and is cancelled when nobody waits on it any more.
func (f *Fetcher) Fetch(ctx context.Context, owner string) ([]note.Record, error) {
	if f.typeTag == "" {
		return nil, &ConfigurationError{Field: "package id"}
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, &QueryError{Err: errors.New("owner required")}
	}

	fl, ch := f.join(ctx, owner)
	select {
	case <-ctx.Done():
		f.leave(owner, fl, true)
		return nil, &QueryError{Owner: owner, Err: ctx.Err()}
	case res := <-ch:
		f.leave(owner, fl, false)
		if res.Err != nil {
			return nil, res.Err
		}
		records := res.Val.([]note.Record)
		if res.Shared {
			records = append([]note.Record(nil), records...)
		}
		return records, nil
	}
}

func (f *Fetcher) join(ctx context.Context, owner string) (*flight, <-chan singleflight.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flights == nil {
		f.flights = make(map[string]*flight)
	}
	fl := f.flights[owner]
	if fl == nil {
		shared, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: shared, cancel: cancel}
		f.flights[owner] = fl
	}
	fl.waiters++
	ch := f.group.DoChan(owner, func() (any, error) {
		return f.fetchAll(fl.ctx, owner)
	})
	return fl, ch
}

func (f *Fetcher) leave(owner string, fl *flight, abandoned bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[owner] != fl {
		return
	}
	delete(f.flights, owner)
	if abandoned {
		// The cancelled request must not be joined by a later caller.
		f.group.Forget(owner)
	}
}

type ownedObjectsPage struct {
	Data        []json.RawMessage `json:"data"`
	NextCursor  json.RawMessage   `json:"nextCursor"`
	HasNextPage bool              `json:"hasNextPage"`
}

func (f *Fetcher) fetchAll(ctx context.Context, owner string) ([]note.Record, error) {
	query := map[string]any{
		"filter": map[string]any{"StructType": f.typeTag},
		"options": map[string]any{
			"showContent": true,
			"showType":    true,
			"showOwner":   true,
		},
	}

	records := make([]note.Record, 0)
	var cursor any
	for page := 0; ; page++ {
		if page == f.maxPages {
			f.logger.Printf("ledger: %s owns more than %d pages of notes, showing the first %d", owner, f.maxPages, len(records))
			break
		}
		var resp ownedObjectsPage
		if err := f.caller.Call(ctx, methodGetOwnedObjects, []any{owner, query, cursor, f.pageLimit}, &resp); err != nil {
			return nil, &QueryError{Owner: owner, Err: err}
		}
		for _, raw := range resp.Data {
			records = append(records, decodeRecord(raw, owner))
		}
		next := decodeCursor(resp.NextCursor)
		if !resp.HasNextPage || next == "" {
			break
		}
		cursor = next
	}
	return records, nil
}

// decodeRecord pulls the id and text out of one object response. Anything
// missing or of the wrong shape becomes "".
func decodeRecord(raw json.RawMessage, owner string) note.Record {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return note.Record{Owner: owner}
	}
	rec := note.Record{
		ID:      lookupString(obj, "data", "objectId"),
		Content: lookupString(obj, "data", "content", "fields", "content"),
		Owner:   lookupString(obj, "data", "owner", "AddressOwner"),
	}
	if rec.Owner == "" {
		rec.Owner = owner
	}
	return rec
}

func decodeCursor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func lookupString(v any, path ...string) string {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v = m[key]
	}
	s, _ := v.(string)
	return s
}

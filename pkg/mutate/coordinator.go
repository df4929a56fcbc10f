// Package mutate submits create and update intents and keeps the note cache
// consistent with them.
package mutate

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/metrics"
)

// Invalidator is told to refetch after a successful mutation.
type Invalidator interface {
	Invalidate(identity string)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Targets are the fully qualified Move functions to call. Empty targets mean
// the package is not configured.
type Targets struct {
	Create string
	Update string
}

// Options configure a Coordinator.
type Options struct {
	Targets Targets
	Chain   string
	Logger  Logger
	Metrics *metrics.Metrics
}

// Edit is the note currently open for editing.
type Edit struct {
	ID      string
	Content string
}

// Coordinator owns the draft buffer, the edit buffer, and at most one pending
// intent of each kind.
type Coordinator struct {
	signer      ledger.Signer
	invalidator Invalidator
	targets     Targets
	chain       string
	logger      Logger
	metrics     *metrics.Metrics
	newID       func() string

	mu       sync.Mutex
	identity string
	gen      uint64
	cancels  map[string]context.CancelFunc
	create   *Intent
	update   *Intent
	draft    string
	editing  *Edit
}

// New returns a Coordinator with no active identity.
func New(signer ledger.Signer, invalidator Invalidator, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Coordinator{
		signer:      signer,
		invalidator: invalidator,
		targets:     opts.Targets,
		chain:       opts.Chain,
		logger:      logger,
		metrics:     opts.Metrics,
		newID:       uuid.NewString,
		cancels:     map[string]context.CancelFunc{},
	}
}

// SetIdentity binds later mutations to identity. Mutations in flight for the
// previous identity are cancelled and their outcomes dropped, and any open
// edit is closed.
func (c *Coordinator) SetIdentity(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if identity == c.identity {
		return
	}
	c.identity = identity
	c.gen++
	for id, cancel := range c.cancels {
		cancel()
		delete(c.cancels, id)
	}
	c.create = nil
	c.update = nil
	c.editing = nil
}

// Identity returns the identity mutations are bound to.
func (c *Coordinator) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// SetDraft replaces the create input buffer.
func (c *Coordinator) SetDraft(s string) {
	c.mu.Lock()
	c.draft = s
	c.mu.Unlock()
}

// Draft returns the create input buffer.
func (c *Coordinator) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// BeginEdit opens id for editing, seeded with its current content. Only one
// note is editable at a time; a previous edit is replaced.
func (c *Coordinator) BeginEdit(id, content string) {
	c.mu.Lock()
	c.editing = &Edit{ID: id, Content: content}
	c.mu.Unlock()
}

// SetEditContent replaces the edit buffer. It is a no-op outside edit mode.
func (c *Coordinator) SetEditContent(content string) {
	c.mu.Lock()
	if c.editing != nil {
		c.editing.Content = content
	}
	c.mu.Unlock()
}

// CancelEdit leaves edit mode without submitting.
func (c *Coordinator) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}

// Editing returns the open edit, if any.
func (c *Coordinator) Editing() (Edit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return Edit{}, false
	}
	return *c.editing, true
}

// Pending reports whether an intent of kind is in flight.
func (c *Coordinator) Pending(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := c.slot(kind)
	return in != nil && in.Status == StatusPending
}

// Intents returns the intents not yet acknowledged, creates first.
func (c *Coordinator) Intents() []Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Intent
	for _, in := range []*Intent{c.create, c.update} {
		if in != nil {
			out = append(out, *in)
		}
	}
	return out
}

// Acknowledge discards a terminal intent. It reports whether one was removed.
func (c *Coordinator) Acknowledge(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.create != nil && c.create.ID == id && c.create.Status.Terminal():
		c.create = nil
	case c.update != nil && c.update.ID == id && c.update.Status.Terminal():
		c.update = nil
	default:
		return false
	}
	return true
}

// Create submits a new note. Whitespace is trimmed before submission. On
// success the draft is cleared and the cache invalidated once.
func (c *Coordinator) Create(ctx context.Context, content string) Outcome {
	return c.submit(ctx, KindCreate, "", content)
}

// Update replaces the content of note id. On success edit mode ends and the
// cache is invalidated once. On failure the edit buffer keeps content.
func (c *Coordinator) Update(ctx context.Context, id, content string) Outcome {
	return c.submit(ctx, KindUpdate, id, content)
}

func (c *Coordinator) slot(kind Kind) *Intent {
	if kind == KindCreate {
		return c.create
	}
	return c.update
}

func (c *Coordinator) setSlot(kind Kind, in *Intent) {
	if kind == KindCreate {
		c.create = in
		return
	}
	c.update = in
}

func (c *Coordinator) reject(kind Kind, err error) Outcome {
	c.metrics.ObserveMutation(kind.String(), metrics.ResultRejected)
	return failed(err)
}

func (c *Coordinator) submit(ctx context.Context, kind Kind, target, content string) Outcome {
	trimmed := strings.TrimSpace(content)

	c.mu.Lock()
	switch {
	case trimmed == "":
		c.mu.Unlock()
		return c.reject(kind, ErrEmptyContent)
	case c.identity == "":
		c.mu.Unlock()
		return c.reject(kind, ErrNoIdentity)
	}
	if in := c.slot(kind); in != nil && in.Status == StatusPending {
		c.mu.Unlock()
		return c.reject(kind, ErrPending)
	}
	intent := &Intent{
		ID:       c.newID(),
		Kind:     kind,
		TargetID: target,
		Content:  trimmed,
		Status:   StatusPending,
	}
	c.setSlot(kind, intent)
	if kind == KindUpdate && c.editing != nil && c.editing.ID == target {
		c.editing.Content = content
	}
	gen, identity := c.gen, c.identity
	mctx, cancel := context.WithCancel(ctx)
	c.cancels[intent.ID] = cancel
	c.mu.Unlock()
	defer cancel()

	receipt, err := c.execute(mctx, kind, target, trimmed)
	return c.finish(intent, gen, identity, receipt, err)
}

func (c *Coordinator) execute(ctx context.Context, kind Kind, target, content string) (ledger.Receipt, error) {
	var tx ledger.Transaction
	switch kind {
	case KindCreate:
		if c.targets.Create == "" {
			return ledger.Receipt{}, &ledger.ConfigurationError{Field: "package id"}
		}
		tx = ledger.CreateNote(c.targets.Create, content, c.chain)
	default:
		if c.targets.Update == "" {
			return ledger.Receipt{}, &ledger.ConfigurationError{Field: "package id"}
		}
		tx = ledger.UpdateNote(c.targets.Update, target, content, c.chain)
	}
	return c.signer.SignAndExecute(ctx, tx)
}

func (c *Coordinator) finish(intent *Intent, gen uint64, identity string, receipt ledger.Receipt, err error) Outcome {
	c.mu.Lock()
	delete(c.cancels, intent.ID)
	if gen != c.gen {
		c.mu.Unlock()
		c.metrics.ObserveMutation(intent.Kind.String(), metrics.ResultDiscarded)
		return failed(ErrDiscarded)
	}

	if err != nil {
		merr := &MutationError{Kind: intent.Kind, TargetID: intent.TargetID, Err: err}
		intent.Status = StatusFailed
		intent.Err = merr
		snapshot := *intent
		c.mu.Unlock()

		c.logger.Printf("%v", merr)
		c.metrics.ObserveMutation(intent.Kind.String(), metrics.ResultError)
		out := failed(merr)
		out.Intent = snapshot
		return out
	}

	intent.Status = StatusSucceeded
	intent.Digest = receipt.Digest
	switch intent.Kind {
	case KindCreate:
		c.draft = ""
	case KindUpdate:
		if c.editing != nil && c.editing.ID == intent.TargetID {
			c.editing = nil
		}
	}
	snapshot := *intent
	c.mu.Unlock()

	c.metrics.ObserveMutation(intent.Kind.String(), metrics.ResultSuccess)
	if c.invalidator != nil {
		c.invalidator.Invalidate(identity)
	}
	return Outcome{Status: StatusSucceeded, Intent: snapshot}
}

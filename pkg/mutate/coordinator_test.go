package mutate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/metrics"
)

type fakeSigner struct {
	mu      sync.Mutex
	txs     []ledger.Transaction
	err     error
	block   chan struct{}
	started chan struct{}
}

func (s *fakeSigner) SignAndExecute(ctx context.Context, tx ledger.Transaction) (ledger.Receipt, error) {
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	block, err := s.block, s.err
	s.mu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ledger.Receipt{}, ctx.Err()
		}
	}
	if err != nil {
		return ledger.Receipt{}, err
	}
	return ledger.Receipt{Digest: "D1", Status: "success"}, nil
}

func (s *fakeSigner) submitted() []ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Transaction(nil), s.txs...)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeInvalidator) Invalidate(identity string) {
	f.mu.Lock()
	f.calls = append(f.calls, identity)
	f.mu.Unlock()
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var testTargets = Targets{
	Create: "0xpkg::notes_app::create_note",
	Update: "0xpkg::notes_app::update_note",
}

func newTestCoordinator(s *fakeSigner, inv *fakeInvalidator, m *metrics.Metrics) *Coordinator {
	c := New(s, inv, Options{Targets: testTargets, Chain: "sui:testnet", Metrics: m})
	c.SetIdentity("0xa")
	return c
}

func TestCreateRejectsEmptyContent(t *testing.T) {
	s := &fakeSigner{}
	inv := &fakeInvalidator{}
	m := metrics.New()
	c := newTestCoordinator(s, inv, m)
	c.SetDraft("   ")

	for _, content := range []string{"", "   ", "\n\t"} {
		out := c.Create(context.Background(), content)
		if out.Succeeded() || !errors.Is(out.Err, ErrEmptyContent) || !out.Rejected() {
			t.Fatalf("Create(%q) = %+v, want ErrEmptyContent", content, out)
		}
	}
	if got := len(s.submitted()); got != 0 {
		t.Fatalf("submitted %d transactions, want 0", got)
	}
	if inv.count() != 0 {
		t.Fatal("rejection invalidated the cache")
	}
	if got := c.Draft(); got != "   " {
		t.Fatalf("draft = %q, want unchanged", got)
	}
	if got := len(c.Intents()); got != 0 {
		t.Fatalf("intents = %d, want 0", got)
	}
}

func TestCreateSuccessClearsDraftAndInvalidatesOnce(t *testing.T) {
	s := &fakeSigner{}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)
	c.SetDraft("  buy milk  ")

	out := c.Create(context.Background(), c.Draft())
	if !out.Succeeded() {
		t.Fatalf("Create() = %+v, want success", out)
	}
	if out.Intent.Digest != "D1" || out.Intent.Content != "buy milk" || out.Intent.ID == "" {
		t.Fatalf("intent = %+v", out.Intent)
	}

	txs := s.submitted()
	if len(txs) != 1 {
		t.Fatalf("submitted %d transactions, want 1", len(txs))
	}
	want := ledger.CreateNote(testTargets.Create, "buy milk", "sui:testnet")
	if txs[0].Target != want.Target || txs[0].Chain != want.Chain || len(txs[0].Arguments) != 1 || txs[0].Arguments[0] != want.Arguments[0] {
		t.Fatalf("tx = %+v, want %+v", txs[0], want)
	}
	if got := c.Draft(); got != "" {
		t.Fatalf("draft = %q, want cleared", got)
	}
	if inv.count() != 1 || inv.calls[0] != "0xa" {
		t.Fatalf("invalidations = %v, want [0xa]", inv.calls)
	}

	if !c.Acknowledge(out.Intent.ID) {
		t.Fatal("Acknowledge() = false")
	}
	if got := len(c.Intents()); got != 0 {
		t.Fatalf("intents after ack = %d", got)
	}
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	s := &fakeSigner{err: errors.New("rejected by wallet")}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)
	c.SetDraft("buy milk")

	out := c.Create(context.Background(), "buy milk")
	var merr *MutationError
	if !errors.As(out.Err, &merr) || merr.Kind != KindCreate {
		t.Fatalf("err = %v, want *MutationError", out.Err)
	}
	if out.Status != StatusFailed || out.Reason == "" {
		t.Fatalf("outcome = %+v", out)
	}
	if got := c.Draft(); got != "buy milk" {
		t.Fatalf("draft = %q", got)
	}
	if inv.count() != 0 {
		t.Fatal("failure invalidated the cache")
	}
	intents := c.Intents()
	if len(intents) != 1 || intents[0].Status != StatusFailed {
		t.Fatalf("intents = %+v", intents)
	}
}

func TestCreateRejectsWhilePending(t *testing.T) {
	s := &fakeSigner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)

	done := make(chan Outcome, 1)
	go func() { done <- c.Create(context.Background(), "first") }()
	<-s.started

	if !c.Pending(KindCreate) {
		t.Fatal("create not pending")
	}
	out := c.Create(context.Background(), "second")
	if !errors.Is(out.Err, ErrPending) {
		t.Fatalf("second Create() = %+v, want ErrPending", out)
	}
	// An update is a different slot and is not blocked by a pending create.
	s.mu.Lock()
	first := s.block
	s.block = nil
	s.mu.Unlock()
	if up := c.Update(context.Background(), "0x1", "other"); !up.Succeeded() {
		t.Fatalf("Update() = %+v", up)
	}

	close(first)
	if got := <-done; !got.Succeeded() {
		t.Fatalf("first Create() = %+v", got)
	}
	if got := len(s.submitted()); got != 2 {
		t.Fatalf("submitted %d, want 2", got)
	}
}

func TestUpdateSuccessExitsEditMode(t *testing.T) {
	s := &fakeSigner{}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)

	c.BeginEdit("0x1", "old")
	c.SetEditContent(" new ")
	edit, _ := c.Editing()
	out := c.Update(context.Background(), edit.ID, edit.Content)
	if !out.Succeeded() {
		t.Fatalf("Update() = %+v", out)
	}
	if _, ok := c.Editing(); ok {
		t.Fatal("still editing after success")
	}
	tx := s.submitted()[0]
	if tx.Target != testTargets.Update || tx.Arguments[0] != ledger.Object("0x1") || tx.Arguments[1] != ledger.Pure("new") {
		t.Fatalf("tx = %+v", tx)
	}
	if inv.count() != 1 {
		t.Fatalf("invalidations = %d, want 1", inv.count())
	}
}

func TestUpdateFailureKeepsEditBuffer(t *testing.T) {
	s := &fakeSigner{err: errors.New("object version mismatch")}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)

	c.BeginEdit("0x1", "old")
	out := c.Update(context.Background(), "0x1", "new text")
	if out.Succeeded() {
		t.Fatal("Update() succeeded")
	}
	var merr *MutationError
	if !errors.As(out.Err, &merr) || merr.TargetID != "0x1" {
		t.Fatalf("err = %v", out.Err)
	}
	edit, ok := c.Editing()
	if !ok || edit.ID != "0x1" || edit.Content != "new text" {
		t.Fatalf("edit = %+v, %v; want 0x1 with entered text", edit, ok)
	}
	if inv.count() != 0 {
		t.Fatal("failure invalidated the cache")
	}
}

func TestUpdateRejections(t *testing.T) {
	s := &fakeSigner{}
	c := newTestCoordinator(s, &fakeInvalidator{}, nil)
	c.BeginEdit("0x1", "old")

	out := c.Update(context.Background(), "0x1", "  ")
	if !errors.Is(out.Err, ErrEmptyContent) {
		t.Fatalf("Update() = %+v, want ErrEmptyContent", out)
	}
	if edit, ok := c.Editing(); !ok || edit.Content != "old" {
		t.Fatalf("edit = %+v, want unchanged", edit)
	}

	c.SetIdentity("")
	out = c.Create(context.Background(), "hello")
	if !errors.Is(out.Err, ErrNoIdentity) {
		t.Fatalf("Create() = %+v, want ErrNoIdentity", out)
	}
	if got := len(s.submitted()); got != 0 {
		t.Fatalf("submitted %d, want 0", got)
	}
}

func TestMissingTargetsFailWithConfigurationError(t *testing.T) {
	s := &fakeSigner{}
	inv := &fakeInvalidator{}
	c := New(s, inv, Options{Chain: "sui:testnet"})
	c.SetIdentity("0xa")

	out := c.Create(context.Background(), "hello")
	if !errors.Is(out.Err, ledger.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", out.Err)
	}
	if got := len(s.submitted()); got != 0 {
		t.Fatalf("submitted %d, want 0", got)
	}
}

func TestIdentityChangeDiscardsInFlightOutcome(t *testing.T) {
	s := &fakeSigner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	inv := &fakeInvalidator{}
	c := newTestCoordinator(s, inv, nil)
	c.BeginEdit("0x1", "old")

	done := make(chan Outcome, 1)
	go func() { done <- c.Update(context.Background(), "0x1", "new") }()
	<-s.started

	c.SetIdentity("0xb")

	select {
	case out := <-done:
		if !out.Discarded() {
			t.Fatalf("outcome = %+v, want discarded", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight mutation was not cancelled")
	}
	if inv.count() != 0 {
		t.Fatal("discarded outcome invalidated the cache")
	}
	if _, ok := c.Editing(); ok {
		t.Fatal("edit survived identity change")
	}
	if got := len(c.Intents()); got != 0 {
		t.Fatalf("intents = %d, want 0", got)
	}
	if c.Pending(KindUpdate) {
		t.Fatal("update still pending for new identity")
	}
}

func TestAcknowledgeIgnoresPending(t *testing.T) {
	s := &fakeSigner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	c := newTestCoordinator(s, &fakeInvalidator{}, nil)

	done := make(chan Outcome, 1)
	go func() { done <- c.Create(context.Background(), "x") }()
	<-s.started

	intents := c.Intents()
	if len(intents) != 1 || intents[0].Status != StatusPending {
		t.Fatalf("intents = %+v", intents)
	}
	if c.Acknowledge(intents[0].ID) {
		t.Fatal("acknowledged a pending intent")
	}
	close(s.block)
	<-done
	if !c.Acknowledge(intents[0].ID) {
		t.Fatal("could not acknowledge terminal intent")
	}
}

func TestKindAndStatusStrings(t *testing.T) {
	if KindCreate.String() != "create" || KindUpdate.String() != "update" || Kind(9).String() != "unknown" {
		t.Error("unexpected Kind strings")
	}
	if StatusPending.String() != "pending" || StatusSucceeded.String() != "succeeded" || StatusFailed.String() != "failed" {
		t.Error("unexpected Status strings")
	}
	if StatusPending.Terminal() || !StatusFailed.Terminal() {
		t.Error("unexpected Terminal results")
	}
}

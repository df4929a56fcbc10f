package teaui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/config"
	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/mutate"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/reconcile"
	"tableflip.dev/fridge/pkg/store"
	"tableflip.dev/fridge/pkg/tui/events"
)

type fakeLedger struct {
	mu   sync.Mutex
	txs  []ledger.Transaction
	fail error
}

func (l *fakeLedger) Fetch(context.Context, string) ([]note.Record, error) {
	return nil, nil
}

func (l *fakeLedger) ActiveAddress(context.Context) (string, error) {
	return "0xa", nil
}

func (l *fakeLedger) SignAndExecute(_ context.Context, tx ledger.Transaction) (ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
	if l.fail != nil {
		return ledger.Receipt{}, l.fail
	}
	return ledger.Receipt{Digest: "D1", Status: "success"}, nil
}

func (l *fakeLedger) submitted() []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.Transaction(nil), l.txs...)
}

var testNotes = []note.View{
	{ID: "0x1", Content: "milk", Color: note.Yellow},
	{ID: "0x2", Content: "", Color: note.Pink},
	{ID: "0x3", Content: "call mom", Color: note.Green, Rotation: 3},
}

func newTestModel(t *testing.T, pkg string) (*Model, *app.Service, *fakeLedger, *store.Memory) {
	t.Helper()
	l := &fakeLedger{}
	overlay := store.NewMemory()
	cfg := &config.Config{
		Package:  pkg,
		RPC:      config.DefaultRPC,
		Chain:    config.DefaultChain,
		Path:     t.TempDir(),
		Interval: time.Hour,
		Sui:      "sui",
	}
	svc, err := app.New(cfg, app.Options{Wallet: l, Fetcher: l, Overlay: overlay})
	if err != nil {
		t.Fatal(err)
	}
	svc.Mutations.SetIdentity("0xa")
	m := New(context.Background(), svc)
	m.applySnapshot(reconcile.Snapshot{Identity: "0xa", Status: reconcile.StatusReady, Notes: testNotes, Revision: 1})
	return m, svc, l, overlay
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

func TestViewIdle(t *testing.T) {
	m, _, _, _ := newTestModel(t, "0xfeed")
	m.applySnapshot(reconcile.Snapshot{Status: reconcile.StatusIdle})
	if v := m.View(); !strings.Contains(v, "Connect your wallet") {
		t.Fatalf("view = %q", v)
	}
}

func TestViewEmptyAndWarnings(t *testing.T) {
	m, _, _, _ := newTestModel(t, "")
	m.applySnapshot(reconcile.Snapshot{Identity: "0xa", Status: reconcile.StatusReady, Notes: []note.View{}})
	v := m.View()
	if !strings.Contains(v, "No notes yet") {
		t.Errorf("missing empty state in %q", v)
	}
	if !strings.Contains(v, "missing package id") {
		t.Errorf("missing package banner in %q", v)
	}
}

func TestViewErrorKeepsNotes(t *testing.T) {
	m, _, _, _ := newTestModel(t, "0xfeed")
	m.applySnapshot(reconcile.Snapshot{
		Identity: "0xa",
		Status:   reconcile.StatusError,
		Notes:    testNotes,
		Err:      &ledger.QueryError{Owner: "0xa", Err: errors.New("timeout")},
	})
	v := m.View()
	if !strings.Contains(v, "could not load notes") || !strings.Contains(v, "showing last known notes") {
		t.Errorf("missing error banner in %q", v)
	}
	if !strings.Contains(v, "milk") || !strings.Contains(v, note.EmptyPlaceholder) {
		t.Errorf("notes not rendered in %q", v)
	}
}

func TestSelectionFollowsNoteAcrossSnapshots(t *testing.T) {
	m, _, _, _ := newTestModel(t, "0xfeed")
	press(t, m, runes("l"))
	press(t, m, runes("l"))
	press(t, m, runes("l"))
	if m.selected != 2 || m.selectedID != "0x3" {
		t.Fatalf("selected = %d (%s), want clamp at 0x3", m.selected, m.selectedID)
	}

	reordered := []note.View{testNotes[2], testNotes[0]}
	m.applySnapshot(reconcile.Snapshot{Identity: "0xa", Status: reconcile.StatusReady, Notes: reordered, Revision: 2})
	if m.selected != 0 || m.selectedID != "0x3" {
		t.Fatalf("selected = %d (%s), want 0x3 at index 0", m.selected, m.selectedID)
	}

	m.applySnapshot(reconcile.Snapshot{Identity: "0xb", Status: reconcile.StatusReady, Notes: testNotes[:1], Revision: 3})
	if m.selected != 0 || m.selectedID != "0x1" {
		t.Fatalf("selection not reset on identity change: %d (%s)", m.selected, m.selectedID)
	}
}

func TestColorKeySavesOverlay(t *testing.T) {
	m, _, _, overlay := newTestModel(t, "0xfeed")
	press(t, m, runes("l"))
	cmd := press(t, m, runes("4"))
	if cmd == nil {
		t.Fatal("no command for color key")
	}
	msg := cmd()
	set, ok := msg.(events.ColorSetMsg)
	if !ok || set.ID != "0x2" || set.Color != note.Blue {
		t.Fatalf("msg = %#v", msg)
	}
	if c, ok := overlay.Get("0x2"); !ok || c != note.Blue {
		t.Fatalf("overlay = %v, %v", c, ok)
	}
	press(t, m, msg)
	if !strings.Contains(m.status, "blue") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestCreateFlow(t *testing.T) {
	m, svc, l, _ := newTestModel(t, "0xfeed")
	press(t, m, runes("n"))
	if m.mode != modeCreate {
		t.Fatalf("mode = %v, want create", m.mode)
	}
	press(t, m, runes("hello"))
	if got := svc.Mutations.Draft(); got != "hello" {
		t.Fatalf("draft = %q", got)
	}

	cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("no submit command")
	}
	res, ok := cmd().(events.MutationResultMsg)
	if !ok || !res.Outcome.Succeeded() {
		t.Fatalf("result = %#v", res)
	}
	press(t, m, res)

	if m.mode != modeNormal {
		t.Fatalf("mode = %v, want normal", m.mode)
	}
	if svc.Mutations.Draft() != "" {
		t.Fatal("draft not cleared")
	}
	if len(svc.Mutations.Intents()) != 0 {
		t.Fatal("intent not acknowledged")
	}
	txs := l.submitted()
	if len(txs) != 1 || txs[0].Target != "0xfeed::notes_app::create_note" || txs[0].Arguments[0].Value != "hello" {
		t.Fatalf("txs = %+v", txs)
	}
}

func TestCreateEmptyStaysOpen(t *testing.T) {
	m, _, l, _ := newTestModel(t, "0xfeed")
	press(t, m, runes("n"))
	res := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})().(events.MutationResultMsg)
	press(t, m, res)

	if m.mode != modeCreate {
		t.Fatalf("mode = %v, want create", m.mode)
	}
	if !errors.Is(m.inputErr, mutate.ErrEmptyContent) {
		t.Fatalf("inputErr = %v", m.inputErr)
	}
	if len(l.submitted()) != 0 {
		t.Fatal("empty note submitted")
	}
}

func TestEditFailureKeepsBuffer(t *testing.T) {
	m, svc, l, _ := newTestModel(t, "0xfeed")
	l.fail = errors.New("wallet rejected")

	press(t, m, runes("e"))
	if m.mode != modeEdit || m.input.Value() != "milk" {
		t.Fatalf("mode = %v, value = %q", m.mode, m.input.Value())
	}
	press(t, m, runes("!"))
	res := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})().(events.MutationResultMsg)
	press(t, m, res)

	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want edit", m.mode)
	}
	var merr *mutate.MutationError
	if !errors.As(m.inputErr, &merr) {
		t.Fatalf("inputErr = %v", m.inputErr)
	}
	if got := m.input.Value(); got != "milk!" {
		t.Fatalf("input = %q", got)
	}
	if ed, ok := svc.Mutations.Editing(); !ok || ed.Content != "milk!" {
		t.Fatalf("edit = %+v, %v", ed, ok)
	}
	if !strings.Contains(m.View(), "wallet rejected") {
		t.Fatal("inline error not rendered")
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeNormal {
		t.Fatalf("mode = %v after esc", m.mode)
	}
	if _, ok := svc.Mutations.Editing(); ok {
		t.Fatal("edit not cancelled")
	}
}

func TestOwnerSwitch(t *testing.T) {
	m, svc, _, _ := newTestModel(t, "0xfeed")
	press(t, m, runes("o"))
	if m.mode != modeOwner {
		t.Fatalf("mode = %v", m.mode)
	}
	m.owner.SetValue("0xb")
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeNormal {
		t.Fatalf("mode = %v", m.mode)
	}
	if got := svc.Mutations.Identity(); got != "0xb" {
		t.Fatalf("identity = %q", got)
	}
}

func TestWalletConnect(t *testing.T) {
	m, svc, _, _ := newTestModel(t, "0xfeed")
	svc.SetIdentity("")

	cmd := press(t, m, runes("w"))
	if cmd == nil {
		t.Fatal("expected a resolve command")
	}
	msg, ok := cmd().(events.IdentityMsg)
	if !ok || msg.Err != nil || msg.Identity != "0xa" {
		t.Fatalf("msg = %#v", msg)
	}
	press(t, m, msg)
	if got := svc.Mutations.Identity(); got != "0xa" {
		t.Fatalf("identity = %q", got)
	}
	if !strings.Contains(m.status, "connected") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestWalletConnectFailureKeepsIdentity(t *testing.T) {
	m, svc, _, _ := newTestModel(t, "0xfeed")
	press(t, m, events.IdentityMsg{Err: app.ErrNoIdentity})
	if got := svc.Mutations.Identity(); got != "0xa" {
		t.Fatalf("identity = %q", got)
	}
	if !strings.Contains(m.status, "no identity") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestDiscardedOutcomeIgnored(t *testing.T) {
	m, _, _, _ := newTestModel(t, "0xfeed")
	press(t, m, runes("n"))
	press(t, m, events.MutationResultMsg{
		Kind:    mutate.KindCreate,
		Outcome: mutate.Outcome{Status: mutate.StatusFailed, Err: mutate.ErrDiscarded},
	})
	if m.mode != modeCreate || m.inputErr != nil {
		t.Fatalf("mode = %v, inputErr = %v", m.mode, m.inputErr)
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel(t, "0xfeed")
	cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

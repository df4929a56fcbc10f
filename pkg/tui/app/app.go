// Package teaui hosts the Bubble Tea program for the fridge board.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/mutate"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/reconcile"
	"tableflip.dev/fridge/pkg/tui/events"
	"tableflip.dev/fridge/pkg/tui/theme"
)

// LogFileEnv names the file Bubble Tea debug logs go to.
const LogFileEnv = "FRIDGE_LOG_FILE"

type mode int

const (
	modeNormal mode = iota
	modeCreate
	modeEdit
	modeOwner
)

// Model contains UI state. Note data always comes from the latest cache
// snapshot; the draft and edit buffers live in the mutation coordinator.
type Model struct {
	svc   *app.Service
	ctx   context.Context
	theme theme.Theme
	keys  keyMap
	help  help.Model
	debug bool

	mode       mode
	snap       reconcile.Snapshot
	selected   int
	selectedID string

	input    textarea.Model
	owner    textinput.Model
	inputErr error
	status   string

	width  int
	height int
}

// New builds the board for svc. The caller is expected to run svc.
func New(ctx context.Context, svc *app.Service) *Model {
	ta := textarea.New()
	ta.Placeholder = "Write a note..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 280
	ta.SetWidth(40)
	ta.SetHeight(4)

	ti := textinput.New()
	ti.Placeholder = "0x... (empty disconnects)"
	ti.CharLimit = 66

	m := &Model{
		svc:   svc,
		ctx:   ctx,
		theme: theme.Default(),
		keys:  defaultKeys(),
		help:  help.New(),
		input: ta,
		owner: ti,
	}
	if svc != nil {
		m.snap = svc.Cache.Current()
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	return events.WaitForSnapshot(m.ctx, m.svc.Cache.Updates())
}

func (m *Model) logf(format string, args ...any) {
	if m.debug {
		log.Printf(format, args...)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w := msg.Width - 6
		if w > 60 {
			w = 60
		}
		if w > 10 {
			m.input.SetWidth(w)
			m.owner.Width = w
		}
		return m, nil

	case events.SnapshotMsg:
		m.logf("snapshot %s", msg.Describe())
		m.applySnapshot(msg.Snapshot)
		return m, events.WaitForSnapshot(m.ctx, m.svc.Cache.Updates())

	case events.UpdatesClosedMsg:
		return m, nil

	case events.MutationResultMsg:
		m.logf("mutation %s", msg.Describe())
		m.applyMutation(msg)
		return m, nil

	case events.IdentityMsg:
		m.logf("identity %s", msg.Describe())
		m.applyIdentity(msg)
		return m, nil

	case events.ColorSetMsg:
		m.logf("color %s", msg.Describe())
		m.status = fmt.Sprintf("%s is now %s", shortID(msg.ID), msg.Color.Name())
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case modeCreate:
		m.input, cmd = m.input.Update(msg)
		m.svc.Mutations.SetDraft(m.input.Value())
	case modeEdit:
		m.input, cmd = m.input.Update(msg)
		m.svc.Mutations.SetEditContent(m.input.Value())
	case modeOwner:
		m.owner, cmd = m.owner.Update(msg)
	}
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeCreate, modeEdit:
		return m.handleInputKey(msg)
	case modeOwner:
		return m.handleOwnerKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-m.perRow())
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(m.perRow())
	case key.Matches(msg, m.keys.New):
		return m.enterCreate()
	case key.Matches(msg, m.keys.Edit):
		return m.enterEdit()
	case key.Matches(msg, m.keys.Colors):
		return m.setColor(msg.String())
	case key.Matches(msg, m.keys.Owner):
		return m.enterOwner()
	case key.Matches(msg, m.keys.Wallet):
		return m.connectWallet()
	case key.Matches(msg, m.keys.Refresh):
		if id := m.snap.Identity; id != "" {
			m.svc.Cache.Invalidate(id)
			m.status = "refreshing..."
		}
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeEdit {
			m.svc.Mutations.CancelEdit()
		}
		m.leaveInput()
		return nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m.updateInputs(msg)
}

func (m *Model) handleOwnerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.owner.Blur()
		m.mode = modeNormal
		return nil
	case tea.KeyEnter:
		identity := strings.TrimSpace(m.owner.Value())
		m.owner.Blur()
		m.mode = modeNormal
		m.svc.SetIdentity(identity)
		if identity == "" {
			m.status = "disconnected"
		} else {
			m.status = "switched to " + shortID(identity)
		}
		return nil
	}
	return m.updateInputs(msg)
}

func (m *Model) enterCreate() tea.Cmd {
	if m.snap.Identity == "" {
		m.status = app.ErrNoIdentity.Error()
		return nil
	}
	m.mode = modeCreate
	m.inputErr = nil
	m.input.SetValue(m.svc.Mutations.Draft())
	return m.input.Focus()
}

func (m *Model) enterEdit() tea.Cmd {
	v, ok := m.current()
	if !ok {
		return nil
	}
	m.mode = modeEdit
	m.inputErr = nil
	m.svc.Mutations.BeginEdit(v.ID, v.Content)
	m.input.SetValue(v.Content)
	return m.input.Focus()
}

func (m *Model) enterOwner() tea.Cmd {
	m.mode = modeOwner
	m.owner.SetValue(m.snap.Identity)
	m.owner.CursorEnd()
	return m.owner.Focus()
}

// connectWallet resolves the configured owner or the CLI's active address off
// the UI goroutine.
func (m *Model) connectWallet() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	m.status = "connecting..."
	return func() tea.Msg {
		identity, err := svc.ResolveIdentity(ctx, "")
		return events.IdentityMsg{Identity: identity, Err: err}
	}
}

func (m *Model) applyIdentity(msg events.IdentityMsg) {
	if msg.Err != nil {
		m.status = msg.Err.Error()
		return
	}
	m.svc.SetIdentity(msg.Identity)
	m.status = "connected as " + shortID(msg.Identity)
}

func (m *Model) leaveInput() {
	m.input.Blur()
	m.input.Reset()
	m.inputErr = nil
	m.mode = modeNormal
}

func (m *Model) submit() tea.Cmd {
	ctx := m.ctx
	content := m.input.Value()
	coord := m.svc.Mutations
	switch m.mode {
	case modeCreate:
		coord.SetDraft(content)
		return events.MutationCmd(mutate.KindCreate, "", func() mutate.Outcome {
			return coord.Create(ctx, content)
		})
	case modeEdit:
		ed, ok := coord.Editing()
		if !ok {
			m.leaveInput()
			return nil
		}
		coord.SetEditContent(content)
		return events.MutationCmd(mutate.KindUpdate, ed.ID, func() mutate.Outcome {
			return coord.Update(ctx, ed.ID, content)
		})
	}
	return nil
}

func (m *Model) applyMutation(msg events.MutationResultMsg) {
	out := msg.Outcome
	if out.Discarded() {
		return
	}
	if out.Intent.ID != "" {
		m.svc.Mutations.Acknowledge(out.Intent.ID)
	}

	inModal := (msg.Kind == mutate.KindCreate && m.mode == modeCreate) ||
		(msg.Kind == mutate.KindUpdate && m.mode == modeEdit)

	if out.Succeeded() {
		if inModal {
			m.leaveInput()
		}
		if msg.Kind == mutate.KindCreate {
			m.status = "note pinned"
		} else {
			m.status = "note updated"
		}
		return
	}

	if inModal {
		m.inputErr = out.Err
		return
	}
	m.status = out.Reason
}

func (m *Model) setColor(k string) tea.Cmd {
	v, ok := m.current()
	if !ok {
		return nil
	}
	idx := int(k[0] - '1')
	if idx < 0 || idx >= len(note.Palette) {
		return nil
	}
	c := note.Palette[idx]
	svc := m.svc
	return func() tea.Msg {
		svc.SetColor(v.ID, c)
		return events.ColorSetMsg{ID: v.ID, Color: c}
	}
}

func (m *Model) applySnapshot(snap reconcile.Snapshot) {
	if snap.Identity != m.snap.Identity {
		m.selectedID = ""
		m.selected = 0
	}
	m.snap = snap
	if m.selectedID != "" {
		for i, v := range snap.Notes {
			if v.ID == m.selectedID {
				m.selected = i
				return
			}
		}
	}
	m.clampSelection()
}

func (m *Model) current() (note.View, bool) {
	if m.selected < 0 || m.selected >= len(m.snap.Notes) {
		return note.View{}, false
	}
	return m.snap.Notes[m.selected], true
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.snap.Notes)
	switch {
	case n == 0:
		m.selected = 0
		m.selectedID = ""
		return
	case m.selected >= n:
		m.selected = n - 1
	case m.selected < 0:
		m.selected = 0
	}
	m.selectedID = m.snap.Notes[m.selected].ID
}

func (m *Model) perRow() int {
	if m.width <= 0 {
		return 3
	}
	n := m.width / theme.CardWidth
	if n < 1 {
		return 1
	}
	return n
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:6] + "…" + id[len(id)-4:]
}

// Run starts the board and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc *app.Service) error {
	m := New(ctx, svc)
	if path := os.Getenv(LogFileEnv); path != "" {
		f, err := tea.LogToFile(path, "fridge")
		if err != nil {
			return err
		}
		defer f.Close()
		m.debug = true
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

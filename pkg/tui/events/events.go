// Package events defines the Bubble Tea messages exchanged between the board
// and the background service.
package events

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/fridge/pkg/mutate"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/reconcile"
)

// SnapshotMsg carries a snapshot published by the cache.
type SnapshotMsg struct {
	Snapshot reconcile.Snapshot
}

// Describe renders the snapshot in a human-friendly format for logs.
func (m SnapshotMsg) Describe() string {
	return fmt.Sprintf(`identity:%q status:%q notes:%d rev:%d`, m.Snapshot.Identity, m.Snapshot.Status, len(m.Snapshot.Notes), m.Snapshot.Revision)
}

// UpdatesClosedMsg is returned when the snapshot subscription ends.
type UpdatesClosedMsg struct{}

// MutationResultMsg carries the outcome of a create or update.
type MutationResultMsg struct {
	Kind     mutate.Kind
	TargetID string
	Outcome  mutate.Outcome
}

// Describe implements the logging helper.
func (m MutationResultMsg) Describe() string {
	return fmt.Sprintf(`kind:%q target:%q status:%q reason:%q`, m.Kind, m.TargetID, m.Outcome.Status, m.Outcome.Reason)
}

// ColorSetMsg announces a local color choice.
type ColorSetMsg struct {
	ID    string
	Color note.Color
}

// Describe implements the logging helper.
func (m ColorSetMsg) Describe() string {
	return fmt.Sprintf(`id:%q color:%q`, m.ID, m.Color.Name())
}

// IdentityMsg reports the identity resolved at startup or chosen by the user.
type IdentityMsg struct {
	Identity string
	Err      error
}

// Describe implements the logging helper.
func (m IdentityMsg) Describe() string {
	return fmt.Sprintf(`identity:%q err:%v`, m.Identity, m.Err)
}

// WaitForSnapshot blocks for the next snapshot on ch.
func WaitForSnapshot(ctx context.Context, ch <-chan reconcile.Snapshot) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap, ok := <-ch:
			if !ok {
				return UpdatesClosedMsg{}
			}
			return SnapshotMsg{Snapshot: snap}
		case <-ctx.Done():
			return UpdatesClosedMsg{}
		}
	}
}

// MutationCmd runs fn off the UI goroutine and reports its outcome.
func MutationCmd(kind mutate.Kind, target string, fn func() mutate.Outcome) tea.Cmd {
	return func() tea.Msg {
		return MutationResultMsg{Kind: kind, TargetID: target, Outcome: fn()}
	}
}

package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/fridge/pkg/mutate"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/reconcile"
	"tableflip.dev/fridge/pkg/tui/theme"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	if banners := m.bannerView(); banners != "" {
		b.WriteString(banners)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.bodyView())
	b.WriteString("\n")

	switch m.mode {
	case modeCreate, modeEdit, modeOwner:
		b.WriteString(m.modalView())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.theme.Footer.Status.Render(m.status))
		b.WriteString("\n")
	}
	if m.mode == modeNormal {
		b.WriteString(m.theme.Footer.Help.Render(m.help.View(m.keys)))
	} else {
		b.WriteString(m.theme.Footer.Help.Render(m.help.View(inputKeys{Submit: m.keys.Submit, Cancel: m.keys.Cancel})))
	}
	return b.String()
}

func (m *Model) headerView() string {
	h := m.theme.Header
	parts := []string{h.Title.Render("fridge")}
	if m.snap.Identity != "" {
		parts = append(parts, h.Identity.Render(shortID(m.snap.Identity)))
	}
	if m.svc != nil && m.svc.Config != nil {
		parts = append(parts, h.Chain.Render(m.svc.Config.Chain))
	}
	if m.snap.Fetching {
		parts = append(parts, h.Chain.Render("syncing"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) bannerView() string {
	var lines []string
	if m.svc != nil {
		for _, w := range m.svc.Warnings() {
			lines = append(lines, m.theme.Banner.Warning.Render("! "+w.Error()))
		}
	}
	if m.snap.Status == reconcile.StatusError && m.snap.Err != nil {
		msg := "✗ could not load notes: " + m.snap.Err.Error()
		if m.snap.Stale() {
			msg += " (showing last known notes)"
		}
		lines = append(lines, m.theme.Banner.Error.Render(msg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) bodyView() string {
	info := m.theme.Banner.Info
	switch m.snap.Status {
	case reconcile.StatusIdle:
		return info.Render("Connect your wallet: press w to use the sui CLI's active address, or o to enter an owner address.")
	case reconcile.StatusLoading:
		return info.Render("Loading notes...")
	}
	if len(m.snap.Notes) == 0 {
		if m.snap.Status == reconcile.StatusReady {
			return info.Render("No notes yet. Press n to pin one.")
		}
		return ""
	}
	return m.boardView()
}

func (m *Model) boardView() string {
	perRow := m.perRow()
	pendingUpdate := ""
	if m.svc != nil {
		for _, in := range m.svc.Mutations.Intents() {
			if in.Kind == mutate.KindUpdate && in.Status == mutate.StatusPending {
				pendingUpdate = in.TargetID
			}
		}
	}

	var rows []string
	var row []string
	for i, v := range m.snap.Notes {
		row = append(row, m.cardView(v, i == m.selected, v.ID == pendingUpdate))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) cardView(v note.View, selected, saving bool) string {
	text := v.Text()
	if saving {
		text += "\n\n(saving…)"
	}
	return m.theme.NoteCard(v.Color, selected).
		MarginTop(theme.Tilt(v.Rotation)).
		Render(text)
}

func (m *Model) modalView() string {
	md := m.theme.Modal
	var title, body string
	switch m.mode {
	case modeCreate:
		title = "New note"
		if m.svc.Mutations.Pending(mutate.KindCreate) {
			title += " (saving…)"
		}
		body = m.input.View()
	case modeEdit:
		ed, _ := m.svc.Mutations.Editing()
		title = fmt.Sprintf("Edit %s", shortID(ed.ID))
		if m.svc.Mutations.Pending(mutate.KindUpdate) {
			title += " (saving…)"
		}
		body = m.input.View()
	case modeOwner:
		title = "Owner address"
		body = m.owner.View()
	}

	parts := []string{md.Title.Render(title), body}
	if m.inputErr != nil {
		parts = append(parts, md.Error.Render(m.inputErr.Error()))
	}
	return md.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

package theme

import (
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/fridge/pkg/note"
)

// CardWidth is the outer width of a note card, borders included.
const CardWidth = 26

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Footer FooterTheme
	Banner BannerTheme
	Card   CardTheme
	Modal  ModalTheme
}

// HeaderTheme styles the top line.
type HeaderTheme struct {
	Title    lipgloss.Style
	Identity lipgloss.Style
	Chain    lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
}

// BannerTheme styles persistent problems shown above the board.
type BannerTheme struct {
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// CardTheme styles a single note.
type CardTheme struct {
	Base     lipgloss.Style
	Selected lipgloss.Style
}

// ModalTheme styles the create/edit/owner input panel.
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Error lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	card := lipgloss.NewStyle().
		Width(CardWidth-2).
		Padding(1, 1).
		Border(lipgloss.HiddenBorder())

	return Theme{
		Header: HeaderTheme{
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			Identity: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Chain:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		},
		Banner: BannerTheme{
			Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
		Card: CardTheme{
			Base:     card,
			Selected: card.Copy().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("255")),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true),
			Error: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// NoteCard returns the card style painted in c, with text dark or light
// enough to stay readable.
func (t Theme) NoteCard(c note.Color, selected bool) lipgloss.Style {
	base := t.Card.Base
	if selected {
		base = t.Card.Selected
	}
	fg := lipgloss.Color("#ffffff")
	if !c.Dark() {
		fg = lipgloss.Color("#212121")
	}
	return base.Copy().
		Background(lipgloss.Color(string(c))).
		Foreground(fg)
}

// Tilt converts a rotation in [-4, 3] into a top margin so neighbouring
// cards sit at slightly different heights.
func Tilt(rotation int) int {
	return (rotation + 4) / 3
}

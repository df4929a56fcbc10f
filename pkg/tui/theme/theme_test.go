package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/fridge/pkg/note"
)

func TestTiltRange(t *testing.T) {
	for r := -4; r <= 3; r++ {
		got := Tilt(r)
		if got < 0 || got > 2 {
			t.Errorf("Tilt(%d) = %d, want [0, 2]", r, got)
		}
	}
}

func TestNoteCardBackground(t *testing.T) {
	th := Default()
	for _, c := range note.Palette {
		st := th.NoteCard(c, false)
		if _, none := st.GetBackground().(lipgloss.NoColor); none {
			t.Errorf("%s: no background", c)
		}
	}
	if th.NoteCard(note.Yellow, true).GetBorderStyle() != lipgloss.ThickBorder() {
		t.Error("selected card is not highlighted")
	}
}

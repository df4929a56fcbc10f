package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/fridge/pkg/note"
)

// DefaultWidth is the wrap width for note text when none is set.
const DefaultWidth = 60

type PrettyPrint struct {
	ShowID bool
	Width  int
	Out    io.Writer
}

var (
	// Object ids are 0x followed by 64 hex digits.
	spacing = strings.Repeat(" ", len("0x")+64+2)
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return DefaultWidth
	}
	return pp.Width
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " note")
	default:
		_, _ = c.Fprintln(pp.out(), " notes")
	}
}

// Swatch returns the terminal color closest to a palette color.
func Swatch(c note.Color) *color.Color {
	switch c {
	case note.Yellow:
		return color.New(color.FgHiYellow)
	case note.Pink:
		return color.New(color.FgHiMagenta)
	case note.Green:
		return color.New(color.FgGreen)
	case note.Blue:
		return color.New(color.FgHiBlue)
	default:
		return color.New(color.Faint)
	}
}

// Notes prints one block per note: a colored marker, the optional id, and
// the wrapped text.
func (pp *PrettyPrint) Notes(views ...note.View) {
	w := pp.out()
	if len(views) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(w, " no notes yet, add one with `fridge add`\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint, color.Italic)
	for _, v := range views {
		marker := Swatch(v.Color)
		_, _ = marker.Fprint(w, "■ ")
		pad := "  "
		if pp.ShowID {
			_, _ = y.Fprint(w, v.ID)
			gap := len(spacing) - len(v.ID)
			if gap < 2 {
				gap = 2
			}
			_, _ = fmt.Fprint(w, strings.Repeat(" ", gap))
			pad += strings.Repeat(" ", len(v.ID)+gap)
		}

		text := wordwrap.String(v.Text(), pp.width())
		lines := strings.SplitN(text, "\n", 2)
		if v.Content == "" {
			_, _ = faint.Fprintln(w, lines[0])
		} else {
			_, _ = fmt.Fprintln(w, lines[0])
		}
		if len(lines) > 1 {
			_, _ = fmt.Fprintln(w, indent.String(lines[1], uint(len(pad))))
		}
	}
	_, _ = fmt.Fprintln(w, "")
}

// Warning prints a non-fatal problem.
func (pp *PrettyPrint) Warning(err error) {
	if err == nil {
		return
	}
	r := color.New(color.FgYellow)
	_, _ = r.Fprintf(pp.out(), "! %v\n", err)
}

// Error prints a failure banner.
func (pp *PrettyPrint) Error(err error) {
	if err == nil {
		return
	}
	r := color.New(color.FgRed, color.Bold)
	_, _ = r.Fprintf(pp.out(), "✗ %v\n", err)
}

// Success prints a confirmation line.
func (pp *PrettyPrint) Success(format string, args ...any) {
	g := color.New(color.FgGreen)
	_, _ = g.Fprintf(pp.out(), "✓ "+format+"\n", args...)
}

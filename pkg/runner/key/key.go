// Package key prints the note color legend.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/printers"
)

// Key prints the palette, in fallback order.
type Key struct {
	Out io.Writer
}

// Do renders the palette table.
func (k *Key) Do(_ context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("  #"), bold.Sprint("Color"), bold.Sprint("Hex"))
	for i, c := range note.Palette {
		tbl.AddRow(fmt.Sprintf("%d", i+1), printers.Swatch(c).Sprint("■ ")+c.Name(), string(c))
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out, "")
	return nil
}

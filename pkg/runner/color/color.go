package color

import (
	"context"
	"errors"
	"fmt"
	"io"

	fcolor "github.com/fatih/color"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/printers"
)

// Color stores a local color choice for a note.
type Color struct {
	Service *app.Service
	ID      string
	Color   string
	Out     io.Writer
}

func (n *Color) Do(_ context.Context) error {
	if n.Service == nil {
		return errors.New("can not color, no service")
	}
	if n.ID == "" {
		return errors.New("color: note id required")
	}
	c, err := note.ParseColor(n.Color)
	if err != nil {
		return err
	}
	out := n.Out
	if out == nil {
		out = fcolor.Output
	}

	n.Service.SetColor(n.ID, c)

	sw := printers.Swatch(c)
	_, _ = sw.Fprint(out, "■ ")
	_, _ = fmt.Fprintf(out, "%s is now %s\n", n.ID, c.Name())
	return nil
}

package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/printers"
)

// List prints the notes owned by an identity.
type List struct {
	Service *app.Service
	Owner   string
	ShowID  bool
	JSON    bool
	Width   int
	Out     io.Writer
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not list, no service")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Width: n.Width, Out: out}

	owner, err := n.Service.ResolveIdentity(ctx, n.Owner)
	if err != nil {
		return err
	}
	if !n.JSON {
		for _, w := range n.Service.Warnings() {
			pp.Warning(w)
		}
	}

	views, err := n.Service.List(ctx, owner)
	if err != nil {
		return err
	}

	if n.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	_, _ = fmt.Fprintln(out, "")
	pp.TitleWithCount(owner, len(views))
	pp.Notes(views...)
	return nil
}

package edit

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/printers"
)

// Edit replaces the content of an existing note.
type Edit struct {
	Service *app.Service
	Owner   string
	ID      string
	Message []string
	Out     io.Writer
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if n.ID == "" {
		return errors.New("edit: note id required")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	pp := printers.PrettyPrint{Out: out}

	owner, err := n.Service.ResolveIdentity(ctx, n.Owner)
	if err != nil {
		return err
	}
	n.Service.SetIdentity(owner)

	m := n.Service.Mutations
	m.BeginEdit(n.ID, "")
	m.SetEditContent(strings.Join(n.Message, " "))
	ed, _ := m.Editing()
	res := m.Update(ctx, ed.ID, ed.Content)
	if !res.Succeeded() {
		return res.Err
	}
	m.Acknowledge(res.Intent.ID)
	pp.Success("updated %s (tx %s)", n.ID, res.Intent.Digest)
	return nil
}

package add

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/printers"
)

// Add creates a note for the resolved identity.
type Add struct {
	Service *app.Service
	Owner   string
	Message []string
	Out     io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
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
	m.SetDraft(strings.Join(n.Message, " "))
	res := m.Create(ctx, m.Draft())
	if !res.Succeeded() {
		return res.Err
	}
	m.Acknowledge(res.Intent.ID)
	pp.Success("created note (tx %s)", res.Intent.Digest)
	return nil
}

package watch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/config"
	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/reconcile"
	"tableflip.dev/fridge/pkg/store"
)

type staticLedger struct {
	records []note.Record
}

func (l staticLedger) Fetch(context.Context, string) ([]note.Record, error) {
	return l.records, nil
}

func (staticLedger) ActiveAddress(context.Context) (string, error) {
	return "0xa", nil
}

func (staticLedger) SignAndExecute(context.Context, ledger.Transaction) (ledger.Receipt, error) {
	return ledger.Receipt{}, errors.New("read only")
}

func newService(t *testing.T, pkg string, l staticLedger) *app.Service {
	t.Helper()
	cfg := &config.Config{
		Package:  pkg,
		RPC:      config.DefaultRPC,
		Chain:    config.DefaultChain,
		Path:     t.TempDir(),
		Interval: time.Hour,
		Sui:      "sui",
	}
	svc, err := app.New(cfg, app.Options{Wallet: l, Fetcher: l, Overlay: store.NewMemory()})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestRenderStates(t *testing.T) {
	w := &Watch{Service: newService(t, "", staticLedger{})}

	tests := map[string]struct {
		snap reconcile.Snapshot
		want []string
	}{
		"idle": {
			snap: reconcile.Snapshot{Status: reconcile.StatusIdle},
			want: []string{"missing package id", "no identity"},
		},
		"loading": {
			snap: reconcile.Snapshot{Identity: "0xa", Status: reconcile.StatusLoading},
			want: []string{"loading notes for 0xa"},
		},
		"ready": {
			snap: reconcile.Snapshot{
				Identity:  "0xa",
				Status:    reconcile.StatusReady,
				Notes:     []note.View{{ID: "0x1", Content: "milk", Color: note.Yellow}},
				UpdatedAt: time.Now(),
			},
			want: []string{"0xa - 1 note", "milk", "updated"},
		},
		"error keeps notes": {
			snap: reconcile.Snapshot{
				Identity: "0xa",
				Status:   reconcile.StatusError,
				Notes:    []note.View{{ID: "0x1", Content: "milk", Color: note.Yellow}},
				Err:      errors.New("fullnode unreachable"),
			},
			want: []string{"fullnode unreachable", "milk"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w.render(&buf, tc.snap, false)
			for _, want := range tc.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRenderClearsScreen(t *testing.T) {
	w := &Watch{Service: newService(t, "0xfeed", staticLedger{})}
	var buf bytes.Buffer
	w.render(&buf, reconcile.Snapshot{Identity: "0xa", Status: reconcile.StatusLoading}, true)
	if !strings.HasPrefix(buf.String(), "\033[H\033[2J") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestDoRendersUntilCancelled(t *testing.T) {
	svc := newService(t, "0xfeed", staticLedger{records: []note.Record{{ID: "0x1", Content: "milk"}}})
	var buf safeBuffer
	off := false
	w := &Watch{Service: svc, Out: &buf, Clear: &off}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Do(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(buf.String(), "milk") {
		if time.Now().After(deadline) {
			t.Fatalf("never rendered notes:\n%s", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Do() = %v", err)
	}
}

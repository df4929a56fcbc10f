package main

import (
	"context"
	"testing"

	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/note"
)

func TestApplyHoldback(t *testing.T) {
	notes := sampleNotes()
	kept, held := applyHoldback(notes, 2)
	if len(kept) != len(notes)-2 || len(held) != 2 {
		t.Fatalf("kept %d held %d", len(kept), len(held))
	}
	kept, held = applyHoldback(notes, 100)
	if len(kept) != 0 || len(held) != len(notes) {
		t.Fatalf("kept %d held %d", len(kept), len(held))
	}
	if kept, held = applyHoldback(notes, 0); len(kept) != len(notes) || held != nil {
		t.Fatal("hold 0 changed the sample")
	}
}

func TestMemoryLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLedger(sampleOwner, nil, 0, 0)

	if _, err := l.SignAndExecute(ctx, ledger.CreateNote(samplePackage+"::notes_app::create_note", "hi", "sui:testnet")); err != nil {
		t.Fatal(err)
	}
	recs, _ := l.Fetch(ctx, sampleOwner)
	if len(recs) != 1 || recs[0].Content != "hi" {
		t.Fatalf("records = %+v", recs)
	}
	if _, err := l.SignAndExecute(ctx, ledger.UpdateNote(samplePackage+"::notes_app::update_note", recs[0].ID, "bye", "sui:testnet")); err != nil {
		t.Fatal(err)
	}
	recs, _ = l.Fetch(ctx, sampleOwner)
	if recs[0].Content != "bye" {
		t.Fatalf("records = %+v", recs)
	}
	if other, _ := l.Fetch(ctx, "0xother"); len(other) != 0 {
		t.Fatalf("other owner sees %+v", other)
	}

	l.pin(note.Record{ID: "0xz", Content: "pinned"})
	if recs, _ = l.Fetch(ctx, sampleOwner); len(recs) != 2 {
		t.Fatalf("records = %+v", recs)
	}
}

func TestMemoryLedgerFailEvery(t *testing.T) {
	l := newMemoryLedger(sampleOwner, sampleNotes(), 0, 2)
	if _, err := l.Fetch(context.Background(), sampleOwner); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := l.Fetch(context.Background(), sampleOwner); err == nil {
		t.Fatal("second fetch should fail")
	}
}

package main

import (
	"context"
	"time"

	"tableflip.dev/fridge/pkg/note"
)

// applyHoldback removes the last hold notes so feed can pin them later.
func applyHoldback(notes []note.Record, hold int) ([]note.Record, []note.Record) {
	if hold <= 0 {
		return notes, nil
	}
	if hold > len(notes) {
		hold = len(notes)
	}
	cut := len(notes) - hold
	return notes[:cut], notes[cut:]
}

// feed pins one held note per tick, as if another client created it.
func feed(ctx context.Context, l *memoryLedger, held []note.Record, every time.Duration) {
	if len(held) == 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for _, r := range held {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.pin(r)
		}
	}
}

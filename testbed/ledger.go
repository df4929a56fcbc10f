package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tableflip.dev/fridge/pkg/ledger"
	"tableflip.dev/fridge/pkg/note"
)

// memoryLedger fakes both the fullnode and the wallet.
type memoryLedger struct {
	owner     string
	latency   time.Duration
	failEvery int

	mu      sync.Mutex
	records []note.Record
	fetches int
	counter int
}

func newMemoryLedger(owner string, records []note.Record, latency time.Duration, failEvery int) *memoryLedger {
	return &memoryLedger{
		owner:     owner,
		latency:   latency,
		failEvery: failEvery,
		records:   append([]note.Record(nil), records...),
	}
}

func (l *memoryLedger) wait(ctx context.Context) error {
	if l.latency <= 0 {
		return nil
	}
	t := time.NewTimer(l.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *memoryLedger) Fetch(ctx context.Context, owner string) ([]note.Record, error) {
	if err := l.wait(ctx); err != nil {
		return nil, &ledger.QueryError{Owner: owner, Err: err}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetches++
	if l.failEvery > 0 && l.fetches%l.failEvery == 0 {
		return nil, &ledger.QueryError{Owner: owner, Err: errors.New("simulated fullnode timeout")}
	}
	if owner != l.owner {
		return nil, nil
	}
	return append([]note.Record(nil), l.records...), nil
}

func (l *memoryLedger) ActiveAddress(context.Context) (string, error) {
	return l.owner, nil
}

func (l *memoryLedger) SignAndExecute(ctx context.Context, tx ledger.Transaction) (ledger.Receipt, error) {
	if err := l.wait(ctx); err != nil {
		return ledger.Receipt{}, err
	}
	_, _, function, err := tx.Split()
	if err != nil {
		return ledger.Receipt{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.counter++
	switch function {
	case "create_note":
		l.records = append(l.records, note.Record{
			ID:      fmt.Sprintf("0xb%d", l.counter),
			Content: tx.Arguments[0].Value,
			Owner:   l.owner,
		})
	case "update_note":
		found := false
		for i := range l.records {
			if l.records[i].ID == tx.Arguments[0].Value {
				l.records[i].Content = tx.Arguments[1].Value
				found = true
			}
		}
		if !found {
			return ledger.Receipt{}, fmt.Errorf("object %s not found", tx.Arguments[0].Value)
		}
	default:
		return ledger.Receipt{}, fmt.Errorf("unknown function %s", function)
	}
	return ledger.Receipt{Digest: fmt.Sprintf("Tx%04d", l.counter), Status: "success"}, nil
}

func (l *memoryLedger) pin(r note.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r.Owner = l.owner
	l.records = append(l.records, r)
}

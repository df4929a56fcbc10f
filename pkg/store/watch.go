package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the overlay directory must be quiet before a Change is
// delivered.
const settle = 100 * time.Millisecond

// Change reports that overlay entries were written or removed, possibly by
// another process. All is set when a change could not be tied to a note id;
// IDs is then empty.
type Change struct {
	IDs []string
	All bool
}

// Watch delivers one Change per burst of writes to the overlay until ctx is
// cancelled. The channel is closed once ctx is done or the watcher fails.
func (o *DiskOverlay) Watch(ctx context.Context) (<-chan Change, error) {
	if o.basePath == "" {
		return nil, errors.New("store: overlay base path unknown")
	}
	dir := filepath.Join(o.basePath, KeyPrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure overlay directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", dir, err)
	}

	out := make(chan Change, 1)
	go o.watch(ctx, watcher, out)
	return out, nil
}

func (o *DiskOverlay) watch(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer func() {
		if err := watcher.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
		}
	}()

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var b batch
	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "store: watch: %v\n", err)
			b.all = true
			timer.Reset(settle)

		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			b.add(filepath.Base(evt.Name))
			timer.Reset(settle)

		case <-timer.C:
			if b.empty() {
				continue
			}
			// A reader that is behind still holds an undelivered Change, and
			// the next rebuild reads every entry anyway.
			select {
			case out <- b.flush():
			default:
				b = batch{}
			}
		}
	}
}

// batch accumulates the ids touched during one burst.
type batch struct {
	ids map[string]struct{}
	all bool
}

func (b *batch) add(name string) {
	if !validID(name) {
		b.all = true
		return
	}
	if b.ids == nil {
		b.ids = make(map[string]struct{})
	}
	b.ids[name] = struct{}{}
}

func (b *batch) empty() bool {
	return !b.all && len(b.ids) == 0
}

func (b *batch) flush() Change {
	c := Change{All: b.all}
	if !b.all {
		for id := range b.ids {
			c.IDs = append(c.IDs, id)
		}
		sort.Strings(c.IDs)
	}
	*b = batch{}
	return c
}

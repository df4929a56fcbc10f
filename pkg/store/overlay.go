package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/fridge/pkg/note"
)

// KeyPrefix namespaces overlay color entries.
const KeyPrefix = "note-color"

const keySeparator = ":"

// Config is the slice of configuration the overlay store needs.
type Config interface {
	BasePath() string
}

// Overlay is the local, device-only color mapping layered over ledger notes.
// Get never fails: an unreadable entry is reported as absent.
type Overlay interface {
	Get(id string) (note.Color, bool)
	Set(id string, c note.Color) error
	All(ctx context.Context) map[string]note.Color
}

// Key returns the store key for the given record id.
func Key(id string) string {
	return KeyPrefix + keySeparator + id
}

// Load creates an Overlay backed by diskv rooted at cfg.BasePath(). Reads are
// not cached since other processes may write the same directory.
func Load(cfg Config) (*DiskOverlay, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath, err := homedir.Expand(strings.TrimSpace(cfg.BasePath()))
	if err != nil {
		return nil, fmt.Errorf("store: expand base path: %w", err)
	}
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &DiskOverlay{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
	}), basePath: basePath}, nil
}

// DiskOverlay persists colors as one small file per note.
type DiskOverlay struct {
	d        *diskv.Diskv
	basePath string
}

var _ Overlay = (*DiskOverlay)(nil)

// BasePath is the directory holding the overlay entries.
func (o *DiskOverlay) BasePath() string {
	return o.basePath
}

func (o *DiskOverlay) Get(id string) (note.Color, bool) {
	if !validID(id) {
		return "", false
	}
	val, err := o.d.Read(Key(id))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "store: read %s: %v\n", Key(id), err)
		}
		return "", false
	}
	c := note.Color(strings.TrimSpace(string(val)))
	if c == "" {
		return "", false
	}
	return c, true
}

func (o *DiskOverlay) Set(id string, c note.Color) error {
	if !validID(id) {
		return fmt.Errorf("store: invalid note id %q", id)
	}
	if err := o.d.Write(Key(id), []byte(c)); err != nil {
		return fmt.Errorf("store: write %s: %w", Key(id), err)
	}
	return nil
}

// All returns every stored entry. Entries for notes that no longer exist are
// kept; nothing prunes them.
func (o *DiskOverlay) All(ctx context.Context) map[string]note.Color {
	all := make(map[string]note.Color)
	for key := range o.d.KeysPrefix(KeyPrefix+keySeparator, ctx.Done()) {
		id := strings.TrimPrefix(key, KeyPrefix+keySeparator)
		if c, ok := o.Get(id); ok {
			all[id] = c
		}
	}
	return all
}

func validID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+keySeparator)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, keySeparator, 2)
	if len(parts) == 1 {
		return &diskv.PathKey{FileName: parts[0]}
	}
	return &diskv.PathKey{
		Path:     []string{parts[0]},
		FileName: parts[1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + keySeparator + pathKey.FileName
}

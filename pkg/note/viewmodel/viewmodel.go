// Package viewmodel turns fetched note records into render-ready views.
package viewmodel

import (
	"strings"

	"tableflip.dev/fridge/pkg/note"
)

// Overlay is the read side of the local color store.
type Overlay interface {
	Get(id string) (note.Color, bool)
}

// Build merges records with their overlay colors and derived rotation. The
// output has the same length and order as records; position in records picks
// the fallback color for notes without an overlay entry. A nil overlay is
// treated as empty.
func Build(records []note.Record, overlay Overlay) []note.View {
	if len(records) == 0 {
		return []note.View{}
	}
	views := make([]note.View, len(records))
	for i, rec := range records {
		views[i] = note.View{
			ID:       rec.ID,
			Content:  rec.Content,
			Color:    resolveColor(overlay, rec.ID, i),
			Rotation: note.Rotation(rec.ID),
		}
	}
	return views
}

func resolveColor(overlay Overlay, id string, index int) note.Color {
	if overlay == nil || strings.TrimSpace(id) == "" {
		return note.FallbackColor(index)
	}
	if c, ok := overlay.Get(id); ok && c.Valid() {
		return c
	}
	return note.FallbackColor(index)
}

// Equal reports whether two view lists would render identically.
func Equal(a, b []note.View) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of views that callers may modify.
func Clone(views []note.View) []note.View {
	if views == nil {
		return nil
	}
	return append([]note.View(nil), views...)
}

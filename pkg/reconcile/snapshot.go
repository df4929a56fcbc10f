package reconcile

import (
	"time"

	"tableflip.dev/fridge/pkg/note"
	"tableflip.dev/fridge/pkg/note/viewmodel"
)

// Status is the externally visible state of the cache for one identity.
type Status int

const (
	// StatusIdle means no identity is active; nothing is fetched.
	StatusIdle Status = iota
	// StatusLoading means the first fetch for the identity has not finished.
	StatusLoading
	// StatusReady means Notes reflect the latest successful fetch.
	StatusReady
	// StatusError means the latest fetch failed. Notes still hold the last
	// successful result, if there was one.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the cache. Callers must treat Notes as
// read-only.
type Snapshot struct {
	Identity string
	Status   Status
	Notes    []note.View
	Err      error

	// Fetching is true while a fetch is outstanding. Flipping it alone does
	// not publish a new snapshot.
	Fetching bool
	// Revision increases every time a changed snapshot is published.
	Revision  uint64
	UpdatedAt time.Time
}

// Stale reports whether the notes shown alongside an error come from an
// earlier successful fetch.
func (s Snapshot) Stale() bool {
	return s.Status == StatusError && len(s.Notes) > 0
}

func (s Snapshot) clone() Snapshot {
	s.Notes = viewmodel.Clone(s.Notes)
	return s
}

// sameRender reports whether a and b would render identically.
func sameRender(a, b Snapshot) bool {
	if a.Identity != b.Identity || a.Status != b.Status {
		return false
	}
	if errString(a.Err) != errString(b.Err) {
		return false
	}
	if (a.Notes == nil) != (b.Notes == nil) {
		return false
	}
	return viewmodel.Equal(a.Notes, b.Notes)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Package note holds the record and view types shared by the fetcher, the
// view-model builder, and the renderers.
package note

import "fmt"

// Record is a note object as the ledger returns it.
type Record struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Owner   string `json:"owner,omitempty"`
}

// View is a record merged with its presentation attributes. Views are derived
// on every reconciliation and never stored.
type View struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Color    Color  `json:"color"`
	Rotation int    `json:"rotation"`
}

// EmptyPlaceholder is rendered in place of blank note content.
const EmptyPlaceholder = "(empty note)"

// Text returns the content to display for v.
func (v View) Text() string {
	if v.Content == "" {
		return EmptyPlaceholder
	}
	return v.Content
}

func (v View) String() string {
	return fmt.Sprintf("%s [%s %+d°] %s", v.ID, v.Color.Name(), v.Rotation, v.Text())
}

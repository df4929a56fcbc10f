package main

import (
	"tableflip.dev/fridge/pkg/note"
)

const (
	samplePackage = "0x5a17e5"
	sampleOwner   = "0x0b1e55ed"
)

func sampleNotes() []note.Record {
	return []note.Record{
		{ID: "0xa1", Content: "buy oat milk"},
		{ID: "0xa2", Content: "call the plumber about the upstairs sink before friday"},
		{ID: "0xa3", Content: ""},
		{ID: "0xa4", Content: "dentist 3pm"},
		{ID: "0xa5", Content: "Write an extra long note about the storage refactor so we can verify wrapping works for text that exceeds the width of a card on the board"},
		{ID: "0xa6", Content: "water the plants"},
		{ID: "0xa7", Content: "🧀 cheese"},
	}
}

func sampleColors() map[string]note.Color {
	return map[string]note.Color{
		"0xa2": note.Blue,
		"0xa4": note.Pink,
		// Not a palette color; rendered with the fallback.
		"0xa6": note.Color("#000000"),
	}
}

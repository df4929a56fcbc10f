package note

import (
	"errors"
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a palette token. Tokens are stored verbatim in the overlay store.
type Color string

const (
	Yellow Color = "#ffeb3b"
	Pink   Color = "#e91e63"
	Green  Color = "#4caf50"
	Blue   Color = "#2196f3"
)

// Palette is the ordered set of note colors. Order matters: fallback colors
// are assigned by position.
var Palette = []Color{Yellow, Pink, Green, Blue}

var colorNames = map[Color]string{
	Yellow: "yellow",
	Pink:   "pink",
	Green:  "green",
	Blue:   "blue",
}

// ErrUnknownColor is returned by ParseColor for anything outside the palette.
var ErrUnknownColor = errors.New("note: unknown color")

// FallbackColor returns the palette color for the note at position index of a
// fetch result.
func FallbackColor(index int) Color {
	n := len(Palette)
	i := index % n
	if i < 0 {
		i += n
	}
	return Palette[i]
}

// Valid reports whether c is a palette member.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

// Name returns the human name of c, or the raw token when c is not in the
// palette.
func (c Color) Name() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return string(c)
}

// Dark reports whether text on top of c should be light. Tokens that do not
// parse as hex are treated as light backgrounds.
func (c Color) Dark() bool {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return false
	}
	l, _, _ := parsed.Lab()
	return l < 0.6
}

// ParseColor accepts a palette name ("pink") or hex token ("#E91E63") and
// returns the canonical token.
func ParseColor(s string) (Color, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownColor)
	}
	for c, name := range colorNames {
		if raw == name {
			return c, nil
		}
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	parsed, err := colorful.Hex(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	c := Color(parsed.Hex())
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return c, nil
}

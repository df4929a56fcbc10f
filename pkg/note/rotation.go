package note

import "unicode/utf16"

const (
	rotationModulus = 360
	rotationSteps   = 8
	rotationOffset  = 4
)

// Rotation returns the tilt, in degrees, of the note with the given id. The
// result is in [-4, 3] and depends on nothing but id.
func Rotation(id string) int {
	hash := 0
	for _, r := range id {
		hash = (hash + charCode(r)) % rotationModulus
	}
	return hash%rotationSteps - rotationOffset
}

// charCode is the first UTF-16 code unit of r.
func charCode(r rune) int {
	if r > 0xFFFF {
		hi, _ := utf16.EncodeRune(r)
		return int(hi)
	}
	return int(r)
}

package upload

import (
	"math/rand/v2"
)

// alphabetSize is the number of characters generated names draw from:
// 26 lowercase letters, 26 uppercase letters, and 10 digits.
const alphabetSize = 62

// NameFunc produces a random identifier of the given length. It exists so a
// store can swap the generator out in tests.
type NameFunc func(length int) string

// NewName returns a random identifier of exactly length characters, each
// drawn independently and uniformly from [a-z], [A-Z] and [0-9]. A length of
// zero yields the empty string.
func NewName(length int) string {
	return newName(length, rand.IntN)
}

func newName(length int, intn func(int) int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabetChar(intn(alphabetSize))
	}
	return string(b)
}

// alphabetChar maps a value in [0, 62) to its character: 0-25 are lowercase
// letters, 26-51 uppercase letters, 52-61 digits.
func alphabetChar(v int) byte {
	switch {
	case 0 <= v && v <= 25:
		return 'a' + byte(v)
	case 26 <= v && v <= 51:
		return 'A' + byte(v-26)
	case 52 <= v && v <= 61:
		return '0' + byte(v-52)
	}
	panic("upload: value out of range for name alphabet")
}

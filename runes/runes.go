// Package runes contains some generally useful operations on runes.
package runes

import (
	"unicode"
	"unicode/utf8"
)

// First returns the first rune of s. If the string is empty or not proper UTF-8, returns false.
func First(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size < 2 {
		return 0, false
	}
	return r, true
}

// IsSpace returns whether r separates tokens. Besides unicode whitespace, a NUL
// rune is also considered a separator.
func IsSpace(r rune) bool {
	return r == 0 || unicode.IsSpace(r)
}

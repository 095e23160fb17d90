package logic

import (
	"strings"
	"unicode"

	"github.com/brunokim/l0/runes"
)

// IsIdent returns whether ch may be part of an unquoted atom or var name.
func IsIdent(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isIdents(text string) bool {
	for _, ch := range text {
		if !IsIdent(ch) {
			return false
		}
	}
	return true
}

// IsVarFirst returns whether ch starts a var name.
func IsVarFirst(ch rune) bool {
	return ch == '_' || unicode.IsUpper(ch)
}

// IsVar returns whether text is a valid var name.
func IsVar(text string) bool {
	ch, ok := runes.First(text)
	if !ok || !IsVarFirst(ch) {
		return false
	}
	return isIdents(text)
}

// IsQuotedAtom returns whether an atom with this name must be quoted to be
// read back as an atom.
func IsQuotedAtom(text string) bool {
	ch, ok := runes.First(text)
	if !ok || IsVarFirst(ch) {
		return true
	}
	return !isIdents(text)
}

var escapeChars = map[rune]string{
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	'\'': `\'`,
	'\\': `\\`,
}

// FormatAtom returns the atom name, quoted and escaped if necessary.
func FormatAtom(text string) string {
	if !IsQuotedAtom(text) {
		return text
	}
	var b strings.Builder
	b.WriteRune('\'')
	for _, ch := range text {
		if exp, ok := escapeChars[ch]; ok {
			b.WriteString(exp)
		} else {
			b.WriteRune(ch)
		}
	}
	b.WriteRune('\'')
	return b.String()
}

package utils

import (
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r is a word character in the Unicode sense.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// WordBoundaryAt reports whether byte offset i of s sits on a word boundary,
// treating letters of every script as word characters. RE2 only knows ASCII
// boundaries, so Cyrillic text needs this check after matching.
func WordBoundaryAt(s string, i int) bool {
	prev, next := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		prev = IsWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		next = IsWordRune(r)
	}
	return prev != next
}

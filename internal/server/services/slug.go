package services

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and joins its words with "-". Characters other than
// letters, digits and "-" are dropped.
func Slugify(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace)
	for i, w := range words {
		words[i] = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
				return r
			}
			return -1
		}, w)
	}

	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, "-")
}

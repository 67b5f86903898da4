// Package id generates record identifiers.
package id

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// New returns a time-ordered identifier (UUID version 7).
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the system random source does.
		return uuid.NewString()
	}
	return u.String()
}

// ForName returns a time-ordered identifier suffixed with the slug of name,
// e.g. "0198...-jean-dupont". An empty slug yields a bare identifier.
func ForName(name string) string {
	base := New()
	if s := Slug(name); s != "" {
		return base + "-" + s
	}
	return base
}

// Slug folds accents, lowercases and joins alphanumeric runs with dashes:
// "Réguliers du Jeudi" becomes "reguliers-du-jeudi".
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

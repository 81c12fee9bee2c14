// internal/normalize/slug.go

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug makes a URL-safe identifier: lowercase, diacritics folded,
// other characters collapsed to single dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

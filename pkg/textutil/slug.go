package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lower-cases s, strips accents and joins word runs with single dashes.
// "Crème Brûlée  Set!" becomes "creme-brulee-set".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := nonSlug.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(out, "-")
}

func IsSlug(s string) bool {
	return slugRegex.MatchString(s)
}

package tags

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugStripRe matches everything that is not an ASCII word character,
	// whitespace, or a hyphen. Whitespace includes the Unicode separators
	// (no-break space, ideographic space, ...) and U+FEFF, not just ASCII.
	slugStripRe = regexp.MustCompile(`[^\w\s\v\p{Z}\x{FEFF}-]`)

	// slugSepRe matches a whitespace run together with any hyphens touching it.
	slugSepRe = regexp.MustCompile(`-*[\s\v\p{Z}\x{FEFF}][\s\v\p{Z}\x{FEFF}-]*`)
)

// combiningMarks covers U+0300..U+036F, the combining diacritical marks left
// behind by NFD decomposition.
var combiningMarks = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
})

// ToSlug derives a URL-safe slug from text: accents are stripped, the result
// is lowercased, anything but word characters, whitespace and hyphens is
// dropped, and whitespace runs become single hyphens. Hyphens at either end
// are trimmed so that ToSlug is idempotent on its own output.
func ToSlug(text string) string {
	if text == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	s, _, err := transform.String(t, text)
	if err != nil {
		// transform only fails on invalid input state; fall back to the raw text.
		s = text
	}

	s = strings.ToLower(s)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSepRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 50

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// dotless i and similar letters have no decomposition, so map them by hand.
var extraFolds = strings.NewReplacer("ı", "i", "ł", "l", "ø", "o", "ß", "ss", "đ", "d")

// Generate turns a display name into a lowercase ASCII slug suitable for file
// names and URLs. Accents are stripped, runs of other characters collapse to a
// single hyphen, and the result is capped at 50 bytes.
//
//	"Zoë  O'Brien" -> "zoe-o-brien"
func Generate(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		folded = strings.ToLower(name)
	}
	folded = extraFolds.Replace(folded)

	s := strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}

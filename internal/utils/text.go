package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reScript = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyle  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)

	stripPolicy = bluemonday.StripTagsPolicy()

	// Transformer chain to remove accents
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// SanitizeSnippet strips HTML tags, script/style content, and decodes
// entities so provider snippets render as plain text.
func SanitizeSnippet(s string) string {
	// Decode HTML entities first (e.g. &lt; -> <) so tags are recognized
	s = html.UnescapeString(s)

	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")

	s = stripPolicy.Sanitize(s)

	// bluemonday may re-escape entities; we want plain text
	s = html.UnescapeString(s)

	// Collapse extra whitespace
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForMatch lowercases and strips accents so substring matching
// is tolerant of case and diacritics.
func NormalizeForMatch(s string) string {
	s = strings.ToLower(s)
	if clean, _, err := transform.String(deaccent, s); err == nil {
		return clean
	}
	return s
}

// ToValidUTF8 cleans strings to ensure they are valid UTF-8
func ToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

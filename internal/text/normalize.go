package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invisiblePattern strips zero-width characters, bidi controls, and the
// general punctuation format range so visually identical spam hashes to
// the same dedup key.
var invisiblePattern = regexp.MustCompile("[\\x{200b}-\\x{200f}\\x{202a}-\\x{202e}\\x{2060}-\\x{206f}\\x{feff}]")

// Normalize prepares text for content comparison: invisible characters
// removed, NFKC-normalized, trimmed, and lowercased.
func Normalize(text string) string {
	text = invisiblePattern.ReplaceAllString(text, "")
	text = norm.NFKC.String(text)
	return strings.ToLower(strings.TrimSpace(text))
}

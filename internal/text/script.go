package text

import "unicode"

// nonLatinScripts are the script tables checked when classifying runes.
// The stdlib unicode tables cover the same ranges the hand-maintained
// fallback lists in older filters did.
var nonLatinScripts = []*unicode.RangeTable{
	unicode.Cyrillic,
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Devanagari,
	unicode.Thai,
	unicode.Greek,
}

// HasNonEnglishText reports whether the share of non-Latin-script
// characters in text is at or above threshold. Whitespace, digits,
// punctuation, and symbols are stripped before classification; a text
// with nothing left after stripping is never flagged.
func HasNonEnglishText(text string, threshold float64) bool {
	total := 0
	nonLatin := 0

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		total++
		if unicode.In(r, nonLatinScripts...) && !unicode.Is(unicode.Latin, r) {
			nonLatin++
		}
	}

	if total == 0 {
		return false
	}
	return float64(nonLatin)/float64(total) >= threshold
}

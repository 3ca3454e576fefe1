// Package text provides pure text analysis helpers used by the spam
// scoring rules: URL extraction, TLD lookup, invite-link and shortener
// detection, unicode anomaly checks, and content normalization.
package text

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
)

// urlPattern is intentionally over-inclusive: it matches http(s) URLs,
// www-prefixed hosts, and bare domain.tld tokens. Downstream rules must
// tolerate false-positive fragments.
var urlPattern = regexp.MustCompile(`(?i)(?:(?:https?://)|(?:www\.)|(?:[a-zA-Z0-9-]+\.[a-zA-Z]{2,}))(?:[^\s<>"')]+)?`)

var invitePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)t\.me/joinchat/`),
	regexp.MustCompile(`(?i)t\.me/\+`),
	regexp.MustCompile(`(?i)telegram\.me/joinchat/`),
	regexp.MustCompile(`(?i)telegram\.me/\+`),
}

var shortenerDomains = map[string]struct{}{
	"bit.ly":      {},
	"t.co":        {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"adf.ly":      {},
}

// MessageText combines a message's text and caption into a single string.
// Empty parts are skipped so no caption content is lost and no stray
// separators are introduced.
func MessageText(text, caption string) string {
	switch {
	case text == "":
		return caption
	case caption == "":
		return text
	default:
		return text + " " + caption
	}
}

// ExtractURLs returns all URL-like substrings found in text, in order of
// appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// ExtractTLD returns the public suffix of the URL's host, lowercased.
// It returns an empty string whenever the URL cannot be parsed; TLD
// extraction never fails.
func ExtractTLD(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(host)
	return strings.ToLower(suffix)
}

// HasInviteLink reports whether text contains a Telegram group invite
// link pattern.
func HasInviteLink(text string) bool {
	for _, p := range invitePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// HasURLShortener reports whether any of the URLs uses a known link
// shortener service. Matching is exact against the host, ignoring the
// scheme and a leading "www." prefix.
func HasURLShortener(urls []string) bool {
	for _, u := range urls {
		host := strings.TrimPrefix(hostOf(u), "www.")
		if _, ok := shortenerDomains[host]; ok {
			return true
		}
	}
	return false
}

// hostOf extracts the lowercased host (without port) from a URL-like
// token, prepending a scheme when missing. Returns "" when unparseable.
func hostOf(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// Zero-width and invisible code points commonly used to evade keyword
// filters.
var zeroWidthRunes = map[rune]struct{}{
	'\u200b': {}, // ZERO WIDTH SPACE
	'\u200c': {}, // ZERO WIDTH NON-JOINER
	'\u200d': {}, // ZERO WIDTH JOINER
	'\u2060': {}, // WORD JOINER
	'\ufeff': {}, // ZERO WIDTH NO-BREAK SPACE
}

// HasUnicodeTricks reports whether text shows signs of unicode-based
// obfuscation: zero-width characters, an excessive share of combining
// marks (>10%), or right-to-left override characters.
func HasUnicodeTricks(text string) bool {
	runes := []rune(text)

	combining := 0
	for _, r := range runes {
		if _, ok := zeroWidthRunes[r]; ok {
			return true
		}
		if r == '\u202e' || r == '\u202d' {
			return true
		}
		if unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me) {
			combining++
		}
	}

	return len(runes) > 0 && combining*10 > len(runes)
}

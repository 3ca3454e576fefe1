package rules

import (
	"fmt"
	"strings"

	"github.com/castellanbot/castellan/internal/text"
)

// Score is the result of evaluating a single message. It is a value
// object: created once per message and never mutated afterwards.
type Score struct {
	Total        int
	Reasons      []string
	ShouldWarn   bool
	ShouldDelete bool
}

func (s Score) String() string {
	return fmt.Sprintf("score %d | %s", s.Total, strings.Join(s.Reasons, ", "))
}

// Evaluate computes the spam score for msg. Rules run in a fixed order
// and are additive; each triggered rule appends one reason carrying its
// point contribution. Evaluate is a pure function of its arguments and
// safe for concurrent use.
func Evaluate(msg string, strictMode bool, cfg *Config) Score {
	total := 0
	var reasons []string

	urls := text.ExtractURLs(msg)

	// Rule 1: two or more links.
	if linkCount := len(urls); linkCount >= 2 {
		points := min(linkCount, 4)
		total += points
		reasons = append(reasons, fmt.Sprintf("%d links (+%d)", linkCount, points))
	}

	// Rule 2: suspicious TLDs, +2 each capped at +6.
	tldHits := 0
	for _, u := range urls {
		if _, ok := cfg.SuspiciousTLDs[text.ExtractTLD(u)]; ok {
			tldHits++
		}
	}
	if tldHits > 0 {
		points := min(tldHits*2, 6)
		total += points
		reasons = append(reasons, fmt.Sprintf("Suspicious TLD (%d) (+%d)", tldHits, points))
	}

	// Rule 3: URL shortener, flat bonus regardless of occurrences.
	if text.HasURLShortener(urls) {
		total += 3
		reasons = append(reasons, "URL shortener (+3)")
	}

	// Rule 4: Telegram invite links.
	if text.HasInviteLink(msg) {
		total += 4
		reasons = append(reasons, "Telegram invite (+4)")
	}

	// Rule 5: spam keywords, first match short-circuits.
	if matchesKeyword(msg, cfg) {
		total += 5
		reasons = append(reasons, "Spam keywords (+5)")
	}

	// Rule 6: unicode obfuscation.
	if text.HasUnicodeTricks(msg) {
		total += 3
		reasons = append(reasons, "Unicode tricks (+3)")
	}

	// Rule 7: non-English dominant script.
	if cfg.CheckNonEnglish && text.HasNonEnglishText(msg, cfg.NonEnglishThreshold) {
		total += 6
		reasons = append(reasons, "Non-English text (+6)")
	}

	// Strict mode adds a flat +1 but never turns a zero score positive.
	if strictMode && total > 0 {
		total++
		reasons = append(reasons, "Strict mode (+1)")
	}

	return Score{
		Total:        total,
		Reasons:      reasons,
		ShouldWarn:   total >= cfg.WarnThreshold,
		ShouldDelete: total >= cfg.DeleteThreshold,
	}
}

func matchesKeyword(msg string, cfg *Config) bool {
	lower := strings.ToLower(msg)
	for _, re := range cfg.Keywords {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

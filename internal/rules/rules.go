// Package rules implements the heuristic spam scoring engine and its
// tunable rule configuration.
package rules

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/spf13/viper"
)

// Default thresholds.
const (
	DefaultWarnThreshold       = 4
	DefaultDeleteThreshold     = 8
	DefaultNonEnglishThreshold = 0.3
)

// defaultSuspiciousTLDs are top-level domains commonly associated with
// spam campaigns.
var defaultSuspiciousTLDs = []string{
	"ru", "icu", "xyz", "top", "monster", "tk", "ml", "ga", "cf", "gq",
	"work", "click", "link", "loan", "win", "bid",
}

// defaultKeywordPatterns are matched case-insensitively against message
// text. Entries are regular expressions; plain phrases work as-is.
var defaultKeywordPatterns = []string{
	// Crypto spam
	"free crypto",
	"airdrop",
	"giveaway",
	"claim now",
	"free btc",
	"free eth",
	"free tokens",
	// Phishing
	"verify your account",
	"verification team",
	"verify now",
	"urgent action required",
	// Adult content
	`\b(xxx|18\+|onlyfans)\b`,
	"hot singles",
	// Generic spam
	"dm me",
	"click here",
	"limited time",
	"act now",
	"congratulations you won",
	"prize winner",
	// Scams
	"double your",
	"investment opportunity",
	"make money fast",
	"work from home",
	"no experience needed",
}

// Config holds the spam detection rule parameters. It is immutable after
// Load and safe for concurrent use by the scorer.
type Config struct {
	WarnThreshold       int
	DeleteThreshold     int
	SuspiciousTLDs      map[string]struct{}
	Keywords            []*regexp.Regexp
	CheckNonEnglish     bool
	NonEnglishThreshold float64
}

// ruleFile mirrors the optional rules.yaml layout.
type ruleFile struct {
	WarnThreshold       int      `mapstructure:"warn_threshold"`
	HardDeleteThreshold int      `mapstructure:"hard_delete_threshold"`
	SuspiciousTLDs      []string `mapstructure:"suspicious_tlds"`
	ExtraKeywords       []string `mapstructure:"extra_keywords"`
	CheckNonEnglish     bool     `mapstructure:"check_non_english"`
	NonEnglishThreshold float64  `mapstructure:"non_english_threshold"`
}

// Defaults returns the built-in rule configuration.
func Defaults() *Config {
	cfg := &Config{
		WarnThreshold:       DefaultWarnThreshold,
		DeleteThreshold:     DefaultDeleteThreshold,
		SuspiciousTLDs:      make(map[string]struct{}, len(defaultSuspiciousTLDs)),
		CheckNonEnglish:     true,
		NonEnglishThreshold: DefaultNonEnglishThreshold,
	}
	for _, tld := range defaultSuspiciousTLDs {
		cfg.SuspiciousTLDs[tld] = struct{}{}
	}
	for _, pattern := range defaultKeywordPatterns {
		// Default patterns are known-good; MustCompile keeps the
		// invariant visible.
		cfg.Keywords = append(cfg.Keywords, regexp.MustCompile(pattern))
	}
	return cfg
}

// Load reads rule overrides from the YAML file at path, merged over the
// defaults. A missing or malformed file is not an error: the defaults
// are returned and the problem is logged, because rule loading must
// never block startup.
func Load(path string, log *slog.Logger) *Config {
	cfg := Defaults()
	if log == nil {
		log = slog.Default()
	}

	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("Rules file not found, using defaults", "path", path)
		return cfg
	}

	v := viper.New()
	v.SetConfigFile(path)

	var rf ruleFile
	rf.CheckNonEnglish = cfg.CheckNonEnglish
	rf.NonEnglishThreshold = cfg.NonEnglishThreshold
	rf.WarnThreshold = cfg.WarnThreshold
	rf.HardDeleteThreshold = cfg.DeleteThreshold

	if err := v.ReadInConfig(); err != nil {
		log.Warn("Failed to read rules file, using defaults", "path", path, "error", err)
		return cfg
	}
	if err := v.Unmarshal(&rf); err != nil {
		log.Warn("Failed to parse rules file, using defaults", "path", path, "error", err)
		return cfg
	}

	if err := applyOverrides(cfg, &rf); err != nil {
		log.Warn("Invalid rules file, using defaults", "path", path, "error", err)
		return Defaults()
	}

	log.Info("Rules loaded",
		"path", path,
		"warn_threshold", cfg.WarnThreshold,
		"delete_threshold", cfg.DeleteThreshold,
		"suspicious_tlds", len(cfg.SuspiciousTLDs),
		"keywords", len(cfg.Keywords),
		"check_non_english", cfg.CheckNonEnglish)
	return cfg
}

// applyOverrides merges the file values into cfg, validating as it goes.
// The threshold invariant is 0 <= warn <= delete.
func applyOverrides(cfg *Config, rf *ruleFile) error {
	if rf.WarnThreshold < 0 || rf.WarnThreshold > rf.HardDeleteThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= warn (%d) <= delete (%d)",
			rf.WarnThreshold, rf.HardDeleteThreshold)
	}
	cfg.WarnThreshold = rf.WarnThreshold
	cfg.DeleteThreshold = rf.HardDeleteThreshold

	// Extra TLDs merge into, not replace, the default set.
	for _, tld := range rf.SuspiciousTLDs {
		cfg.SuspiciousTLDs[tld] = struct{}{}
	}

	for _, pattern := range rf.ExtraKeywords {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid keyword pattern %q: %w", pattern, err)
		}
		cfg.Keywords = append(cfg.Keywords, re)
	}

	cfg.CheckNonEnglish = rf.CheckNonEnglish
	if rf.NonEnglishThreshold < 0 || rf.NonEnglishThreshold > 1 {
		return fmt.Errorf("non_english_threshold %v outside [0,1]", rf.NonEnglishThreshold)
	}
	cfg.NonEnglishThreshold = rf.NonEnglishThreshold

	return nil
}

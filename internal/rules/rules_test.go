package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/castellanbot/castellan/internal/rules"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg := rules.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	if cfg.WarnThreshold != rules.DefaultWarnThreshold {
		t.Errorf("warn threshold = %d, want %d", cfg.WarnThreshold, rules.DefaultWarnThreshold)
	}
	if cfg.DeleteThreshold != rules.DefaultDeleteThreshold {
		t.Errorf("delete threshold = %d, want %d", cfg.DeleteThreshold, rules.DefaultDeleteThreshold)
	}
	if _, ok := cfg.SuspiciousTLDs["xyz"]; !ok {
		t.Error("default suspicious TLD set missing xyz")
	}
	if !cfg.CheckNonEnglish {
		t.Error("non-English check should default to enabled")
	}
}

func TestLoad_MergesOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `warn_threshold: 5
hard_delete_threshold: 10
suspicious_tlds:
  - zip
  - mov
extra_keywords:
  - "crypto pump"
check_non_english: false
non_english_threshold: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	cfg := rules.Load(path, nil)

	if cfg.WarnThreshold != 5 || cfg.DeleteThreshold != 10 {
		t.Errorf("thresholds = %d/%d, want 5/10", cfg.WarnThreshold, cfg.DeleteThreshold)
	}
	if _, ok := cfg.SuspiciousTLDs["zip"]; !ok {
		t.Error("extra TLD zip not merged")
	}
	if _, ok := cfg.SuspiciousTLDs["ru"]; !ok {
		t.Error("default TLD ru lost during merge")
	}
	if cfg.CheckNonEnglish {
		t.Error("check_non_english override not applied")
	}
	if cfg.NonEnglishThreshold != 0.5 {
		t.Errorf("non_english_threshold = %v, want 0.5", cfg.NonEnglishThreshold)
	}

	score := rules.Evaluate("huge crypto pump tonight", false, cfg)
	if score.Total < 5 {
		t.Errorf("merged keyword did not trigger, total = %d", score.Total)
	}
}

func TestLoad_InvalidThresholdsFallBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "warn_threshold: 9\nhard_delete_threshold: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	cfg := rules.Load(path, nil)

	if cfg.WarnThreshold != rules.DefaultWarnThreshold || cfg.DeleteThreshold != rules.DefaultDeleteThreshold {
		t.Errorf("invalid thresholds should fall back to defaults, got %d/%d",
			cfg.WarnThreshold, cfg.DeleteThreshold)
	}
}

func TestLoad_MalformedFileFallsBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("{not yaml::"), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	cfg := rules.Load(path, nil)
	if cfg.WarnThreshold != rules.DefaultWarnThreshold {
		t.Errorf("malformed file should yield defaults, got warn=%d", cfg.WarnThreshold)
	}
}

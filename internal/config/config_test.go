package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Exchange.Symbol != "SOL/USDT" {
		t.Errorf("expected default symbol, got %s", cfg.Exchange.Symbol)
	}
	if len(cfg.Trading.DCALevels) != len(cfg.Trading.DCASplits) {
		t.Error("default DCA tables must be parallel")
	}
	if cfg.Loop.RetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.Loop.RetryAttempts)
	}
	if cfg.Trading.MinNotional != 5.0 {
		t.Errorf("expected min notional 5.0, got %v", cfg.Trading.MinNotional)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
exchange:
  symbol: ETH/USDT
trading:
  dry_run: true
  capital_per_cycle: 50
`)
	t.Setenv("CAPITAL_PER_CYCLE", "75")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Exchange.Symbol != "ETH/USDT" {
		t.Errorf("file value not applied, got %s", cfg.Exchange.Symbol)
	}
	if cfg.Trading.CapitalPerCycle != 75 {
		t.Errorf("env override not applied, got %v", cfg.Trading.CapitalPerCycle)
	}
	if !cfg.Trading.DryRun {
		t.Error("dry_run not parsed")
	}
}

func TestValidate_MismatchedDCATables(t *testing.T) {
	path := writeConfig(t, `
trading:
  dry_run: true
  dca_levels: [0.005, 0.015]
  dca_splits: [0.5, 0.3, 0.2]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for mismatched table lengths")
	}
}

func TestValidate_SplitsSumOverOne(t *testing.T) {
	path := writeConfig(t, `
trading:
  dry_run: true
  dca_levels: [0.005, 0.015]
  dca_splits: [0.8, 0.5]
`)
	cfg, _ := Load(path)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for splits summing above 1.0")
	}
}

func TestValidate_LevelsMustIncrease(t *testing.T) {
	path := writeConfig(t, `
trading:
  dry_run: true
  dca_levels: [0.03, 0.015]
  dca_splits: [0.5, 0.5]
`)
	cfg, _ := Load(path)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-increasing levels")
	}
}

func TestValidate_LiveRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
trading:
  dry_run: false
`)
	cfg, _ := Load(path)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for live mode without credentials")
	}
}

func TestValidate_DefaultsPass(t *testing.T) {
	path := writeConfig(t, `
trading:
  dry_run: true
`)
	cfg, _ := Load(path)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate in dry-run: %v", err)
	}
}

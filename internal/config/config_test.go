package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestPoolSizeMatchesFormula(t *testing.T) {
	cfg := Default()
	cfg.WorkingSet.ViewDistance = 12
	got := cfg.PoolSize()
	want := (2*12 + 1) * (12 + 1) * (2*12 + 1)
	if got != want {
		t.Fatalf("PoolSize() = %d, want %d", got, want)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for bad log level")
	}
}

func TestValidateRejectsZeroViewDistance(t *testing.T) {
	cfg := Default()
	cfg.WorkingSet.ViewDistance = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for zero view distance")
	}
}

package dogmconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefault()

	if cfg.Size == nil {
		t.Fatal("Size must be set")
	}
	if cfg.ParticleCount == nil {
		t.Fatal("ParticleCount must be set")
	}

	if *cfg.Size <= 0 {
		t.Errorf("Size must be positive, got %f", *cfg.Size)
	}
	if *cfg.ParticleCount <= 0 {
		t.Errorf("ParticleCount must be positive, got %d", *cfg.ParticleCount)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must pass Validate(): %v", err)
	}
}

func TestEmptyTuningConfig(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.Size != nil {
		t.Error("expected Size to be nil")
	}
	if cfg.ParticleCount != nil {
		t.Error("expected ParticleCount to be nil")
	}

	if cfg.GetSize() != 3.0 {
		t.Errorf("GetSize() default = %f, want 3.0", cfg.GetSize())
	}
	if cfg.GetParticleCount() != 10000 {
		t.Errorf("GetParticleCount() default = %d, want 10000", cfg.GetParticleCount())
	}
	if cfg.GetSeed() != 1 {
		t.Errorf("GetSeed() default = %d, want 1", cfg.GetSeed())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected an error for a non-.json config path")
	}
}

func TestLoadTuningConfigPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.json")
	if err := os.WriteFile(path, []byte(`{"particle_count": 500}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if cfg.GetParticleCount() != 500 {
		t.Errorf("GetParticleCount() = %d, want 500", cfg.GetParticleCount())
	}
	if cfg.GetSize() != 3.0 {
		t.Errorf("GetSize() = %f, want the untouched default 3.0", cfg.GetSize())
	}

	params := cfg.ToParams()
	if err := params.Validate(); err != nil {
		t.Errorf("partial config must still produce valid Params: %v", err)
	}
}

// Package dogmconfig loads and validates the JSON tuning file that backs
// a dogm.Params, following the same all-pointer-fields/defaults-on-read
// pattern as the rest of the codebase's tuning configs.
package dogmconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dogm-go/dogm/internal/dogm"
)

// DefaultConfigPath is the canonical tuning defaults file searched for by
// MustLoadDefault.
const DefaultConfigPath = "config/dogm.defaults.json"

// TuningConfig mirrors dogm.Params field-for-field but with every field
// optional, so a partial JSON file only overrides what it specifies.
type TuningConfig struct {
	Size       *float64 `json:"size,omitempty"`
	Resolution *float64 `json:"resolution,omitempty"`

	ParticleCount        *int `json:"particle_count,omitempty"`
	NewBornParticleCount *int `json:"new_born_particle_count,omitempty"`

	PersistenceProb *float64 `json:"persistence_prob,omitempty"`

	StddevProcessNoisePosition *float64 `json:"stddev_process_noise_position,omitempty"`
	StddevProcessNoiseVelocity *float64 `json:"stddev_process_noise_velocity,omitempty"`

	BirthProb       *float64 `json:"birth_prob,omitempty"`
	StddevVelocity  *float64 `json:"stddev_velocity,omitempty"`
	InitMaxVelocity *float64 `json:"init_max_velocity,omitempty"`

	FreespaceDiscount *float64 `json:"freespace_discount,omitempty"`

	Seed *uint64 `json:"seed,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields the file
// omits keep their zero (nil) value; Get* accessors fall back to the
// source library's defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("dogmconfig: config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("dogmconfig: stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("dogmconfig: config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("dogmconfig: read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("dogmconfig: parse config JSON: %w", err)
	}
	return cfg, nil
}

// MustLoadDefault loads DefaultConfigPath, trying a handful of relative
// paths so it resolves both from the repo root and from a package
// directory under test. Panics if the file cannot be found.
func MustLoadDefault() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("dogmconfig: cannot find " + DefaultConfigPath + " - run from the repository root")
}

// ToParams builds a dogm.Params from the config, filling every omitted
// field with the upstream DOGM library's documented default.
func (c *TuningConfig) ToParams() dogm.Params {
	return dogm.Params{
		Size:                       float32(c.GetSize()),
		Resolution:                 float32(c.GetResolution()),
		ParticleCount:              c.GetParticleCount(),
		NewBornParticleCount:       c.GetNewBornParticleCount(),
		PersistenceProb:            float32(c.GetPersistenceProb()),
		StddevProcessNoisePosition: float32(c.GetStddevProcessNoisePosition()),
		StddevProcessNoiseVelocity: float32(c.GetStddevProcessNoiseVelocity()),
		BirthProb:                  float32(c.GetBirthProb()),
		StddevVelocity:             float32(c.GetStddevVelocity()),
		InitMaxVelocity:            float32(c.GetInitMaxVelocity()),
		FreespaceDiscount:          float32(c.GetFreespaceDiscount()),
		Seed:                       c.GetSeed(),
	}
}

// GetSize returns size in metres, or the default 3.0.
func (c *TuningConfig) GetSize() float64 {
	if c.Size == nil {
		return 3.0
	}
	return *c.Size
}

// GetResolution returns resolution in metres/cell, or the default 0.1.
func (c *TuningConfig) GetResolution() float64 {
	if c.Resolution == nil {
		return 0.1
	}
	return *c.Resolution
}

// GetParticleCount returns the persistent particle buffer capacity, or
// the default 10000.
func (c *TuningConfig) GetParticleCount() int {
	if c.ParticleCount == nil {
		return 10000
	}
	return *c.ParticleCount
}

// GetNewBornParticleCount returns the birth particle buffer capacity, or
// the default 1000.
func (c *TuningConfig) GetNewBornParticleCount() int {
	if c.NewBornParticleCount == nil {
		return 1000
	}
	return *c.NewBornParticleCount
}

// GetPersistenceProb returns the per-step survival probability, or the
// default 0.99.
func (c *TuningConfig) GetPersistenceProb() float64 {
	if c.PersistenceProb == nil {
		return 0.99
	}
	return *c.PersistenceProb
}

// GetStddevProcessNoisePosition returns the default 0.02 if unset.
func (c *TuningConfig) GetStddevProcessNoisePosition() float64 {
	if c.StddevProcessNoisePosition == nil {
		return 0.02
	}
	return *c.StddevProcessNoisePosition
}

// GetStddevProcessNoiseVelocity returns the default 0.5 if unset.
func (c *TuningConfig) GetStddevProcessNoiseVelocity() float64 {
	if c.StddevProcessNoiseVelocity == nil {
		return 0.5
	}
	return *c.StddevProcessNoiseVelocity
}

// GetBirthProb returns the default 0.02 if unset.
func (c *TuningConfig) GetBirthProb() float64 {
	if c.BirthProb == nil {
		return 0.02
	}
	return *c.BirthProb
}

// GetStddevVelocity returns the default 1.0 if unset.
func (c *TuningConfig) GetStddevVelocity() float64 {
	if c.StddevVelocity == nil {
		return 1.0
	}
	return *c.StddevVelocity
}

// GetInitMaxVelocity returns the default 3.0 if unset.
func (c *TuningConfig) GetInitMaxVelocity() float64 {
	if c.InitMaxVelocity == nil {
		return 3.0
	}
	return *c.InitMaxVelocity
}

// GetFreespaceDiscount returns the default 0.01 if unset.
func (c *TuningConfig) GetFreespaceDiscount() float64 {
	if c.FreespaceDiscount == nil {
		return 0.01
	}
	return *c.FreespaceDiscount
}

// GetSeed returns the configured seed, or 1 if unset (0 is a valid
// math/rand seed but an unconfigured one should still be reproducible
// and distinct from "always zero").
func (c *TuningConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// Validate converts to Params and validates the result, surfacing field
// range errors before a Dogm is constructed from a bad config file.
func (c *TuningConfig) Validate() error {
	return c.ToParams().Validate()
}

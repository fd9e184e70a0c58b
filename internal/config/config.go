package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all importer configuration.
type Config struct {
	Logging     LogConfig
	Calibration CalibrationConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CalibrationConfig holds the tunable geometric thresholds. These are
// design parameters, not physical constants; the defaults come from
// calibration against real QBlade exports and can be overridden per run
// from the environment or a TOML calibration file.
type CalibrationConfig struct {
	// CircleTolerance is the maximum relative deviation of point-to-centroid
	// radii for a section to count as a circular placeholder.
	CircleTolerance float64 `envconfig:"CIRCLE_TOLERANCE" toml:"circle_tolerance" default:"0.015"`

	// RootScanWindow bounds how many stations from the root the circular
	// filter inspects. Circular placeholders are a hub-transition artifact
	// and never appear mid-span.
	RootScanWindow int `envconfig:"ROOT_SCAN_WINDOW" toml:"root_scan_window" default:"4"`

	// MinProfilePoints rejects airfoil files too sparse to loft.
	MinProfilePoints int `envconfig:"MIN_PROFILE_POINTS" toml:"min_profile_points" default:"10"`

	// SimplifyTolerance is the Ramer-Douglas-Peucker distance threshold,
	// in unit-chord coordinates, used when deriving rail seed outlines.
	SimplifyTolerance float64 `envconfig:"SIMPLIFY_TOLERANCE" toml:"simplify_tolerance" default:"0.005"`

	// ChordEpsilon and TwistEpsilon collapse consecutive stations whose
	// chord (cm) and twist (degrees) both change by less than these.
	ChordEpsilon float64 `envconfig:"CHORD_EPSILON" toml:"chord_epsilon" default:"1.0"`
	TwistEpsilon float64 `envconfig:"TWIST_EPSILON" toml:"twist_epsilon" default:"1.0"`

	// RailTolerance is how far (cm) a guide-rail point may sit from its
	// profile before the kernel reports the rails as non-intersecting.
	RailTolerance float64 `envconfig:"RAIL_TOLERANCE" toml:"rail_tolerance" default:"0.01"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("QLOFT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Calibration: CalibrationConfig{
			CircleTolerance:   0.015,
			RootScanWindow:    4,
			MinProfilePoints:  10,
			SimplifyTolerance: 0.005,
			ChordEpsilon:      1.0,
			TwistEpsilon:      1.0,
			RailTolerance:     0.01,
		},
	}
}

// ApplyCalibrationFile overlays thresholds from a TOML calibration file
// onto cfg. Keys absent from the file keep their current values.
func (c *Config) ApplyCalibrationFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read calibration file: %w", err)
	}
	if err := toml.Unmarshal(data, &c.Calibration); err != nil {
		return fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}
	return nil
}

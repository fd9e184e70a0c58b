// Package config loads importer configuration from the environment and
// optional TOML calibration files.
//
// Geometric thresholds (circle detection tolerance, root scan window,
// simplification tolerance) are deliberately configuration rather than
// constants: they are calibrated against real blade exports, not derived
// from first principles.
package config

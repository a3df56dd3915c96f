// Package config holds runtime configuration: defaults, validation, and
// nothing else. Values are populated by the CLI layer and passed down
// explicitly; no package below cmd/ reads ambient process state.
package config

import (
	"errors"
	"fmt"
)

// Config holds all runtime settings, passed by pointer into the pipeline.
type Config struct {
	// Workers is the fixed worker-pool size for batch processing.
	Workers int

	// BookmarkOffsetMs is added to every decoded bookmark timestamp.
	// Negative values shift markers earlier to compensate for operator
	// reaction time.
	BookmarkOffsetMs int64

	// Encode settings for the transcode path.
	Quality       int    // HandBrake constant-quality value.
	EncoderPreset string // HandBrake encoder preset.

	// Logging.
	LogLevel string // zerolog level name ("debug", "info", ...).
}

// Default returns the configuration matching the recording workflow's
// fixed values.
func Default() Config {
	return Config{
		Workers:          4,
		BookmarkOffsetMs: -500,
		Quality:          40,
		EncoderPreset:    "slowest",
		LogLevel:         "info",
	}
}

// Validate checks field ranges after CLI overrides have been applied.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Workers > 64 {
		return errors.New("workers must be at most 64")
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range 0-100", c.Quality)
	}
	if c.EncoderPreset == "" {
		return errors.New("encoder preset must not be empty")
	}
	return nil
}

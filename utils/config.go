package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	RendererText   = "text"
	RendererScreen = "screen"
)

// Config holds the configuration for the game
type Config struct {
	Width               int           `json:"width"`
	Height              int           `json:"height"`
	Rule                string        `json:"rule"`
	AliveProbability    float64       `json:"alive_probability"`
	AliveGlyph          string        `json:"alive_glyph"`
	DeadGlyph           string        `json:"dead_glyph"`
	FrameRate           time.Duration `json:"frame_rate"`
	AutoRestart         bool          `json:"auto_restart"`
	StagnationThreshold int           `json:"stagnation_threshold"`
	RefreshInterval     int           `json:"refresh_interval"` // restart every n generations, 0 never
	UseParallel         bool          `json:"use_parallel"`
	MaxGenerations      int           `json:"max_generations"`
	Seed                uint64        `json:"seed"` // 0 seeds from the clock
	Renderer            string        `json:"renderer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:               60,
		Height:              30,
		Rule:                "23/3",
		AliveProbability:    0.25,
		AliveGlyph:          "*",
		DeadGlyph:           ".",
		FrameRate:           150 * time.Millisecond,
		AutoRestart:         true,
		StagnationThreshold: 5,
		RefreshInterval:     200,
		UseParallel:         false,
		MaxGenerations:      1000,
		Renderer:            RendererText,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid configuration in file: %+v", filename)
	}

	return config, nil
}

// Validate checks the fields the grid itself does not validate
func (c Config) Validate() error {
	if len([]rune(c.AliveGlyph)) != 1 {
		return errors.Wrapf(ErrInvalidArgument, "[Validate] alive glyph must be a single character, got %q", c.AliveGlyph)
	}
	if len([]rune(c.DeadGlyph)) != 1 {
		return errors.Wrapf(ErrInvalidArgument, "[Validate] dead glyph must be a single character, got %q", c.DeadGlyph)
	}
	if c.FrameRate < 0 {
		return errors.Wrapf(ErrInvalidArgument, "[Validate] frame rate cannot be negative, got %v", c.FrameRate)
	}
	if c.RefreshInterval < 0 {
		return errors.Wrapf(ErrInvalidArgument, "[Validate] refresh interval cannot be negative, got %d", c.RefreshInterval)
	}
	if c.Renderer != RendererText && c.Renderer != RendererScreen {
		return errors.Wrapf(ErrInvalidArgument, "[Validate] unknown renderer %q", c.Renderer)
	}
	return nil
}

// Glyphs returns the alive and dead glyphs as runes. Call Validate first.
func (c Config) Glyphs() (alive, dead rune) {
	return []rune(c.AliveGlyph)[0], []rune(c.DeadGlyph)[0]
}

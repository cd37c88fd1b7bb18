package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// fileConfig mirrors the TOML config file layout. All fields are optional;
// zero values leave the corresponding Config default untouched.
type fileConfig struct {
	Tools struct {
		Ffmpeg  string `toml:"ffmpeg"`
		Ffprobe string `toml:"ffprobe"`
	} `toml:"tools"`
	Encode struct {
		CompressionLevel *int `toml:"compression_level"`
	} `toml:"encode"`
	Display struct {
		Color    string `toml:"color"`
		Progress *bool  `toml:"progress"`
	} `toml:"display"`
}

// LoadFile overlays settings from the TOML file at path onto cfg.
// A missing file is an error: the flag was explicit, so silence would hide a
// typo'd path.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	if fc.Tools.Ffmpeg != "" {
		cfg.FfmpegBin = fc.Tools.Ffmpeg
	}
	if fc.Tools.Ffprobe != "" {
		cfg.FfprobeBin = fc.Tools.Ffprobe
	}
	if fc.Encode.CompressionLevel != nil {
		cfg.CompressionLevel = *fc.Encode.CompressionLevel
	}
	if fc.Display.Color != "" {
		cfg.ColorMode = ColorMode(fc.Display.Color)
	}
	if fc.Display.Progress != nil {
		cfg.ShowProgress = *fc.Display.Progress
	}
	return nil
}

// SampleConfig returns the embedded annotated sample config file contents.
func SampleConfig() string { return sampleConfig }

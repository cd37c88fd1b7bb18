// Package config holds runtime configuration: defaults, the optional TOML
// config file, and validation. CLI flags are bound in cmd/flacfix.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// --- Enum types for validated string fields ---

// Mode selects between previewing planned actions and applying them.
type Mode string

const (
	ModePreview Mode = "preview" // Plan and log only; no filesystem mutation (default).
	ModeApply   Mode = "apply"   // Convert, verify, and delete verified originals.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by the CLI flags before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from CLI flags).
	ReportPath string // The xlsx export listing failed imports.
	RootDir    string // Directory where the listed files should live.

	// Run mode.
	Mode Mode

	// Encoding.
	CompressionLevel int    // FLAC compression level 0-12. Default: 8.
	FfmpegBin        string // Default: "ffmpeg".
	FfprobeBin       string // Default: "ffprobe".

	// Display and logging.
	Verbose      bool
	ShowProgress bool      // Default: true. Live conversion progress bar.
	ColorMode    ColorMode // Default: "auto".
	LogFile      string    // Optional plain-text log file path.

	// Preview listing cap: at most this many per-candidate resolution lines
	// are printed before the planned-actions table.
	PreviewListLimit int // Default: 2000.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		Mode:             ModePreview,
		CompressionLevel: 8,
		FfmpegBin:        "ffmpeg",
		FfprobeBin:       "ffprobe",
		Verbose:          false,
		ShowProgress:     true,
		ColorMode:        ColorAuto,
		PreviewListLimit: 2000,
	}
}

// Apply reports whether destructive actions (conversion, deletion) run.
func (c *Config) Apply() bool { return c.Mode == ModeApply }

// LogName returns the per-mode CSV log filename written into the root
// directory ("fix-log-preview.csv" or "fix-log-apply.csv").
func (c *Config) LogName() string {
	return fmt.Sprintf("fix-log-%s.csv", c.Mode)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks that enum fields hold valid values, the compression level
// is in range, and the report/root paths are set.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePreview, ModeApply:
		// valid
	default:
		return errors.New("invalid mode (use 'preview' or 'apply')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always', or 'never')")
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 12 {
		return fmt.Errorf("invalid FLAC compression level %d (use 0-12)", c.CompressionLevel)
	}

	if c.FfmpegBin == "" || c.FfprobeBin == "" {
		return errors.New("ffmpeg and ffprobe binary names must not be empty")
	}

	if c.ReportPath == "" {
		return errors.New("need --report pointing at the skipped-files xlsx export")
	}
	if c.RootDir == "" {
		return errors.New("need --root pointing at the music directory")
	}
	return nil
}

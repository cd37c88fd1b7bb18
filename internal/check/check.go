// Package check provides system diagnostics (the check subcommand) and
// pre-run dependency validation for ffmpeg and ffprobe.
package check

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"flacfix/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing or broken.
var (
	ErrFfmpegNotFound   = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound  = errors.New("ffprobe not found on PATH")
	ErrFlacEncodeFailed = errors.New("ffmpeg found but FLAC test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive diagnostics flow: tool availability and
// versions, a FLAC test encode, and (when a root is configured) root
// directory writability. Informational only; reports rather than aborts.
// Returns false when any check failed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(cfg.FfmpegBin, log)
	ok = checkTool(cfg.FfprobeBin, log) && ok
	ok = checkFlacEncoder(cfg, log) && ok
	if cfg.RootDir != "" {
		ok = checkRootWritable(cfg.RootDir, log) && ok
	}
	return ok
}

// checkTool verifies the binary is on PATH and logs its version string.
func checkTool(bin string, log Logger) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found", bin)
		return false
	}
	cmd := exec.Command(bin, "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", bin, err)
		return false
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", bin, firstLine)
	return true
}

// checkFlacEncoder runs a minimal FLAC encode to verify the encoder works.
func checkFlacEncoder(cfg *config.Config, log Logger) bool {
	log.Info("Testing FLAC encoder...")
	if runSilent(cfg.FfmpegBin, flacTestArgs()...) {
		log.Success("FLAC encoder works")
		return true
	}
	log.Error("FLAC test encode failed")
	return false
}

// checkRootWritable creates and removes a probe file in the root directory.
// Apply mode writes outputs and the CSV log there, so this fails early.
func checkRootWritable(root string, log Logger) bool {
	probe := filepath.Join(root, ".flacfix-write-test")
	f, err := os.Create(probe)
	if err != nil {
		log.Error("Root directory not writable: %v", err)
		return false
	}
	f.Close()
	os.Remove(probe)
	log.Success("Root directory writable: %s", root)
	return true
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must be on PATH
// and a quick FLAC encode must succeed. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FfmpegBin); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FfprobeBin); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent(cfg.FfmpegBin, flacTestArgs()...) {
		return ErrFlacEncodeFailed
	}
	return nil
}

// flacTestArgs returns the ffmpeg arguments for a minimal FLAC test encode.
// Shared by checkFlacEncoder and CheckDeps to avoid duplicating the list.
func flacTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "flac", "-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
